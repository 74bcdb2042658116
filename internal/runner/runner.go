// Package runner orchestrates tool execution against the backend:
// one run at a time, risk confirmation, and a fixed console block order.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/0x6d61/glotdeck/internal/args"
	"github.com/0x6d61/glotdeck/internal/backend"
	"github.com/0x6d61/glotdeck/internal/classify"
	"github.com/0x6d61/glotdeck/internal/registry"
	"github.com/0x6d61/glotdeck/pkg/schema"
)

var (
	// ErrNotRunnable はレジストリ未配線のアイテムを実行しようとしたとき。
	ErrNotRunnable = errors.New("runner: tool is not wired to the registry")
	// ErrBusy は別の実行がアクティブなとき。実行は常に1件まで。
	ErrBusy = errors.New("runner: another run is active")
	// ErrConfirmRequired は moderate / heavy リスクのツールを
	// confirmed=false で開始しようとしたとき。確認ダイアログだけが
	// confirmed=true の正当な供給元。
	ErrConfirmRequired = errors.New("runner: confirmation required")
)

// activeRun は進行中の実行のハンドル。
type activeRun struct {
	toolID    string
	title     string
	cancel    context.CancelFunc
	startedAt time.Time
}

// Runner は単一実行のオーケストレータ。
// Start が成功すると active ハンドルが立ち、どの終了経路でも必ず外れる。
type Runner struct {
	client *backend.Client
	store  *ResultStore

	mu     sync.Mutex
	active *activeRun
}

// New は Runner を返す。store に正規化済み結果が保存される。
func New(client *backend.Client, store *ResultStore) *Runner {
	return &Runner{client: client, store: store}
}

// Active は進行中の実行のツール ID と開始時刻を返す。
func (r *Runner) Active() (toolID string, startedAt time.Time, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return "", time.Time{}, false
	}
	return r.active.toolID, r.active.startedAt, true
}

// Cancel は進行中の実行を協調的にキャンセルする。実行がなければ何もしない。
// キャンセル後に届いたレスポンスは破棄され、コンソールには中断バナーだけが載る。
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.cancel()
	}
}

// Start は item を argsText の引数で非同期実行する。
//
// 前提チェック（満たさなければ実行は開始されない）:
//   - item がレジストリに配線されていること
//   - moderate / heavy リスクは confirmed=true であること
//   - 他の実行がアクティブでないこと
//
// 返るチャネルにはコンソールブロックが固定順で流れ、完了時に閉じる:
// 開始バナー → メタデータ → ライフサイクル → 警告 → stdout → (tree) →
// stderr → 最終バナー。成功・失敗・中断のバナーは相互排他。
func (r *Runner) Start(item *registry.ToolItem, argsText string, confirmed bool) (<-chan *ConsoleBlock, error) {
	if item == nil || !item.Runnable() {
		return nil, ErrNotRunnable
	}
	if (item.Risk == classify.RiskModerate || item.Risk == classify.RiskHeavy) && !confirmed {
		return nil, ErrConfirmRequired
	}

	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	run := &activeRun{toolID: item.WiredToolID, title: item.Title, cancel: cancel, startedAt: time.Now()}
	r.active = run
	r.mu.Unlock()

	tokens := args.Split(argsText)
	ch := make(chan *ConsoleBlock, 32)

	go func() {
		defer close(ch)
		defer r.clear(run)
		defer cancel()

		ch <- NewBannerBlock(startBanner(item, tokens))

		raw, parsed, meta, err := r.client.Run(ctx, schema.RunRequest{
			ToolID: item.WiredToolID,
			Args:   tokens,
		})

		// キャンセル済みなら遅延レスポンスは破棄する
		if ctx.Err() != nil {
			ch <- NewResultBlock(ResultAborted, fmt.Sprintf("%s を中断しました", item.Title))
			return
		}

		var res backend.RunResult
		if err != nil {
			res = transportFailure(item.WiredToolID, err)
		} else {
			res = backend.Normalize(item.WiredToolID, raw, parsed, meta)
		}
		r.store.Save(res)
		emitBlocks(ch, item, res, run.startedAt)
	}()

	return ch, nil
}

// clear は run のハンドルを外す。別の実行のハンドルは触らない。
func (r *Runner) clear(run *activeRun) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == run {
		r.active = nil
	}
}

// startBanner は開始バナーのテキストを組み立てる。
func startBanner(item *registry.ToolItem, tokens []string) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("▶ %s", item.Title)
	}
	return fmt.Sprintf("▶ %s %s", item.Title, strings.Join(tokens, " "))
}

// transportFailure はレスポンスが届かなかった実行の失敗レコードを合成する。
func transportFailure(toolID string, err error) backend.RunResult {
	return backend.RunResult{
		ToolID:       toolID,
		Success:      false,
		ExitCode:     -1,
		Stderr:       err.Error(),
		StderrChars:  len(err.Error()),
		Tool:         schema.ToolInfo{ID: toolID},
		ArgsReceived: []string{},
		ArgsAccepted: []string{},
		ArgsRejected: []schema.ArgRejection{},
		Events:       []schema.RunEvent{},
		Error:        "request failed: " + err.Error(),
	}
}

// emitBlocks は正規化済み結果を固定順でコンソールブロックに展開する。
func emitBlocks(ch chan<- *ConsoleBlock, item *registry.ToolItem, res backend.RunResult, startedAt time.Time) {
	ch <- NewMetaBlock(metaLine(res, startedAt))

	if len(res.Events) > 0 {
		lines := make([]string, 0, len(res.Events))
		for _, ev := range res.Events {
			lines = append(lines, fmt.Sprintf("[%s] %s: %s", ev.Level, ev.Step, ev.Message))
		}
		ch <- NewLifecycleBlock(lines)
	}

	if len(res.ArgsRejected) > 0 {
		lines := make([]string, 0, len(res.ArgsRejected))
		for _, rej := range res.ArgsRejected {
			lines = append(lines, fmt.Sprintf("引数を拒否: %s (%s)", rej.Arg, rej.Reason))
		}
		ch <- NewWarningBlock(lines)
	}

	if res.Stdout != "" {
		marker := ""
		if res.StdoutTruncated {
			marker = truncationMarker(res)
		}
		ch <- NewStdoutBlock(strings.Split(res.Stdout, "\n"), marker)

		if backend.IsTreeProducer(item.Path) {
			if tree, ok := backend.ExtractTree(res.Stdout); ok {
				ch <- NewTreeBlock(strings.Split(strings.TrimRight(tree.Render(), "\n"), "\n"))
			}
		}
	}

	// stderr は成功時でも空でなければ必ず表示する
	if res.Stderr != "" {
		ch <- NewStderrBlock(strings.Split(res.Stderr, "\n"))
	}

	if res.Success {
		ch <- NewResultBlock(ResultSuccess, fmt.Sprintf("✔ %s 完了 (exit %d)", item.Title, res.ExitCode))
	} else {
		msg := fmt.Sprintf("✘ %s 失敗 (exit %d)", item.Title, res.ExitCode)
		if res.Error != "" && res.Error != res.Stderr {
			msg += ": " + res.Error
		}
		ch <- NewResultBlock(ResultFailure, msg)
	}
}

// metaLine はメタデータ行を組み立てる。欠けている項目は出さない。
func metaLine(res backend.RunResult, startedAt time.Time) string {
	parts := []string{}
	if res.TraceID != "" {
		parts = append(parts, "trace "+res.TraceID)
	}
	dur := res.Duration
	if dur == 0 {
		dur = time.Since(startedAt).Round(time.Millisecond)
	}
	parts = append(parts, fmt.Sprintf("%.1fs", dur.Seconds()))
	parts = append(parts, fmt.Sprintf("exit %d", res.ExitCode))
	if res.Cwd != "" {
		parts = append(parts, res.Cwd)
	}
	return strings.Join(parts, " · ")
}

// truncationMarker は切り詰めマーカーのテキストを組み立てる。
func truncationMarker(res backend.RunResult) string {
	if res.TruncationLimit > 0 {
		return fmt.Sprintf("… 出力は %d 文字で切り詰められています（全文 %d 文字）", res.TruncationLimit, res.StdoutChars)
	}
	return "… 出力は切り詰められています"
}
