// Package backend talks to the NLG backend over its fixed HTTP contract
// and normalizes every response into one canonical RunResult.
package backend

import (
	"fmt"
	"math"
	"time"

	"github.com/0x6d61/glotdeck/pkg/schema"
)

// RunResult は正規化済みの実行結果レコード。
// どのフィールドも未定義のまま残らない。UI の判断は必ずこの型を経由する。
type RunResult struct {
	ToolID  string
	TraceID string
	Success bool
	Command string

	Stdout      string
	Stderr      string
	StdoutChars int
	StderrChars int

	StdoutTruncated bool
	StderrTruncated bool
	TruncationLimit int

	ExitCode  int
	Duration  time.Duration
	StartedAt string
	EndedAt   string
	Cwd       string
	RepoRoot  string

	Tool         schema.ToolInfo
	ArgsReceived []string
	ArgsAccepted []string
	ArgsRejected []schema.ArgRejection
	Events       []schema.RunEvent

	// Legacy 互換フィールド。stdout/output と stderr/error は相互補完され、
	// どちらの世代のコンシューマも無修正で動く。
	Output string
	Error  string
}

// HTTPMeta は正規化に渡す HTTP メタ情報（ステータス行の埋め込み用）。
type HTTPMeta struct {
	StatusCode int
	Status     string // 例: "500 Internal Server Error"
}

// Normalize は生レスポンスを1つの RunResult に正規化する。
// 全域・純粋・決して失敗しない。バックエンドの応答は成功・legacy 形式・
// トランスポート失敗のすべてがこの関数を通ってから UI に届く。
//
//   - parsed が非 nil: 現行/legacy のどちらの形式かを判定し、
//     それぞれの全域マッピング関数で変換する。
//   - parsed が nil（パース失敗・ボディなし）: success=false, exit_code=-1,
//     stderr=生ボディ の失敗レコードを合成する。メッセージには可能なら
//     HTTP ステータス行を埋め込む。
func Normalize(toolID, raw string, parsed *schema.RunResponse, meta *HTTPMeta) RunResult {
	if parsed == nil {
		return failureResult(toolID, raw, meta)
	}
	if isLegacyShape(parsed) {
		return fromLegacy(toolID, parsed)
	}
	return fromCurrent(toolID, parsed)
}

// isLegacyShape は旧世代ペイロードかを判定する。
// 現行フィールド（trace_id / stdout / events）がひとつも無く、
// legacy フィールド（output / error / return_code）があれば legacy とみなす。
func isLegacyShape(r *schema.RunResponse) bool {
	hasCurrent := r.TraceID != "" || r.Stdout != nil || r.Stderr != nil || len(r.Events) > 0
	hasLegacy := r.Output != nil || r.Error != nil || r.ReturnCode != nil
	return !hasCurrent && hasLegacy
}

// fromCurrent は現行形式を正規化する。全域。
func fromCurrent(toolID string, r *schema.RunResponse) RunResult {
	success := r.Success != nil && *r.Success

	stdout := stringOr(r.Stdout, "")
	stderr := stringOr(r.Stderr, "")
	// legacy フィールドしか見ないコンシューマのための相互補完
	if stdout == "" {
		stdout = stringOr(r.Output, "")
	}
	if stderr == "" {
		stderr = stringOr(r.Error, "")
	}

	res := RunResult{
		ToolID:          toolID,
		TraceID:         r.TraceID,
		Success:         success,
		Command:         r.Command,
		Stdout:          stdout,
		Stderr:          stderr,
		StdoutChars:     charsOr(r.StdoutChars, stdout),
		StderrChars:     charsOr(r.StderrChars, stderr),
		ExitCode:        exitCodeOr(r.ExitCode, success),
		Duration:        durationOr(r.DurationMS),
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		Cwd:             r.Cwd,
		RepoRoot:        r.RepoRoot,
		ArgsReceived:    emptyIfNil(r.ArgsReceived),
		ArgsAccepted:    emptyIfNil(r.ArgsAccepted),
		ArgsRejected:    r.ArgsRejected,
		Events:          r.Events,
		Output:          stdout,
		Error:           stderr,
	}
	if r.Tool != nil {
		res.Tool = *r.Tool
	}
	if res.Tool.ID == "" {
		res.Tool.ID = toolID
	}
	if r.Truncation != nil {
		res.StdoutTruncated = r.Truncation.Stdout
		res.StderrTruncated = r.Truncation.Stderr
		res.TruncationLimit = r.Truncation.LimitChars
	}
	if res.ArgsRejected == nil {
		res.ArgsRejected = []schema.ArgRejection{}
	}
	if res.Events == nil {
		res.Events = []schema.RunEvent{}
	}
	return res
}

// fromLegacy は旧世代形式 {success, output, error, return_code} を正規化する。全域。
func fromLegacy(toolID string, r *schema.RunResponse) RunResult {
	success := r.Success != nil && *r.Success
	stdout := stringOr(r.Output, "")
	stderr := stringOr(r.Error, "")

	return RunResult{
		ToolID:       toolID,
		TraceID:      "",
		Success:      success,
		Command:      r.Command,
		Stdout:       stdout,
		Stderr:       stderr,
		StdoutChars:  len(stdout),
		StderrChars:  len(stderr),
		ExitCode:     exitCodeOr(r.ReturnCode, success),
		Tool:         schema.ToolInfo{ID: toolID},
		ArgsReceived: []string{},
		ArgsAccepted: []string{},
		ArgsRejected: []schema.ArgRejection{},
		Events:       []schema.RunEvent{},
		Output:       stdout,
		Error:        stderr,
	}
}

// failureResult はパース不能レスポンスの失敗レコードを合成する。
func failureResult(toolID, raw string, meta *HTTPMeta) RunResult {
	msg := "backend response was not valid JSON"
	if meta != nil && meta.Status != "" && (meta.StatusCode < 200 || meta.StatusCode > 299) {
		msg = fmt.Sprintf("HTTP %s (non-2xx)", meta.Status)
	}
	return RunResult{
		ToolID:       toolID,
		Success:      false,
		ExitCode:     -1,
		Stdout:       "",
		Stderr:       raw,
		StdoutChars:  0,
		StderrChars:  len(raw),
		Tool:         schema.ToolInfo{ID: toolID},
		ArgsReceived: []string{},
		ArgsAccepted: []string{},
		ArgsRejected: []schema.ArgRejection{},
		Events:       []schema.RunEvent{},
		Output:       "",
		Error:        msg,
	}
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// charsOr は明示的な文字数フィールドが欠落または非有限のとき、
// 対応する文字列の長さをデフォルトにする。
func charsOr(p *float64, s string) int {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return len(s)
	}
	return int(*p)
}

// exitCodeOr は明示コードがないとき success に応じて 0 / -1 を返す。
func exitCodeOr(p *int, success bool) int {
	if p != nil {
		return *p
	}
	if success {
		return 0
	}
	return -1
}

func durationOr(ms *float64) time.Duration {
	if ms == nil || math.IsNaN(*ms) || math.IsInf(*ms, 0) || *ms < 0 {
		return 0
	}
	return time.Duration(*ms * float64(time.Millisecond))
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
