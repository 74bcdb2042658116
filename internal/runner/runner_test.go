package runner_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/0x6d61/glotdeck/internal/backend"
	"github.com/0x6d61/glotdeck/internal/classify"
	"github.com/0x6d61/glotdeck/internal/registry"
	"github.com/0x6d61/glotdeck/internal/runner"
)

func safeItem(path string) *registry.ToolItem {
	return &registry.ToolItem{
		Key:         path,
		Title:       "Language Health",
		Path:        path,
		Risk:        classify.RiskSafe,
		WiredToolID: "language_health",
	}
}

// collect はチャネルが閉じるまでブロックを回収する。
func collect(t *testing.T, ch <-chan *runner.ConsoleBlock) []*runner.ConsoleBlock {
	t.Helper()
	var blocks []*runner.ConsoleBlock
	for b := range ch {
		blocks = append(blocks, b)
	}
	return blocks
}

func blockTypes(blocks []*runner.ConsoleBlock) []runner.BlockType {
	types := make([]runner.BlockType, len(blocks))
	for i, b := range blocks {
		types[i] = b.Type
	}
	return types
}

func TestRunner_BlockOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"trace_id": "tr-1", "success": true,
			"stdout": "line one\nline two", "stderr": "minor warning",
			"exit_code": 0, "duration_ms": 80,
			"truncation": {"stdout": true, "stderr": false, "limit_chars": 20000},
			"stdout_chars": 54321,
			"args_rejected": [{"arg": "--explode", "reason": "unknown flag"}],
			"events": [
				{"level": "info", "step": "start", "message": "begin"},
				{"level": "info", "step": "done", "message": "end"}
			]
		}`))
	}))
	defer srv.Close()

	r := runner.New(backend.NewClient(srv.URL, ""), runner.NewResultStore())
	ch, err := r.Start(safeItem("tools/language_health.py"), "--lang swe", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	blocks := collect(t, ch)

	// 固定順: バナー → メタ → ライフサイクル → 警告 → stdout → stderr → 最終バナー
	want := []runner.BlockType{
		runner.BlockBanner,
		runner.BlockMeta,
		runner.BlockLifecycle,
		runner.BlockWarning,
		runner.BlockStdout,
		runner.BlockStderr,
		runner.BlockResult,
	}
	got := blockTypes(blocks)
	if len(got) != len(want) {
		t.Fatalf("block types: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block[%d]: got %v, want %v", i, got[i], want[i])
		}
	}

	last := blocks[len(blocks)-1]
	if last.Result != runner.ResultSuccess {
		t.Errorf("final banner: got %v, want success", last.Result)
	}
	stdout := blocks[4]
	if stdout.TruncationMarker == "" {
		t.Error("truncated stdout should carry a marker")
	}
	if len(stdout.Lines) != 2 {
		t.Errorf("stdout lines: %v", stdout.Lines)
	}
	// 実行中ハンドルは外れている
	if _, _, ok := r.Active(); ok {
		t.Error("active handle should be cleared after completion")
	}
}

func TestRunner_StderrShownOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trace_id": "tr", "success": true, "stdout": "ok", "stderr": "deprecation notice"}`))
	}))
	defer srv.Close()

	r := runner.New(backend.NewClient(srv.URL, ""), runner.NewResultStore())
	ch, err := r.Start(safeItem("tools/t.py"), "", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	blocks := collect(t, ch)

	found := false
	for _, b := range blocks {
		if b.Type == runner.BlockStderr {
			found = true
		}
	}
	if !found {
		t.Error("non-empty stderr should be shown even when the run succeeds")
	}
}

func TestRunner_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"trace_id": "tr", "success": true, "stdout": "ok"}`))
	}))
	defer srv.Close()

	r := runner.New(backend.NewClient(srv.URL, ""), runner.NewResultStore())
	ch, err := r.Start(safeItem("tools/a.py"), "", false)
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}

	// アクティブ中の2本目は開始されない
	if _, err := r.Start(safeItem("tools/b.py"), "", false); !errors.Is(err, runner.ErrBusy) {
		t.Errorf("second Start: got %v, want ErrBusy", err)
	}

	close(release)
	collect(t, ch)

	// 完了後は再び開始できる
	ch2, err := r.Start(safeItem("tools/b.py"), "", false)
	if err != nil {
		t.Fatalf("Start after completion: %v", err)
	}
	collect(t, ch2)
}

func TestRunner_ConfirmationGate(t *testing.T) {
	r := runner.New(backend.NewClient("http://127.0.0.1:1", ""), runner.NewResultStore())

	for _, risk := range []classify.Risk{classify.RiskModerate, classify.RiskHeavy} {
		item := safeItem("builder/orchestrator.py")
		item.Risk = risk
		if _, err := r.Start(item, "", false); !errors.Is(err, runner.ErrConfirmRequired) {
			t.Errorf("risk %q without confirm: got %v, want ErrConfirmRequired", risk, err)
		}
		// 拒否された開始はハンドルを残さない
		if _, _, ok := r.Active(); ok {
			t.Errorf("risk %q: no active handle expected", risk)
		}
	}
}

func TestRunner_ConfirmedHeavyRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trace_id": "tr", "success": true, "stdout": "built"}`))
	}))
	defer srv.Close()

	r := runner.New(backend.NewClient(srv.URL, ""), runner.NewResultStore())
	item := safeItem("builder/orchestrator.py")
	item.Risk = classify.RiskHeavy
	ch, err := r.Start(item, "", true)
	if err != nil {
		t.Fatalf("confirmed heavy Start: %v", err)
	}
	blocks := collect(t, ch)
	if blocks[len(blocks)-1].Result != runner.ResultSuccess {
		t.Errorf("final banner: %+v", blocks[len(blocks)-1])
	}
}

func TestRunner_UnwiredItemDoesNotStart(t *testing.T) {
	r := runner.New(backend.NewClient("http://127.0.0.1:1", ""), runner.NewResultStore())
	item := safeItem("tools/orphan.py")
	item.WiredToolID = ""
	if _, err := r.Start(item, "", false); !errors.Is(err, runner.ErrNotRunnable) {
		t.Errorf("got %v, want ErrNotRunnable", err)
	}
}

func TestRunner_CancelDiscardsLateResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	store := runner.NewResultStore()
	r := runner.New(backend.NewClient(srv.URL, ""), store)
	ch, err := r.Start(safeItem("tools/slow.py"), "", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	r.Cancel()
	blocks := collect(t, ch)

	// 中断後はバナーと中断通知のみ。stdout や結果メタは載らない
	if len(blocks) != 2 {
		t.Fatalf("blocks after cancel: %v", blockTypes(blocks))
	}
	if blocks[1].Type != runner.BlockResult || blocks[1].Result != runner.ResultAborted {
		t.Errorf("expected abort banner, got %+v", blocks[1])
	}
	if store.Len() != 0 {
		t.Errorf("cancelled run should not be stored, got %d results", store.Len())
	}
	if _, _, ok := r.Active(); ok {
		t.Error("active handle should be cleared after cancel")
	}
}

func TestRunner_TransportFailure(t *testing.T) {
	r := runner.New(backend.NewClient("http://127.0.0.1:1", ""), runner.NewResultStore())
	ch, err := r.Start(safeItem("tools/t.py"), "", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	blocks := collect(t, ch)

	last := blocks[len(blocks)-1]
	if last.Type != runner.BlockResult || last.Result != runner.ResultFailure {
		t.Errorf("expected failure banner, got %+v", last)
	}
	hasStderr := false
	for _, b := range blocks {
		if b.Type == runner.BlockStderr {
			hasStderr = true
		}
	}
	if !hasStderr {
		t.Error("transport error text should appear as stderr")
	}
}

func TestRunner_TreeProducerGetsTreeBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trace_id": "tr", "success": true, "stdout": "{\"swe\": {\"lexicon\": 1200}}"}`))
	}))
	defer srv.Close()

	r := runner.New(backend.NewClient(srv.URL, ""), runner.NewResultStore())
	item := safeItem("matrix/scan_index.py")
	ch, err := r.Start(item, "", false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	blocks := collect(t, ch)

	// tree は stdout の直後に挿入される
	idx := -1
	for i, b := range blocks {
		if b.Type == runner.BlockTree {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatalf("expected a tree block, got %v", blockTypes(blocks))
	}
	if blocks[idx-1].Type != runner.BlockStdout {
		t.Errorf("tree block should follow stdout, got %v", blockTypes(blocks))
	}
}

func TestRunner_ArgsAreTokenized(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"trace_id": "tr", "success": true}`))
	}))
	defer srv.Close()

	r := runner.New(backend.NewClient(srv.URL, ""), runner.NewResultStore())
	ch, err := r.Start(safeItem("tools/t.py"), `--lang "northern sami"`, false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	collect(t, ch)

	want := `"args":["--lang","northern sami"]`
	if !strings.Contains(gotBody, want) {
		t.Errorf("request body should carry tokenized args, got %s", gotBody)
	}
}
