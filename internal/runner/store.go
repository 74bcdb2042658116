package runner

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/0x6d61/glotdeck/internal/backend"
)

// maxStoredResults を超えた分は古い順に破棄される。
const maxStoredResults = 100

// storedResult は保存済みの正規化結果とその受領時刻。
type storedResult struct {
	ID         string
	Result     backend.RunResult
	ReceivedAt time.Time
}

// ResultStore は正規化済み実行結果をメモリに保持する。
// コンソールの履歴ジャンプと「フルログ表示」がここを参照する。
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]*storedResult
	order   []string // 受領順。先頭が最も古い
}

// NewResultStore は空の ResultStore を返す。
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]*storedResult)}
}

// Save は結果を保存し、その保存 ID を返す。
// trace_id があればそれを、なければツール ID と時刻から合成した ID を使う。
func (s *ResultStore) Save(r backend.RunResult) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.TraceID
	if id == "" {
		id = MakeID(r.ToolID, time.Now())
	}
	if _, exists := s.results[id]; !exists {
		s.order = append(s.order, id)
	}
	s.results[id] = &storedResult{ID: id, Result: r, ReceivedAt: time.Now()}

	// 上限超過分を古い順に破棄
	for len(s.order) > maxStoredResults {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.results, oldest)
	}
	return id
}

// Get は保存 ID で結果を取得する。
func (s *ResultStore) Get(id string) (backend.RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return backend.RunResult{}, false
	}
	return r.Result, true
}

// ForTool は指定ツールの結果を新しい順で返す。
func (s *ResultStore) ForTool(toolID string) []backend.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []backend.RunResult
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.results[s.order[i]]
		if r.Result.ToolID == toolID {
			out = append(out, r.Result)
		}
	}
	return out
}

// Len は保存件数を返す。
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// FullText は指定 ID の結果の全文を文字列で返す。
func (s *ResultStore) FullText(id string) (string, bool) {
	r, ok := s.Get(id)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s (trace: %s, exit: %d) ===\n", r.ToolID, r.TraceID, r.ExitCode))
	if r.Stdout != "" {
		sb.WriteString(r.Stdout)
		if !strings.HasSuffix(r.Stdout, "\n") {
			sb.WriteByte('\n')
		}
	}
	if r.Stderr != "" {
		sb.WriteString("--- stderr ---\n")
		sb.WriteString(r.Stderr)
		if !strings.HasSuffix(r.Stderr, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), true
}

// MakeID はツール ID と時刻から一意 ID を生成する。
func MakeID(toolID string, t time.Time) string {
	return fmt.Sprintf("%s@%d", toolID, t.UnixMicro())
}
