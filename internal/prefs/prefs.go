// Package prefs は操作環境設定とツールごとの引数文字列を
// JSON ファイルに永続化する。読み書きはすべてベストエフォート:
// 壊れたファイル・存在しないファイル・書き込み失敗はデフォルトで動き続ける。
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const (
	uiFile   = "ui.json"
	argsFile = "tool_args.json"
)

// UI は画面側の環境設定。ゼロ値がそのままデフォルト。
type UI struct {
	ShowDebugTools bool   `json:"show_debug_tools"`
	LastToolKey    string `json:"last_tool_key"`
	ConsoleFolded  bool   `json:"console_folded"`
}

// Store は設定ディレクトリ配下の2つの JSON ファイルを管理する。
type Store struct {
	dir string

	mu   sync.Mutex
	ui   UI
	args map[string]string // key: ツールアイテムの Key
}

// NewStore は dir を使う Store を返し、既存ファイルがあれば読み込む。
// 読み込み失敗は無視してデフォルトから始める。
func NewStore(dir string) *Store {
	s := &Store{dir: dir, args: make(map[string]string)}
	s.load()
	return s
}

func (s *Store) load() {
	if data, err := os.ReadFile(filepath.Join(s.dir, uiFile)); err == nil {
		var ui UI
		if json.Unmarshal(data, &ui) == nil {
			s.ui = ui
		}
	}
	if data, err := os.ReadFile(filepath.Join(s.dir, argsFile)); err == nil {
		var args map[string]string
		if json.Unmarshal(data, &args) == nil && args != nil {
			s.args = args
		}
	}
}

// UI は現在の画面設定のコピーを返す。
func (s *Store) UI() UI {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

// SetUI は画面設定を更新してベストエフォートで保存する。
func (s *Store) SetUI(ui UI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui = ui
	s.write(uiFile, s.ui)
}

// ArgsFor は key のツールに保存された引数文字列を返す。未保存なら空。
func (s *Store) ArgsFor(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.args[key]
}

// SetArgs は key のツールの引数文字列を保存する。空文字列はエントリを消す。
func (s *Store) SetArgs(key, argsText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if argsText == "" {
		delete(s.args, key)
	} else {
		s.args[key] = argsText
	}
	s.write(argsFile, s.args)
}

// write は v を JSON でファイルに書く。失敗は握りつぶす（ベストエフォート）。
func (s *Store) write(name string, v any) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(s.dir, name), data, 0o600)
}
