// Package registry manages the static tool allowlist and resolves it
// against the discovered path inventory into unified tool items.
package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry はロード済みの静的ツール定義を管理する。
// バックエンドの実行許可リストのローカルミラーであり、
// ここに載っていないパスは表示できても実行はできない。
type Registry struct {
	defs   map[string]*ToolDescriptor // ID → 定義
	byPath map[string]*ToolDescriptor // パス完全一致 → 定義
}

// NewRegistry は空の Registry を返す。
func NewRegistry() *Registry {
	return &Registry{
		defs:   make(map[string]*ToolDescriptor),
		byPath: make(map[string]*ToolDescriptor),
	}
}

// LoadDir は dir 以下の *.yaml ファイルをロードして定義を登録する。
// ディレクトリが存在しない場合はエラーにしない（起動時の柔軟性）。
func (r *Registry) LoadDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}
		if loadErr := r.loadFile(path); loadErr != nil {
			return fmt.Errorf("load %s: %w", path, loadErr)
		}
		return nil
	})
}

func (r *Registry) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var def ToolDescriptor
	if err := yaml.Unmarshal(data, &def); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if def.ID == "" {
		return fmt.Errorf("tool descriptor missing 'id' field")
	}
	if def.Path == "" {
		return fmt.Errorf("tool descriptor %q missing 'path' field", def.ID)
	}
	r.Register(&def)
	return nil
}

// Register はプログラム的に ToolDescriptor を登録する（テスト・組み込み向け）。
func (r *Registry) Register(def *ToolDescriptor) {
	r.defs[def.ID] = def
	r.byPath[def.Path] = def
}

// Get はツールIDに対応する定義を返す。
func (r *Registry) Get(id string) (*ToolDescriptor, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// ByPath はパス完全一致で定義を返す。配線判定は常に完全一致で行う。
func (r *Registry) ByPath(path string) (*ToolDescriptor, bool) {
	d, ok := r.byPath[path]
	return d, ok
}

// All は登録済みの全定義を返す。
func (r *Registry) All() []*ToolDescriptor {
	result := make([]*ToolDescriptor, 0, len(r.defs))
	for _, d := range r.defs {
		result = append(result, d)
	}
	return result
}
