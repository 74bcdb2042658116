package registry

import (
	"strings"

	"github.com/0x6d61/glotdeck/internal/classify"
)

// ToolDescriptor はYAMLから読み込む静的レジストリのエントリ。
// バックエンドの実行許可リストと1対1対応し、Goコードを書かずに
// registry/*.yaml を追加するだけで新ツールを配線できる。
type ToolDescriptor struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Path        string        `yaml:"path"`
	Command     []string      `yaml:"command"`
	Category    string        `yaml:"category"`
	Group       string        `yaml:"group"`
	Risk        classify.Risk `yaml:"risk"`
	Description string        `yaml:"description"` // Markdown。詳細ペインで glamour レンダリングされる
	TimeoutSec  int           `yaml:"timeout_sec"` // 表示専用。強制はバックエンドが行う
	Params      []ParamDoc    `yaml:"params"`
	Flags       Capabilities  `yaml:"flags"`
}

// ParamDoc は1引数のドキュメント。
type ParamDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Capabilities はツールのケイパビリティフラグ。
type Capabilities struct {
	SupportsVerbose  bool `yaml:"supports_verbose"`
	SupportsJSON     bool `yaml:"supports_json"`
	Hidden           bool `yaml:"hidden"`
	RequiresElevated bool `yaml:"requires_elevated"`
}

// CommandPreview は command ベクトルをスペース結合したプレビュー文字列を返す。
func (d *ToolDescriptor) CommandPreview() string {
	return strings.Join(d.Command, " ")
}
