package registry

import (
	"path"
	"sort"
	"strings"

	"github.com/0x6d61/glotdeck/internal/classify"
	"github.com/0x6d61/glotdeck/pkg/schema"
)

// ToolItem は統合ビューエンティティ。
// インベントリのロードごとに再導出され、永続化されない。
type ToolItem struct {
	Key      string // パス（synthesized エントリも Descriptor のパスを使う）
	Title    string
	Path     string
	Category string
	Group    string

	Kind       classify.Kind
	Risk       classify.Risk
	Status     classify.Status
	Visibility classify.Visibility

	HideByDefault bool

	// WiredToolID が空でなければ静的レジストリに配線済みで実行可能。
	// 不変条件: WiredToolID が存在するなら同一パスのレジストリエントリが存在する。
	WiredToolID    string
	CommandPreview string
	SourceGroup    string // 最初にこのパスが現れたインベントリグループ

	Notes   []string
	UISteps []string

	Descriptor *ToolDescriptor // 配線済みの場合のみ非 nil（詳細ペイン用）
}

// Runnable は配線済み（= バックエンドが実行を許可している）かを返す。
func (it *ToolItem) Runnable() bool { return it.WiredToolID != "" }

// Resolve はインベントリのパスグループと静的レジストリを統合し、
// 重複排除済み・配線判定済みの ToolItem 一覧を返す。
//
// アルゴリズム:
//  1. 全グループを順にフラット化。空白とすでに見たパスはスキップ。
//     有効なソースグループは最初に現れたグループ（グループ順はバックエンドの
//     明示的な優先順位リストであり、ここでは並べ替えない）。
//  2. 各パスを分類し、除外パスを落とし、レジストリとのパス完全一致で
//     配線IDとコマンドプレビューを決める。
//  3. インベントリに現れなかったレジストリエントリは mismatch ノート付きで
//     合成する。バックエンドが知っているツールが黙って消えることはない。
//  4. (category, group, title) 昇順・大文字小文字無視でソート。
//
// 保証: 全レジストリIDが出力にちょうど1回現れ、全インベントリパスは
// 高々1回しか現れない。
func Resolve(groups []schema.PathGroup, reg *Registry, entrypoints map[string]bool) []ToolItem {
	var items []ToolItem
	seen := make(map[string]bool)
	wiredPaths := make(map[string]bool)

	for _, g := range groups {
		for _, p := range g.Paths {
			p = strings.TrimSpace(p)
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true

			res := classify.Classify(entrypoints, p)
			if res.ExcludeFromUI {
				continue
			}

			item := buildItem(p, g.Name, res, reg)
			if item.WiredToolID != "" {
				wiredPaths[p] = true
			}
			items = append(items, item)
		}
	}

	// レジストリにあるのにインベントリから消えたツールを合成する
	for _, def := range reg.All() {
		if wiredPaths[def.Path] {
			continue
		}
		res := classify.Classify(entrypoints, def.Path)
		item := buildItem(def.Path, "", res, reg)
		item.Notes = append(item.Notes,
			"Registered with the backend but absent from the discovered inventory (inventory/registry mismatch)")
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if c := strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category)); c != 0 {
			return c < 0
		}
		if c := strings.Compare(strings.ToLower(a.Group), strings.ToLower(b.Group)); c != 0 {
			return c < 0
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})

	return items
}

// buildItem は分類結果とレジストリ照合から1つの ToolItem を構築する。
func buildItem(p, sourceGroup string, res classify.Result, reg *Registry) ToolItem {
	item := ToolItem{
		Key:           p,
		Title:         titleFromPath(p),
		Path:          p,
		Category:      res.Category,
		Group:         res.Group,
		Kind:          res.Kind,
		Risk:          res.Risk,
		Status:        res.Status,
		Visibility:    res.Visibility,
		HideByDefault: res.HideByDefault,
		SourceGroup:   sourceGroup,
		Notes:         res.Notes,
		UISteps:       res.UISteps,
	}

	if def, ok := reg.ByPath(p); ok {
		item.WiredToolID = def.ID
		item.CommandPreview = def.CommandPreview()
		item.Descriptor = def
		if def.Title != "" {
			item.Title = def.Title
		}
		// レジストリが明示するリスクは分類のデフォルトを上書きする
		if def.Risk != "" {
			item.Risk = def.Risk
		}
		if def.Flags.Hidden {
			item.HideByDefault = true
			item.Visibility = classify.VisibilityDebug
		}
	}

	return item
}

// titleFromPath はパスのベース名から表示タイトルを導出する。
// 例: "tools/language_health.py" → "language health"
func titleFromPath(p string) string {
	base := path.Base(p)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return strings.ReplaceAll(base, "_", " ")
}
