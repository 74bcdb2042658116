package classify

import "strings"

// Risk はツール実行の危険度ティア（確認プロンプトと表示警告の根拠）。
type Risk string

const (
	RiskSafe     Risk = "safe"
	RiskModerate Risk = "moderate"
	RiskHeavy    Risk = "heavy"
)

// Status はツールの保守状態。
type Status string

const (
	StatusActive       Status = "active"
	StatusLegacy       Status = "legacy"
	StatusExperimental Status = "experimental"
	StatusInternal     Status = "internal"
)

// Visibility はデフォルト表示かデバッグモード限定かを表す。
type Visibility string

const (
	VisibilityDefault Visibility = "default"
	VisibilityDebug   Visibility = "debug"
)

// heavyKeywords は heavy リスクを示すキーワード。moderate より先に判定する。
// grammar のフルリビルドや一括収集など、長時間かつ生成物を書き換える処理。
var heavyKeywords = []string{
	"builder/",
	"orchestrator",
	"rebuild",
	"compile_all",
	"harvest",
	"bootstrap",
	"deploy",
	"full_scan",
}

// moderateKeywords は moderate リスクを示すキーワード。
// 生成物・インデックスの更新など書き込みを伴うが範囲が限定される処理。
var moderateKeywords = []string{
	"import",
	"update",
	"generate",
	"migrate",
	"write",
	"sync",
	"bulk",
	"cleanup",
}

// RiskFromPath は path のキーワード走査で Risk を返す。
// heavy キーワードを moderate より先に判定し、最初の一致が勝つ。
// どれにも一致しなければ safe。常に成功する。
func RiskFromPath(path string) Risk {
	p := strings.ToLower(path)
	for _, kw := range heavyKeywords {
		if strings.Contains(p, kw) {
			return RiskHeavy
		}
	}
	for _, kw := range moderateKeywords {
		if strings.Contains(p, kw) {
			return RiskModerate
		}
	}
	return RiskSafe
}

// internalMarkers はパッケージング由来の「内部モジュール」マーカー。
// legacy / experimental キーワードより優先して判定する。
var internalMarkers = []string{
	"__init__",
	"_internal",
	"conftest",
}

var legacyKeywords = []string{
	"legacy",
	"old_",
	"_old",
	"deprecated",
}

var experimentalKeywords = []string{
	"experimental",
	"prototype",
	"draft",
	"_wip",
	"sandbox",
}

// StatusFromPath は path の接頭辞・キーワード走査で Status を返す。
// internal マーカー → legacy → experimental の順で判定し、デフォルトは active。
func StatusFromPath(path string) Status {
	p := strings.ToLower(path)
	for _, m := range internalMarkers {
		if strings.Contains(p, m) {
			return StatusInternal
		}
	}
	for _, kw := range legacyKeywords {
		if strings.Contains(p, kw) {
			return StatusLegacy
		}
	}
	for _, kw := range experimentalKeywords {
		if strings.Contains(p, kw) {
			return StatusExperimental
		}
	}
	return StatusActive
}

// primarySurfaceDirs はデフォルト表示になる主要ツールサーフェス。
var primarySurfaceDirs = []string{
	"builder/",
	"matrix/",
	"tools/",
}

// utilityVisibleAllowlist は utils/ 配下でデフォルト表示に昇格する
// 「実際に実行可能な CLI」の明示リスト。それ以外の utils/ モジュールは
// ライブラリ専用としてデバッグ表示に落ちる。
var utilityVisibleAllowlist = []string{
	"utils/lang_status.py",
	"utils/grammar_info.py",
	"utils/export_lexicon.py",
	"utils/render_sample.py",
}

// VisibilityFromPath は path の Visibility を返す。
// ルートエントリポイントと主要ツールサーフェスは default、
// utils/ は許可リストのみ default、それ以外は debug。
func VisibilityFromPath(entrypoints map[string]bool, path string) Visibility {
	if entrypoints[path] {
		return VisibilityDefault
	}
	for _, allowed := range utilityVisibleAllowlist {
		if path == allowed {
			return VisibilityDefault
		}
	}
	p := strings.ToLower(path)
	for _, dir := range primarySurfaceDirs {
		if strings.HasPrefix(p, dir) {
			return VisibilityDefault
		}
	}
	return VisibilityDebug
}
