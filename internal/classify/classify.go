// Package classify maps discovered backend paths to category/risk/visibility records.
//
// Classify は全域関数であり、どんなパスに対しても必ず分類結果を返す。
// 分類は順序付きルールテーブル（先勝ち）で行い、各ルールは独立してテストできる。
package classify

import (
	"path"
	"strings"
)

// Kind は ToolItem の種別。
type Kind string

const (
	KindEntrypoint Kind = "entrypoint"
	KindTool       Kind = "tool"
	KindScript     Kind = "script"
	KindTest       Kind = "test"
	KindUtility    Kind = "utility"
	KindAgent      Kind = "agent"
	KindPrototype  Kind = "prototype"
)

// Result は1パスの分類結果。全フィールドが常に定義される。
type Result struct {
	Category      string
	Group         string
	Kind          Kind
	Risk          Risk
	Status        Status
	Visibility    Visibility
	HideByDefault bool
	ExcludeFromUI bool
	Notes         []string
	UISteps       []string
}

// ruleCtx はルール評価に渡す前計算済みコンテキスト。
type ruleCtx struct {
	path        string
	lower       string
	base        string // 小文字のファイル名
	entrypoints map[string]bool
}

// rule は (述語, 結果ビルダー) の組。テーブルを上から評価し最初の一致が勝つ。
type rule struct {
	name  string
	match func(c ruleCtx) bool
	build func(c ruleCtx) Result
}

// NewEntrypointSet はルートエントリポイントのパス集合を作る。
func NewEntrypointSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p != "" {
			set[p] = true
		}
	}
	return set
}

// Classify は path を分類する。全域・純粋・決して失敗しない。
// entrypoints はルートエントリポイントの集合（NewEntrypointSet で作る）。
func Classify(entrypoints map[string]bool, p string) Result {
	c := ruleCtx{
		path:        p,
		lower:       strings.ToLower(p),
		base:        strings.ToLower(path.Base(p)),
		entrypoints: entrypoints,
	}
	for _, r := range rules {
		if r.match(c) {
			return r.build(c)
		}
	}
	// 到達しない: テーブル末尾の fallback ルールは常に一致する
	return fallbackResult(c)
}

// excludedPatterns はプレゼンテーションから除外するパス。
// パッケージングマーカー、生成物ディレクトリ、ドキュメント/設定ディレクトリ。
var excludedPatterns = NewPatternSet([]string{
	`(^|/)__pycache__/`,
	`\.egg-info`,
	`(^|/)__init__\.py$`,
	`(^|/)setup\.py$`,
	`(^|/)build_output/`,
	`(^|/)generated/`,
	`(^|/)dist/`,
	`^docs/`,
	`^config/`,
	`^\.github/`,
})

// aiNamePatterns は AI エージェント系の命名規則。
// どのディレクトリにあっても AI カテゴリに強制し、デフォルト非表示にする。
var aiNamePatterns = NewPatternSet([]string{
	`(^|/)ai_`,
	`agent`,
	`(^|/)llm_`,
})

var tierBootstrapPatterns = NewPatternSet([]string{
	`tier_?\d*_?bootstrap`,
	`bootstrap_tier`,
})

// testGroupKeywords は tests/ 配下のグルーピングキーワード。固定順で先勝ち。
var testGroupKeywords = []string{"smoke", "gf", "lexicon", "frames", "api", "integration"}

// rules は分類ルールテーブル。評価順がそのまま優先順位。
// ディレクトリ固有ルールは常に汎用ルールより上に置く。
var rules = []rule{
	{
		name:  "excluded",
		match: func(c ruleCtx) bool { return excludedPatterns.Match(c.lower) },
		build: func(c ruleCtx) Result {
			// 非フィルタ呼び出し元のために整合した hidden/internal レコードを返す
			return Result{
				Category:      "Internal",
				Group:         "Excluded",
				Kind:          KindUtility,
				Risk:          RiskSafe,
				Status:        StatusInternal,
				Visibility:    VisibilityDebug,
				HideByDefault: true,
				ExcludeFromUI: true,
			}
		},
	},
	{
		name:  "root-entrypoint",
		match: func(c ruleCtx) bool { return c.entrypoints[c.path] },
		build: func(c ruleCtx) Result {
			return Result{
				Category:   "Entrypoints",
				Group:      "Pipeline",
				Kind:       KindEntrypoint,
				Risk:       RiskFromPath(c.path),
				Status:     StatusFromPath(c.path),
				Visibility: VisibilityDefault,
				UISteps: []string{
					"Review the argument string before running",
					"Pipeline entrypoints operate on the whole repository",
				},
			}
		},
	},
	{
		name:  "grammar-build",
		match: func(c ruleCtx) bool { return strings.HasPrefix(c.lower, "builder/") },
		build: func(c ruleCtx) Result {
			return Result{
				Category:   "Grammar Build",
				Group:      "Builder",
				Kind:       KindTool,
				Risk:       RiskHeavy, // ビルドエリアは常に heavy
				Status:     StatusFromPath(c.path),
				Visibility: VisibilityDefault,
				Notes:      []string{"Rebuilds grammar artifacts; long-running and overwrites generated output"},
				UISteps: []string{
					"Check backend health before a full rebuild",
					"Prefer a single-language build while iterating",
				},
			}
		},
	},
	{
		name:  "matrix-index",
		match: func(c ruleCtx) bool { return strings.HasPrefix(c.lower, "matrix/") },
		build: func(c ruleCtx) Result {
			return Result{
				Category:   "Matrix & Index",
				Group:      "Scanners",
				Kind:       KindTool,
				Risk:       RiskFromPath(c.path),
				Status:     StatusFromPath(c.path),
				Visibility: VisibilityDefault,
				Notes:      []string{"Scans the language matrix / feature index"},
			}
		},
	},
	{
		name:  "qa-tooling",
		match: func(c ruleCtx) bool { return strings.HasPrefix(c.lower, "tools/qa/") },
		build: func(c ruleCtx) Result {
			return Result{
				Category:   "QA",
				Group:      "Reports",
				Kind:       KindTool,
				Risk:       RiskFromPath(c.path),
				Status:     StatusFromPath(c.path),
				Visibility: VisibilityDefault,
			}
		},
	},
	{
		// tools/ 直下: キーワードサブパターンでグループを精緻化する。
		// サブパターンは固定順（AI → tier-bootstrap → diagnostics → lexicon → 一般）。
		name:  "tools-dir",
		match: func(c ruleCtx) bool { return strings.HasPrefix(c.lower, "tools/") },
		build: func(c ruleCtx) Result {
			risk := RiskFromPath(c.path)
			status := StatusFromPath(c.path)
			switch {
			case aiNamePatterns.Match(c.base):
				return Result{
					Category:      "AI Agents",
					Group:         "Agents",
					Kind:          KindAgent,
					Risk:          risk,
					Status:        status,
					Visibility:    VisibilityDebug,
					HideByDefault: true,
					Notes:         []string{"AI repair/judge agents consume API quota; run deliberately"},
				}
			case tierBootstrapPatterns.Match(c.lower):
				return Result{
					Category:   "Tools",
					Group:      "Tier Bootstrap",
					Kind:       KindTool,
					Risk:       risk,
					Status:     status,
					Visibility: VisibilityDefault,
					UISteps: []string{
						"Bootstrap one tier at a time",
						"Verify lexicon coverage afterwards under QA",
					},
				}
			case containsAny(c.lower, "diagnostic", "diagnose", "cleanup", "health"):
				return Result{
					Category:   "Tools",
					Group:      "Diagnostics",
					Kind:       KindTool,
					Risk:       risk,
					Status:     status,
					Visibility: VisibilityDefault,
				}
			case containsAny(c.lower, "lexicon", "wikidata", "harvest"):
				return Result{
					Category:   "Tools",
					Group:      "Lexicon",
					Kind:       KindTool,
					Risk:       risk,
					Status:     status,
					Visibility: VisibilityDefault,
				}
			default:
				return Result{
					Category:   "Tools",
					Group:      "General",
					Kind:       KindTool,
					Risk:       risk,
					Status:     status,
					Visibility: VisibilityDefault,
				}
			}
		},
	},
	{
		// 言語ディレクトリ配下に残る世代別スクリプト。常に非表示。
		name: "legacy-per-dir",
		match: func(c ruleCtx) bool {
			return strings.HasPrefix(c.lower, "legacy/") || strings.Contains(c.lower, "/legacy/")
		},
		build: func(c ruleCtx) Result {
			return Result{
				Category:      "Legacy",
				Group:         "Scripts",
				Kind:          KindScript,
				Risk:          RiskFromPath(c.path),
				Status:        StatusLegacy,
				Visibility:    VisibilityDebug,
				HideByDefault: true,
				Notes:         []string{"Superseded by the current pipeline; kept for reference"},
			}
		},
	},
	{
		name: "scripts-demo-test",
		match: func(c ruleCtx) bool {
			return strings.HasPrefix(c.lower, "scripts/") &&
				containsAny(c.base, "demo", "test")
		},
		build: func(c ruleCtx) Result {
			return Result{
				Category:   "Scripts",
				Group:      "Demos",
				Kind:       KindScript,
				Risk:       RiskFromPath(c.path),
				Status:     StatusFromPath(c.path),
				Visibility: VisibilityDebug,
			}
		},
	},
	{
		// utils/ は「実行可能 CLI の許可リスト」と「ライブラリ専用」に分かれる。
		// AI 命名のユーティリティは許可リストに載っていても AI カテゴリへ強制。
		name:  "utility-dir",
		match: func(c ruleCtx) bool { return strings.HasPrefix(c.lower, "utils/") },
		build: func(c ruleCtx) Result {
			risk := RiskFromPath(c.path)
			status := StatusFromPath(c.path)
			if aiNamePatterns.Match(c.base) {
				return Result{
					Category:      "AI Agents",
					Group:         "Utilities",
					Kind:          KindAgent,
					Risk:          risk,
					Status:        status,
					Visibility:    VisibilityDebug,
					HideByDefault: true,
				}
			}
			for _, allowed := range utilityVisibleAllowlist {
				if c.path == allowed {
					return Result{
						Category:   "Utilities",
						Group:      "CLI",
						Kind:       KindUtility,
						Risk:       risk,
						Status:     status,
						Visibility: VisibilityDefault,
					}
				}
			}
			return Result{
				Category:      "Utilities",
				Group:         "Library",
				Kind:          KindUtility,
				Risk:          risk,
				Status:        status,
				Visibility:    VisibilityDebug,
				HideByDefault: true,
				Notes:         []string{"Library module; importable but not a standalone CLI"},
			}
		},
	},
	{
		name: "ai-service",
		match: func(c ruleCtx) bool {
			return strings.HasPrefix(c.lower, "ai_service/") || strings.HasPrefix(c.lower, "ai/")
		},
		build: func(c ruleCtx) Result {
			return Result{
				Category:      "AI Agents",
				Group:         "Service",
				Kind:          KindAgent,
				Risk:          RiskFromPath(c.path),
				Status:        StatusFromPath(c.path),
				Visibility:    VisibilityDebug,
				HideByDefault: true,
			}
		},
	},
	{
		name: "nlg-prototype",
		match: func(c ruleCtx) bool {
			return strings.HasPrefix(c.lower, "nlg/") || strings.HasPrefix(c.lower, "prototypes/")
		},
		build: func(c ruleCtx) Result {
			return Result{
				Category:      "Prototypes",
				Group:         "NLG",
				Kind:          KindPrototype,
				Risk:          RiskFromPath(c.path),
				Status:        StatusExperimental,
				Visibility:    VisibilityDebug,
				HideByDefault: true,
			}
		},
	},
	{
		name: "test-dir",
		match: func(c ruleCtx) bool {
			return strings.HasPrefix(c.lower, "tests/") || strings.HasPrefix(c.lower, "test/")
		},
		build: func(c ruleCtx) Result {
			group := "Misc"
			for _, kw := range testGroupKeywords {
				if strings.Contains(c.lower, kw) {
					group = strings.ToUpper(kw[:1]) + kw[1:]
					break
				}
			}
			return Result{
				Category:   "Tests",
				Group:      group,
				Kind:       KindTest,
				Risk:       RiskFromPath(c.path),
				Status:     StatusFromPath(c.path),
				Visibility: VisibilityDebug,
			}
		},
	},
	{
		name:  "fallback",
		match: func(c ruleCtx) bool { return true },
		build: fallbackResult,
	},
}

// fallbackResult は未分類バケット。Visibility はデバッグ限定。
func fallbackResult(c ruleCtx) Result {
	return Result{
		Category:      "Uncategorized",
		Group:         "Other",
		Kind:          KindScript,
		Risk:          RiskFromPath(c.path),
		Status:        StatusFromPath(c.path),
		Visibility:    VisibilityDebug,
		HideByDefault: true,
	}
}

// containsAny は s がキーワードのいずれかを含むかを返す。
func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
