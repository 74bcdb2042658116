package classify_test

import (
	"testing"

	"github.com/0x6d61/glotdeck/internal/classify"
)

var eps = classify.NewEntrypointSet([]string{"pipeline.py", "main.py"})

func TestClassify_Totality(t *testing.T) {
	// どんなパスでも category/group/kind/visibility が空にならない
	paths := []string{
		"",
		"pipeline.py",
		"builder/orchestrator.py",
		"matrix/feature_index_scan.py",
		"tools/qa/lexicon_coverage_report.py",
		"tools/diagnose_lang.py",
		"tools/wikidata_harvest.py",
		"tools/ai_repair_agent.py",
		"tools/tier_2_bootstrap.py",
		"legacy/swe/old_render.py",
		"scripts/demo_render.py",
		"utils/lang_status.py",
		"utils/strings_helpers.py",
		"ai_service/judge.py",
		"nlg/proto_realizer.py",
		"tests/test_smoke_basic.py",
		"docs/README.md",
		"weird/unknown//path.txt",
		"日本語/パス.py",
	}
	for _, p := range paths {
		res := classify.Classify(eps, p)
		if res.Category == "" || res.Group == "" || res.Kind == "" || res.Visibility == "" {
			t.Errorf("Classify(%q): empty field in %+v", p, res)
		}
		if res.Risk == "" || res.Status == "" {
			t.Errorf("Classify(%q): risk/status undefined in %+v", p, res)
		}
	}
}

func TestClassify_Exclusion(t *testing.T) {
	// 除外パスも整合したレコードを返す（非フィルタ呼び出し元のため）
	for _, p := range []string{
		"tools/__pycache__/cache.py",
		"builder/__init__.py",
		"docs/guide.md",
		"config/settings.yaml",
		"build_output/swe.pgf",
	} {
		res := classify.Classify(eps, p)
		if !res.ExcludeFromUI {
			t.Errorf("Classify(%q): want ExcludeFromUI, got %+v", p, res)
		}
		if res.Status != classify.StatusInternal || res.Visibility != classify.VisibilityDebug {
			t.Errorf("Classify(%q): want internal/debug record, got %+v", p, res)
		}
	}
}

func TestClassify_RootEntrypoint(t *testing.T) {
	res := classify.Classify(eps, "pipeline.py")
	if res.Category != "Entrypoints" || res.Kind != classify.KindEntrypoint {
		t.Errorf("entrypoint: got %+v", res)
	}
	if res.Visibility != classify.VisibilityDefault {
		t.Errorf("entrypoint visibility: got %s, want default", res.Visibility)
	}
}

func TestClassify_GrammarBuildIsHeavy(t *testing.T) {
	res := classify.Classify(eps, "builder/swe_build.py")
	if res.Category != "Grammar Build" || res.Risk != classify.RiskHeavy {
		t.Errorf("builder: got %+v", res)
	}
	if res.Visibility != classify.VisibilityDefault {
		t.Errorf("builder visibility: got %s, want default", res.Visibility)
	}
}

func TestClassify_ToolsSubPatterns(t *testing.T) {
	cases := []struct {
		path  string
		group string
	}{
		{"tools/diagnose_lang.py", "Diagnostics"},
		{"tools/repo_cleanup.py", "Diagnostics"},
		{"tools/language_health.py", "Diagnostics"},
		{"tools/wikidata_harvest.py", "Lexicon"},
		{"tools/lexicon_merge.py", "Lexicon"},
		{"tools/tier_2_bootstrap.py", "Tier Bootstrap"},
		{"tools/render_preview.py", "General"},
	}
	for _, tc := range cases {
		res := classify.Classify(eps, tc.path)
		if res.Group != tc.group {
			t.Errorf("Classify(%q).Group: got %q, want %q", tc.path, res.Group, tc.group)
		}
	}
}

func TestClassify_AIAgentForcedHidden(t *testing.T) {
	// tools/ にあっても utils/ にあっても AI 命名は非表示の AI カテゴリへ
	for _, p := range []string{"tools/ai_repair_agent.py", "utils/ai_batch_judge.py"} {
		res := classify.Classify(eps, p)
		if res.Category != "AI Agents" || !res.HideByDefault {
			t.Errorf("Classify(%q): want hidden AI Agents, got %+v", p, res)
		}
	}
}

func TestClassify_UtilityAllowlistSplit(t *testing.T) {
	visible := classify.Classify(eps, "utils/lang_status.py")
	if visible.Visibility != classify.VisibilityDefault || visible.Group != "CLI" {
		t.Errorf("allowlisted util: got %+v", visible)
	}

	library := classify.Classify(eps, "utils/strings_helpers.py")
	if library.Visibility != classify.VisibilityDebug || !library.HideByDefault {
		t.Errorf("library util: got %+v", library)
	}
}

func TestClassify_LegacyForcedHidden(t *testing.T) {
	res := classify.Classify(eps, "legacy/swe/render_v1.py")
	if res.Status != classify.StatusLegacy || !res.HideByDefault {
		t.Errorf("legacy: got %+v", res)
	}
}

func TestClassify_TestDirGrouping(t *testing.T) {
	cases := []struct {
		path  string
		group string
	}{
		{"tests/test_smoke_basic.py", "Smoke"},
		{"tests/gf/test_linearize.py", "Gf"},
		{"tests/test_lexicon_roundtrip.py", "Lexicon"},
		{"tests/frames/test_frame_fill.py", "Frames"},
		{"tests/test_api_contract.py", "Api"},
		{"tests/integration/test_pipeline.py", "Integration"},
		{"tests/test_misc_bits.py", "Misc"},
	}
	for _, tc := range cases {
		res := classify.Classify(eps, tc.path)
		if res.Category != "Tests" || res.Group != tc.group {
			t.Errorf("Classify(%q): got %s/%s, want Tests/%s", tc.path, res.Category, res.Group, tc.group)
		}
	}
}

func TestClassify_Fallback(t *testing.T) {
	res := classify.Classify(eps, "random/unknown_thing.txt")
	if res.Category != "Uncategorized" || res.Visibility != classify.VisibilityDebug {
		t.Errorf("fallback: got %+v", res)
	}
}

func TestRiskFromPath(t *testing.T) {
	cases := []struct {
		path string
		want classify.Risk
	}{
		{"builder/orchestrator.py", classify.RiskHeavy},
		{"tools/qa/lexicon_coverage_report.py", classify.RiskSafe},
		{"tools/wikidata_harvest.py", classify.RiskHeavy},
		{"tools/lexicon_update.py", classify.RiskModerate},
		{"tools/repo_cleanup.py", classify.RiskModerate},
		{"utils/lang_status.py", classify.RiskSafe},
	}
	for _, tc := range cases {
		if got := classify.RiskFromPath(tc.path); got != tc.want {
			t.Errorf("RiskFromPath(%q): got %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestStatusFromPath(t *testing.T) {
	cases := []struct {
		path string
		want classify.Status
	}{
		// internal マーカーは legacy/experimental キーワードより優先
		{"legacy/__init__.py", classify.StatusInternal},
		{"legacy/swe/render_v1.py", classify.StatusLegacy},
		{"tools/old_matrix_scan.py", classify.StatusLegacy},
		{"nlg/experimental_realizer.py", classify.StatusExperimental},
		{"tools/language_health.py", classify.StatusActive},
	}
	for _, tc := range cases {
		if got := classify.StatusFromPath(tc.path); got != tc.want {
			t.Errorf("StatusFromPath(%q): got %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestVisibilityFromPath(t *testing.T) {
	set := classify.NewEntrypointSet([]string{"pipeline.py"})
	cases := []struct {
		path string
		want classify.Visibility
	}{
		{"pipeline.py", classify.VisibilityDefault},
		{"tools/language_health.py", classify.VisibilityDefault},
		{"builder/orchestrator.py", classify.VisibilityDefault},
		{"utils/lang_status.py", classify.VisibilityDefault}, // 許可リスト昇格
		{"utils/strings_helpers.py", classify.VisibilityDebug},
		{"somewhere/else.py", classify.VisibilityDebug},
	}
	for _, tc := range cases {
		if got := classify.VisibilityFromPath(set, tc.path); got != tc.want {
			t.Errorf("VisibilityFromPath(%q): got %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestPatternSet_SkipsInvalidPatterns(t *testing.T) {
	ps := classify.NewPatternSet([]string{`[invalid(`, `^tools/`})
	if !ps.Match("tools/x.py") {
		t.Error("valid pattern should still match after invalid one is skipped")
	}
	if ps.Match("other/x.py") {
		t.Error("unexpected match")
	}
}
