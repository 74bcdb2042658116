package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/0x6d61/glotdeck/internal/registry"
)

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()

	yaml1 := `
id: language_health
title: Language Health
path: tools/language_health.py
command: ["python", "tools/language_health.py"]
category: Tools
group: Diagnostics
risk: safe
description: "各言語の文法・レキシコンの健全性レポート"
params:
  - name: --lang
    description: "ISO 639-3 コードで対象言語を限定"
flags:
  supports_verbose: true
  supports_json: true
`
	if err := os.WriteFile(filepath.Join(dir, "language_health.yaml"), []byte(yaml1), 0o600); err != nil {
		t.Fatal(err)
	}

	r := registry.NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	def, ok := r.Get("language_health")
	if !ok {
		t.Fatal("language_health not found in registry")
	}
	if def.Path != "tools/language_health.py" {
		t.Errorf("Path: got %q", def.Path)
	}
	if got := def.CommandPreview(); got != "python tools/language_health.py" {
		t.Errorf("CommandPreview: got %q", got)
	}
	if !def.Flags.SupportsJSON {
		t.Error("SupportsJSON: want true")
	}
	if len(def.Params) != 1 || def.Params[0].Name != "--lang" {
		t.Errorf("Params: got %+v", def.Params)
	}
}

func TestRegistry_LoadDir_NonExistentDir(t *testing.T) {
	r := registry.NewRegistry()
	// 存在しないディレクトリはエラーにならない（起動時の柔軟性）
	if err := r.LoadDir("/nonexistent/path/to/registry"); err != nil {
		t.Errorf("LoadDir on missing dir should not error, got: %v", err)
	}
}

func TestRegistry_LoadDir_MissingID(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("title: no id here\npath: x.py\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r := registry.NewRegistry()
	if err := r.LoadDir(dir); err == nil {
		t.Error("expected error for descriptor without id")
	}
}

func TestRegistry_ByPath(t *testing.T) {
	r := registry.NewRegistry()
	r.Register(&registry.ToolDescriptor{ID: "t1", Path: "tools/a.py"})

	if _, ok := r.ByPath("tools/a.py"); !ok {
		t.Error("ByPath exact match failed")
	}
	// 配線判定は完全一致のみ
	if _, ok := r.ByPath("tools/a"); ok {
		t.Error("ByPath should not match a prefix")
	}
}
