package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/0x6d61/glotdeck/internal/backend"
	"github.com/0x6d61/glotdeck/internal/classify"
	"github.com/0x6d61/glotdeck/internal/config"
	"github.com/0x6d61/glotdeck/internal/prefs"
	"github.com/0x6d61/glotdeck/internal/registry"
	"github.com/0x6d61/glotdeck/internal/runner"
	"github.com/0x6d61/glotdeck/internal/tui"
	"github.com/0x6d61/glotdeck/pkg/schema"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "設定ファイルのパス")
		backendURL = flag.String("backend", "", "バックエンド URL（設定ファイルより優先）")
		showDebug  = flag.Bool("debug-tools", false, "起動時からデバッグ可視性のツールを表示する")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `⚡ Glotdeck — NLG バックエンドのオペレーターコンソール

Usage:
  glotdeck [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  GLOTDECK_BACKEND_URL  バックエンド URL（-backend と同じ）
  GLOTDECK_TOKEN        Bearer トークン（省略可）

Keys:
  Tab      ペイン切替
  Enter    選択中のツールを実行
  Ctrl+D   デバッグツールの表示切替
  Ctrl+O   コンソールログの展開/折りたたみ
  Ctrl+X   実行中のツールを中断
  Ctrl+C   終了
`)
	}
	flag.Parse()

	// .env は存在すれば読む（なくてもよい）
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "設定エラー:", err)
		os.Exit(1)
	}
	if env := os.Getenv("GLOTDECK_BACKEND_URL"); env != "" {
		cfg.Backend.BaseURL = env
	}
	if *backendURL != "" {
		cfg.Backend.BaseURL = *backendURL
	}
	if env := os.Getenv("GLOTDECK_TOKEN"); env != "" {
		cfg.Backend.Token = env
	}

	// --- Registry ---
	reg := registry.NewRegistry()
	if err := reg.LoadDir(cfg.RegistryDir); err != nil {
		fmt.Fprintf(os.Stderr, "レジストリロードエラー: %v\n", err)
		os.Exit(1)
	}

	// --- Backend ---
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token)

	// グレースフルシャットダウン
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// インベントリとヘルスは起動時に1回取得する。
	// バックエンドが落ちていてもレジストリだけでコンソールは立ち上がる。
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var groups []schema.PathGroup
	inv, invErr := client.Inventory(fetchCtx)
	if invErr == nil {
		groups = inv.Groups
	} else {
		fmt.Fprintf(os.Stderr, "インベントリ取得失敗（レジストリのみで起動）: %v\n", invErr)
	}
	health, _ := client.Health(fetchCtx)

	// --- Resolve ---
	entrypoints := classify.NewEntrypointSet(cfg.Entrypoints)
	items := registry.Resolve(groups, reg, entrypoints)

	// --- Prefs / Runner ---
	store := prefs.NewStore(cfg.StateDir)
	run := runner.New(client, runner.NewResultStore())

	// --- TUI ---
	m := tui.New(items, run, store, cfg.Backend.BaseURL)
	m.SetHealth(health)
	if *showDebug {
		m.ForceShowDebug()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "TUI エラー:", err)
		os.Exit(1)
	}
}
