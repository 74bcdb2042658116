package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/0x6d61/glotdeck/internal/registry"
	"github.com/0x6d61/glotdeck/internal/runner"
)

// renderLinesBlock は複数行ブロックを折りたたみ付きでレンダリングする。
// Format:
//
//	⎿  line 1
//	   line 2
//	   … +N lines (ctrl+o)
func renderLinesBlock(lines []string, marker string, width int, expanded bool, style linesStyle) string {
	const outputPrefix = "  ⎿  "
	const contPrefix = "     "
	const foldThreshold = 5
	const previewLines = 3

	shown := lines
	folded := false
	if !expanded && len(lines) > foldThreshold {
		folded = true
		shown = lines[:previewLines]
	}

	var sb strings.Builder
	for i, line := range shown {
		prefix := contPrefix
		if i == 0 {
			prefix = outputPrefix
		}
		sb.WriteString(style.Render(prefix + line))
		sb.WriteString("\n")
	}

	if folded {
		remaining := len(lines) - previewLines
		sb.WriteString(foldIndicatorStyle.Render(fmt.Sprintf("     … +%d lines (ctrl+o)", remaining)))
		sb.WriteString("\n")
	}
	if marker != "" {
		sb.WriteString(foldIndicatorStyle.Render(contPrefix + marker))
		sb.WriteString("\n")
	}
	return sb.String()
}

// linesStyle は lipgloss.Style の最小サブセット（テストでの差し替え用ではなく
// 複数スタイルを同じ関数で使うための型）。
type linesStyle interface {
	Render(...string) string
}

// renderBlock は1つのコンソールブロックをレンダリングする。
func renderBlock(b *runner.ConsoleBlock, width int, expanded bool) string {
	// キャッシュヒット判定（幅と折りたたみ状態が同じなら再利用）
	if b.RenderedCache != "" && b.CacheWidth == width && b.CacheFolded == !expanded {
		return b.RenderedCache
	}

	var out string
	switch b.Type {
	case runner.BlockBanner:
		out = bannerStyle.Render(b.Text) + "\n"
	case runner.BlockMeta:
		out = metaStyle.Render("  "+b.Text) + "\n"
	case runner.BlockLifecycle:
		out = renderLinesBlock(b.Lines, "", width, expanded, lifecycleStyle)
	case runner.BlockWarning:
		out = renderLinesBlock(b.Lines, "", width, expanded, warningStyle)
	case runner.BlockStdout:
		out = renderLinesBlock(b.Lines, b.TruncationMarker, width, expanded, stdoutStyle)
	case runner.BlockTree:
		out = renderLinesBlock(b.Lines, "", width, true, treeStyle)
	case runner.BlockStderr:
		out = renderLinesBlock(b.Lines, "", width, expanded, stderrStyle)
	case runner.BlockResult:
		switch b.Result {
		case runner.ResultSuccess:
			out = successStyle.Render(b.Text) + "\n"
		case runner.ResultAborted:
			out = abortStyle.Render(b.Text) + "\n"
		default:
			out = failureStyle.Render(b.Text) + "\n"
		}
	case runner.BlockSystem:
		out = systemStyle.Render(b.Text) + "\n"
	}

	b.RenderedCache = out
	b.CacheWidth = width
	b.CacheFolded = !expanded
	return out
}

// renderBlocks は全ブロックをビューポート用コンテンツにレンダリングする。
func renderBlocks(blocks []*runner.ConsoleBlock, width int, expanded bool) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(renderBlock(b, width, expanded))
	}
	return sb.String()
}

// renderMarkdown は glamour を使って Markdown をターミナル用にレンダリングする。
// ダークスタイルを明示指定（TUI は常にダークターミナルで使用される想定）。
// WithAutoStyle() は非 TTY 環境（テスト・CI）で plain にフォールバックするため使用しない。
func renderMarkdown(text string, width int) (string, error) {
	wrapWidth := width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return out, nil
}

// detailMarkdown は詳細ペイン用の Markdown を組み立てる。
// タイムアウトはテキスト表示のみで、クライアント側では強制しない。
func detailMarkdown(it *registry.ToolItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", it.Title)
	fmt.Fprintf(&sb, "`%s` — %s / %s · risk: **%s** · status: %s\n\n", it.Path, it.Category, it.Group, it.Risk, it.Status)

	if it.Descriptor != nil {
		d := it.Descriptor
		if d.Description != "" {
			sb.WriteString(d.Description + "\n\n")
		}
		if len(d.Params) > 0 {
			for _, p := range d.Params {
				fmt.Fprintf(&sb, "- `%s` — %s\n", p.Name, p.Description)
			}
			sb.WriteString("\n")
		}
	}
	if it.CommandPreview != "" {
		fmt.Fprintf(&sb, "```\n%s\n```\n", it.CommandPreview)
	}
	if it.Descriptor != nil && it.Descriptor.TimeoutSec > 0 {
		fmt.Fprintf(&sb, "timeout: %ds (backend enforced)\n", it.Descriptor.TimeoutSec)
	}
	for _, n := range it.Notes {
		fmt.Fprintf(&sb, "> %s\n", n)
	}
	return sb.String()
}
