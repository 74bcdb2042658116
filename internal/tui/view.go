package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/0x6d61/glotdeck/pkg/schema"
)

// detailPaneHeight is the inner height of the tool detail pane.
const detailPaneHeight = 12

// View implements tea.Model and renders the full console layout.
func (m Model) View() string {
	if !m.ready {
		return "\n  ⚡ Starting Glotdeck...\n"
	}

	// ── Status bar (1 line) ──────────────────────────────────────────────────
	statusBar := m.renderStatusBar()

	// ── Left pane: tool list ─────────────────────────────────────────────────
	leftContent := m.list.View()
	var leftStyle lipgloss.Style
	if m.focus == FocusList {
		leftStyle = leftPaneActiveStyle.Width(leftPaneOuterWidth - 2)
	} else {
		leftStyle = leftPaneStyle.Width(leftPaneOuterWidth - 2)
	}
	leftPane := leftStyle.Render(leftContent)

	// ── Right column: detail pane + console ──────────────────────────────────
	rightContentW := m.width - leftPaneOuterWidth - 2
	if rightContentW < 10 {
		rightContentW = 10
	}

	detail := detailPaneStyle.Width(rightContentW).Height(detailPaneHeight).Render(m.renderDetail(rightContentW))

	consoleContent := m.console.View()
	var consoleStyle lipgloss.Style
	if m.focus == FocusConsole {
		consoleStyle = rightPaneActiveStyle.Width(rightContentW)
	} else {
		consoleStyle = rightPaneStyle.Width(rightContentW)
	}
	consolePane := consoleStyle.Render(consoleContent)

	rightColumn := lipgloss.JoinVertical(lipgloss.Left, detail, consolePane)

	// ── Join panes side by side ──────────────────────────────────────────────
	panesRow := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightColumn)

	// ── Input bar ────────────────────────────────────────────────────────────
	inputBar := m.renderInputBar()

	base := lipgloss.JoinVertical(lipgloss.Left, statusBar, panesRow, inputBar)

	// Overlay confirmation dialogs in the center of the screen.
	switch m.inputMode {
	case InputConfirmQuit:
		base = m.overlayCenter(base, m.renderConfirmQuit())
	case InputConfirmRun:
		base = m.overlayCenter(base, m.renderConfirmRun())
	}

	return base
}

// renderStatusBar renders the single-line header with app name, backend and health.
func (m Model) renderStatusBar() string {
	appName := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("⚡ GLOTDECK")

	backendInfo := lipgloss.NewStyle().Foreground(colorMuted).Render(m.baseURL)
	healthInfo := renderHealth(m.health)

	var runInfo string
	if toolID, startedAt, ok := m.runner.Active(); ok {
		runInfo = lipgloss.NewStyle().Foreground(colorWarning).Render(
			fmt.Sprintf("▶ %s (%s)", toolID, startedAt.Format("15:04:05")))
	}

	var debugInfo string
	if m.showDebug {
		debugInfo = lipgloss.NewStyle().Foreground(colorWarning).Render("[DEBUG]")
	}

	hint := lipgloss.NewStyle().Foreground(colorMuted).Render("[Tab] Pane  [Ctrl+D] Debug  [Ctrl+X] Cancel")

	left := appName + "  " + backendInfo + "  " + healthInfo
	if runInfo != "" {
		left += "  " + runInfo
	}
	if debugInfo != "" {
		left += "  " + debugInfo
	}
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(left)-lipgloss.Width(hint)-2))

	return statusBarStyle.Width(m.width).Render(left + gap + hint)
}

// renderHealth はヘルスバッジ列を返す。未取得なら "health: ?"。
func renderHealth(h *schema.Health) string {
	if h == nil {
		return healthNoneStyle.Render("health: ?")
	}
	badge := func(name, status string) string {
		if status == "ok" {
			return healthOKStyle.Render(name + "✓")
		}
		return healthBadStyle.Render(name + "✗")
	}
	return badge("broker", h.Broker) + " " + badge("store", h.Storage) + " " + badge("engine", h.Engine)
}

// renderDetail renders the tool detail pane content.
func (m Model) renderDetail(width int) string {
	it := m.selectedItem()
	if it == nil {
		return lipgloss.NewStyle().Foreground(colorMuted).Render("  ツールが選択されていません")
	}
	md := detailMarkdown(it)
	rendered, err := renderMarkdown(md, width)
	if err != nil {
		return md
	}
	return rendered
}

// renderInputBar renders the bottom args input with context-aware prefix.
func (m Model) renderInputBar() string {
	var prefix string
	switch m.focus {
	case FocusList:
		prefix = lipgloss.NewStyle().Foreground(colorMuted).Render("[List] ↑↓ Select  [Enter] Run")
	case FocusConsole:
		prefix = lipgloss.NewStyle().Foreground(colorMuted).Render("[Log]  ↑↓ Scroll")
	case FocusInput:
		prefix = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("args>")
	}

	content := prefix + " " + m.input.View()
	w := m.width - 2
	if m.focus == FocusInput {
		return inputBarActiveStyle.Width(w).Render(content)
	}
	return inputBarStyle.Width(w).Render(content)
}

// renderConfirmQuit renders the centered quit confirmation dialog.
func (m Model) renderConfirmQuit() string {
	title := lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true).
		Render("Quit Glotdeck?")

	hint := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render("[Y] Yes  [N] No  [Esc] Cancel")

	content := fmt.Sprintf("\n  %s\n\n  %s\n", title, hint)

	return confirmQuitBoxStyle.Render(content)
}

// renderConfirmRun renders the centered risk confirmation dialog.
func (m Model) renderConfirmRun() string {
	p := m.pending
	if p == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true).
		Render(fmt.Sprintf("⚠  %s リスクのツールを実行しますか?", strings.ToUpper(string(p.item.Risk))))

	body := fmt.Sprintf("%s\n  %s", p.item.Title, p.item.CommandPreview)
	if p.argsText != "" {
		body += " " + p.argsText
	}

	hint := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render("[Y] 実行  [N] キャンセル  [Esc] キャンセル")

	content := fmt.Sprintf("\n  %s\n\n  %s\n\n  %s\n", title, body, hint)

	return confirmRunBoxStyle.Render(content)
}

// overlayCenter places the overlay string in the center of the base string.
func (m Model) overlayCenter(base, overlay string) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	// Calculate center position
	overlayH := len(overlayLines)
	overlayW := 0
	for _, line := range overlayLines {
		if w := lipgloss.Width(line); w > overlayW {
			overlayW = w
		}
	}

	startRow := (m.height - overlayH) / 2
	startCol := (m.width - overlayW) / 2
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	// Pad base to have enough lines
	for len(baseLines) < startRow+overlayH {
		baseLines = append(baseLines, strings.Repeat(" ", m.width))
	}

	// Overlay each line
	for i, oLine := range overlayLines {
		row := startRow + i
		if row >= len(baseLines) {
			break
		}

		baseLine := baseLines[row]
		// Pad base line to at least startCol width
		for lipgloss.Width(baseLine) < startCol {
			baseLine += " "
		}

		// Build new line: left part + overlay + right part
		// Use rune-safe slicing based on visual width
		left := truncateVisual(baseLine, startCol)
		rightStart := startCol + lipgloss.Width(oLine)
		right := ""
		if lipgloss.Width(baseLine) > rightStart {
			right = skipVisual(baseLine, rightStart)
		}

		baseLines[row] = left + oLine + right
	}

	return strings.Join(baseLines, "\n")
}

// truncateVisual returns the first n visual columns of a string.
func truncateVisual(s string, n int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > n {
			return s[:i] + strings.Repeat(" ", n-w)
		}
		w += rw
	}
	// String is shorter than n — pad with spaces
	return s + strings.Repeat(" ", n-w)
}

// skipVisual returns everything after the first n visual columns.
func skipVisual(s string, n int) string {
	w := 0
	for i, r := range s {
		if w >= n {
			return s[i:]
		}
		w += runewidth.RuneWidth(r)
	}
	return ""
}

// max returns the larger of two integers.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
