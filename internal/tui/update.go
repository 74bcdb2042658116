package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/0x6d61/glotdeck/internal/prefs"
	"github.com/0x6d61/glotdeck/internal/registry"
	"github.com/0x6d61/glotdeck/internal/runner"
)

// Update implements tea.Model and routes all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		m.ready = true
		m.rebuildConsole()
		return m, nil

	// 実行ストリームからのブロックを処理する。
	case RunBlockMsg:
		m.appendBlock(msg.Block)
		// 次のブロックを待つコマンドを再登録（Bubble Tea の非同期ループパターン）
		if m.runStream != nil {
			return m, RunBlockCmd(m.runStream)
		}
		return m, nil

	case RunDoneMsg:
		m.running = false
		m.runStream = nil
		return m, nil

	case tea.KeyMsg:
		// Quit confirmation dialog intercepts all keys when active.
		if m.inputMode == InputConfirmQuit {
			return m.handleConfirmQuitKey(msg)
		}

		// Run confirmation dialog intercepts all keys when active.
		if m.inputMode == InputConfirmRun {
			return m.handleConfirmRunKey(msg)
		}

		// Ctrl+C: show confirmation dialog instead of quitting immediately.
		if msg.String() == "ctrl+c" {
			m.inputMode = InputConfirmQuit
			return m, nil
		}

		// Global: Tab cycles focus between panes.
		if msg.String() == "tab" {
			m.cycleFocus()
			return m, nil
		}

		// Global: Ctrl+O toggles log folding (works from any pane).
		if msg.String() == "ctrl+o" {
			m.logsExpanded = !m.logsExpanded
			m.saveUIPrefs()
			m.rebuildConsole()
			return m, nil
		}

		// Global: Ctrl+D toggles debug-tool visibility.
		if msg.String() == "ctrl+d" {
			m.showDebug = !m.showDebug
			m.rebuildList()
			m.loadArgsForSelection()
			m.saveUIPrefs()
			return m, nil
		}

		// Global: Ctrl+X cancels the active run (no-op when idle).
		if msg.String() == "ctrl+x" {
			m.runner.Cancel()
			return m, nil
		}

		// Focus-specific key handling.
		switch m.focus {
		case FocusList:
			if msg.String() == "enter" {
				return m, m.startSelected(false)
			}
			m.list, cmd = m.list.Update(msg)
			m.loadArgsForSelection()
			cmds = append(cmds, cmd)

		case FocusConsole:
			m.console, cmd = m.console.Update(msg)
			cmds = append(cmds, cmd)

		case FocusInput:
			if msg.String() == "enter" {
				return m, m.startSelected(false)
			}
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleResize recomputes all component dimensions to fit the new terminal size.
func (m *Model) handleResize(w, h int) {
	m.width = w
	m.height = h

	const (
		statusBarH  = 1
		inputAreaH  = 3 // border + 1 line + border
		paneVBorder = 2 // top + bottom borders for panes
	)

	paneH := h - statusBarH - inputAreaH - paneVBorder
	if paneH < 4 {
		paneH = 4
	}
	m.list.SetSize(leftPaneOuterWidth-4, paneH)

	// Right column: detail pane (fixed) + console viewport
	rightW := w - leftPaneOuterWidth - 4
	if rightW < 10 {
		rightW = 10
	}
	consoleH := paneH - detailPaneHeight - 2
	if consoleH < 4 {
		consoleH = 4
	}

	if !m.ready {
		m.console = viewport.New(rightW, consoleH)
	} else {
		m.console.Width = rightW
		m.console.Height = consoleH
	}

	m.input.Width = w - 8
}

// cycleFocus toggles focus List → Input → Console → List.
func (m *Model) cycleFocus() {
	switch m.focus {
	case FocusList:
		m.focus = FocusInput
		m.input.Focus()
	case FocusInput:
		m.focus = FocusConsole
		m.input.Blur()
	case FocusConsole:
		m.focus = FocusList
	}
}

// saveUIPrefs は画面設定をベストエフォートで保存する。
func (m *Model) saveUIPrefs() {
	if m.prefs == nil {
		return
	}
	ui := prefs.UI{
		ShowDebugTools: m.showDebug,
		ConsoleFolded:  !m.logsExpanded,
	}
	if it := m.selectedItem(); it != nil {
		ui.LastToolKey = it.Key
	}
	m.prefs.SetUI(ui)
}

// startSelected は選択中のツールの実行を試みる。
// moderate / heavy リスクで未確認の場合は確認ダイアログに遷移する。
func (m *Model) startSelected(confirmed bool) tea.Cmd {
	it := m.selectedItem()
	if it == nil {
		return nil
	}
	return m.startRun(it, strings.TrimSpace(m.input.Value()), confirmed)
}

// startRun は Runner に実行を依頼し、結果に応じてコンソールへ通知する。
func (m *Model) startRun(it *registry.ToolItem, argsText string, confirmed bool) tea.Cmd {
	ch, err := m.runner.Start(it, argsText, confirmed)
	switch {
	case errors.Is(err, runner.ErrConfirmRequired):
		m.pending = &pendingRun{item: it, argsText: argsText}
		m.inputMode = InputConfirmRun
		return nil
	case errors.Is(err, runner.ErrBusy):
		m.appendBlock(runner.NewSystemBlock("別のツールが実行中です (Ctrl+X で中断)"))
		return nil
	case errors.Is(err, runner.ErrNotRunnable):
		m.appendBlock(runner.NewSystemBlock(fmt.Sprintf("%s はレジストリに配線されていないため実行できません", it.Title)))
		return nil
	case err != nil:
		m.appendBlock(runner.NewSystemBlock("実行を開始できませんでした: " + err.Error()))
		return nil
	}

	// 開始成功: 引数と選択ツールを保存
	if m.prefs != nil {
		m.prefs.SetArgs(it.Key, argsText)
	}
	m.saveUIPrefs()
	m.running = true
	m.runStream = ch
	return RunBlockCmd(ch)
}

// handleConfirmQuitKey processes key events in the quit confirmation dialog.
func (m Model) handleConfirmQuitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, tea.Quit
	case "n", "N", "esc":
		m.inputMode = InputNormal
		return m, nil
	}
	// Other keys: ignore, stay in confirmation dialog.
	return m, nil
}

// handleConfirmRunKey processes key events in the risk confirmation dialog.
// y だけが confirmed=true の供給元になる。
func (m Model) handleConfirmRunKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		p := m.pending
		m.pending = nil
		m.inputMode = InputNormal
		if p == nil {
			return m, nil
		}
		return m, m.startRun(p.item, p.argsText, true)
	case "n", "N", "esc":
		if p := m.pending; p != nil {
			m.appendBlock(runner.NewSystemBlock(fmt.Sprintf("%s の実行をキャンセルしました", p.item.Title)))
		}
		m.pending = nil
		m.inputMode = InputNormal
		return m, nil
	}
	return m, nil
}
