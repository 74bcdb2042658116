// Package tui implements the Bubble Tea TUI for the Glotdeck console.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0x6d61/glotdeck/internal/classify"
	"github.com/0x6d61/glotdeck/internal/prefs"
	"github.com/0x6d61/glotdeck/internal/registry"
	"github.com/0x6d61/glotdeck/internal/runner"
	"github.com/0x6d61/glotdeck/pkg/schema"
)

// FocusState tracks which pane has keyboard focus.
type FocusState int

const (
	FocusList    FocusState = iota // left pane: tool list
	FocusConsole                   // right pane: console log
	FocusInput                     // bottom: args input
)

// InputMode は通常入力と確認ダイアログの状態。
type InputMode int

const (
	InputNormal InputMode = iota
	InputConfirmQuit
	InputConfirmRun // moderate / heavy リスクの実行前確認
)

// leftPaneOuterWidth is the total rendered width of the left pane (borders included).
const leftPaneOuterWidth = 40

// RunBlockMsg は実行ストリームから届くコンソールブロック。
type RunBlockMsg struct {
	Block *runner.ConsoleBlock
}

// RunDoneMsg はブロックストリームが閉じたとき（実行終了）。
type RunDoneMsg struct{}

// pendingRun は確認待ちの実行リクエスト。
type pendingRun struct {
	item     *registry.ToolItem
	argsText string
}

// Model is the root Bubble Tea model for the Glotdeck operator console.
type Model struct {
	width  int
	height int
	ready  bool

	focus     FocusState
	inputMode InputMode

	items   []registry.ToolItem // 全アイテム（表示順）
	visible []int               // items へのインデックス。デバッグ表示フィルタ適用済み
	list    list.Model
	console viewport.Model
	input   textinput.Model

	blocks       []*runner.ConsoleBlock
	logsExpanded bool

	runner  *runner.Runner
	prefs   *prefs.Store
	health  *schema.Health
	baseURL string

	showDebug bool
	pending   *pendingRun
	running   bool
	runStream <-chan *runner.ConsoleBlock

	// 引数入力の反映先。選択が変わるたびに保存してから切り替える
	argsLoadedFor string
}

// RunBlockCmd は次のコンソールブロックを待つ Bubble Tea コマンド。
// チャネルが閉じたら RunDoneMsg を返す。
func RunBlockCmd(ch <-chan *runner.ConsoleBlock) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return RunDoneMsg{}
		}
		return RunBlockMsg{Block: b}
	}
}

// toolListItem wraps registry.ToolItem to satisfy the list.Item interface.
type toolListItem struct {
	it *registry.ToolItem
}

func (i toolListItem) Title() string {
	badge := riskBadge(i.it.Risk)
	title := i.it.Title
	if !i.it.Runnable() {
		title = unwiredTitleStyle.Render(title)
	}
	return fmt.Sprintf("%s %s", badge, title)
}

func (i toolListItem) Description() string {
	desc := fmt.Sprintf("%s / %s", i.it.Category, i.it.Group)
	if i.it.Status == classify.StatusLegacy {
		desc += legacyTagStyle.Render(" [legacy]")
	}
	if i.it.Status == classify.StatusExperimental {
		desc += experimentalTagStyle.Render(" [exp]")
	}
	if !i.it.Runnable() {
		desc += unwiredTagStyle.Render(" 未配線")
	}
	return desc
}

func (i toolListItem) FilterValue() string { return i.it.Title + " " + i.it.Path }

// riskBadge はリスクレベルの色付きバッジを返す。
func riskBadge(r classify.Risk) string {
	switch r {
	case classify.RiskHeavy:
		return riskHeavyStyle.Render("●")
	case classify.RiskModerate:
		return riskModerateStyle.Render("●")
	default:
		return riskSafeStyle.Render("●")
	}
}

// New は解決済みツールアイテムで Model を初期化する。
func New(items []registry.ToolItem, run *runner.Runner, store *prefs.Store, baseURL string) Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = true
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(colorPrimary)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(colorSecondary)

	l := list.New(nil, d, leftPaneOuterWidth-4, 20)
	l.Title = "TOOLS"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(colorTitle).
		Bold(true).
		Padding(0, 1)

	ti := textinput.New()
	ti.Placeholder = "Arguments... (quotes and \\ escapes supported)"
	ti.CharLimit = 500

	m := Model{
		items:  items,
		list:   l,
		input:  ti,
		focus:  FocusList,
		runner: run,
		prefs:  store,
	}
	m.baseURL = baseURL
	if store != nil {
		ui := store.UI()
		m.showDebug = ui.ShowDebugTools
		m.logsExpanded = !ui.ConsoleFolded
	}
	m.rebuildList()
	m.restoreSelection()
	m.loadArgsForSelection()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetHealth はステータスバーに表示するヘルス状態を設定する。
func (m *Model) SetHealth(h *schema.Health) {
	m.health = h
}

// ForceShowDebug は保存された設定に関係なくデバッグツールを表示する
// （-debug-tools フラグ用）。
func (m *Model) ForceShowDebug() {
	m.showDebug = true
	m.rebuildList()
}

// selectedItem returns the currently selected tool item, or nil if none.
func (m *Model) selectedItem() *registry.ToolItem {
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}
	return &m.items[m.visible[idx]]
}

// rebuildList はデバッグ表示フィルタを適用してリストを作り直す。
func (m *Model) rebuildList() {
	m.visible = m.visible[:0]
	for i := range m.items {
		if !m.showDebug && m.items[i].HideByDefault {
			continue
		}
		m.visible = append(m.visible, i)
	}
	listItems := make([]list.Item, len(m.visible))
	for i, idx := range m.visible {
		listItems[i] = toolListItem{it: &m.items[idx]}
	}
	m.list.SetItems(listItems)
}

// restoreSelection は前回選択していたツールを復元する。
func (m *Model) restoreSelection() {
	if m.prefs == nil {
		return
	}
	last := m.prefs.UI().LastToolKey
	if last == "" {
		return
	}
	for pos, idx := range m.visible {
		if m.items[idx].Key == last {
			m.list.Select(pos)
			return
		}
	}
}

// loadArgsForSelection は選択中ツールの保存済み引数を入力欄に反映する。
func (m *Model) loadArgsForSelection() {
	it := m.selectedItem()
	if it == nil {
		m.argsLoadedFor = ""
		m.input.SetValue("")
		return
	}
	if it.Key == m.argsLoadedFor {
		return
	}
	// 切り替え前のツールの入力を保存
	if m.argsLoadedFor != "" && m.prefs != nil {
		m.prefs.SetArgs(m.argsLoadedFor, m.input.Value())
	}
	m.argsLoadedFor = it.Key
	if m.prefs != nil {
		m.input.SetValue(m.prefs.ArgsFor(it.Key))
	} else {
		m.input.SetValue("")
	}
}

// rebuildConsole regenerates the console viewport from the block history.
func (m *Model) rebuildConsole() {
	if len(m.blocks) == 0 {
		m.console.SetContent(consoleEmptyHint)
		return
	}
	m.console.SetContent(renderBlocks(m.blocks, m.console.Width, m.logsExpanded))
	m.console.GotoBottom()
}

// appendBlock はブロックを履歴に追記してコンソールを更新する。
func (m *Model) appendBlock(b *runner.ConsoleBlock) {
	m.blocks = append(m.blocks, b)
	m.rebuildConsole()
}

const consoleEmptyHint = "  ツールを選んで Enter で実行します。\n\n" +
	"  [Tab] ペイン切替  [Ctrl+D] デバッグツール表示  [Ctrl+O] ログ展開\n" +
	"  [Ctrl+X] 実行中のツールを中断"
