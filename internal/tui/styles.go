package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary      = lipgloss.Color("#00D7FF") // cyan  — focus / banners
	colorSecondary    = lipgloss.Color("#AF87FF") // purple — metadata
	colorSuccess      = lipgloss.Color("#87FF5F") // green — success banner / safe risk
	colorWarning      = lipgloss.Color("#FFD700") // yellow — moderate risk / warnings
	colorDanger       = lipgloss.Color("#FF5555") // red — heavy risk / failure / stderr
	colorMuted        = lipgloss.Color("#555577") // dim gray — hints / debug tools
	colorBorder       = lipgloss.Color("#333355") // default border
	colorBorderActive = lipgloss.Color("#00D7FF") // focused border
	colorTitle        = lipgloss.Color("#FFFFFF") // pane titles
)

// Pane borders
var (
	leftPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	leftPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderActive)

	rightPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	rightPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderActive)

	detailPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
)

// Input bar
var (
	inputBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	inputBarActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderActive)
)

// Status bar (top)
var statusBarStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("#0D0D1A")).
	Foreground(colorPrimary).
	Padding(0, 1)

// Confirmation dialogs (centered overlay)
var (
	confirmQuitBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(colorDanger).
				Padding(0, 2)

	confirmRunBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(colorWarning).
				Padding(0, 2)
)

// Risk badge styles
var (
	riskSafeStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	riskModerateStyle = lipgloss.NewStyle().Foreground(colorWarning)
	riskHeavyStyle    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
)

// List annotation styles
var (
	legacyTagStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	experimentalTagStyle = lipgloss.NewStyle().Foreground(colorWarning)
	unwiredTagStyle      = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	unwiredTitleStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// Console block styles
var (
	bannerStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	metaStyle      = lipgloss.NewStyle().Foreground(colorSecondary)
	lifecycleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	stdoutStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	stderrStyle    = lipgloss.NewStyle().Foreground(colorDanger)
	treeStyle      = lipgloss.NewStyle().Foreground(colorSecondary)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	failureStyle   = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	abortStyle     = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	systemStyle    = lipgloss.NewStyle().Foreground(colorMuted)
)

// foldIndicatorStyle は折りたたみ行の「⋯ +N Lines (Ctrl+O)」スタイル。
var foldIndicatorStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

// Health badge styles
var (
	healthOKStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	healthBadStyle  = lipgloss.NewStyle().Foreground(colorDanger)
	healthNoneStyle = lipgloss.NewStyle().Foreground(colorMuted)
)
