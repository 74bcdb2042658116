package runner

import "time"

// BlockType identifies the kind of console block.
type BlockType int

const (
	BlockBanner    BlockType = iota // run start banner
	BlockMeta                       // response metadata (trace id, duration, exit code)
	BlockLifecycle                  // backend lifecycle events
	BlockWarning                    // rejected-arg warnings
	BlockStdout                     // stdout (collapsible)
	BlockTree                       // extracted structure tree
	BlockStderr                     // stderr (shown even on success)
	BlockResult                     // final banner: success / failure / abort
	BlockSystem                     // system messages
)

// ResultKind は最終バナーの種別。成功・失敗・中断は相互排他。
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultSuccess
	ResultFailure
	ResultAborted
)

// ConsoleBlock is a grouped rendering unit for the console viewport.
// Each block type uses a subset of fields.
type ConsoleBlock struct {
	Type      BlockType
	CreatedAt time.Time

	// 単一行ブロック（banner / meta / result / system）
	Text string

	// 複数行ブロック（lifecycle / warning / stdout / stderr / tree）
	Lines  []string
	Folded bool

	// BlockResult
	Result ResultKind

	// BlockStdout
	TruncationMarker string // 空でなければ末尾に表示

	// Render cache fields (TUI performance optimization)
	RenderedCache string
	CacheWidth    int
	CacheFolded   bool
}

// NewBannerBlock は実行開始バナーを作成する。
func NewBannerBlock(text string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockBanner, CreatedAt: time.Now(), Text: text}
}

// NewMetaBlock はレスポンスメタデータブロックを作成する。
func NewMetaBlock(text string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockMeta, CreatedAt: time.Now(), Text: text}
}

// NewLifecycleBlock はバックエンドのライフサイクルイベントブロックを作成する。
func NewLifecycleBlock(lines []string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockLifecycle, CreatedAt: time.Now(), Lines: lines}
}

// NewWarningBlock は拒否引数などの警告ブロックを作成する。
func NewWarningBlock(lines []string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockWarning, CreatedAt: time.Now(), Lines: lines}
}

// NewStdoutBlock は stdout ブロックを作成する。marker は切り詰めマーカー（任意）。
func NewStdoutBlock(lines []string, marker string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockStdout, CreatedAt: time.Now(), Lines: lines, TruncationMarker: marker}
}

// NewTreeBlock は抽出済み構造ツリーのブロックを作成する。
func NewTreeBlock(lines []string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockTree, CreatedAt: time.Now(), Lines: lines}
}

// NewStderrBlock は stderr ブロックを作成する。
func NewStderrBlock(lines []string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockStderr, CreatedAt: time.Now(), Lines: lines}
}

// NewResultBlock は最終バナーを作成する。
func NewResultBlock(kind ResultKind, text string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockResult, CreatedAt: time.Now(), Result: kind, Text: text}
}

// NewSystemBlock はシステムメッセージブロックを作成する。
func NewSystemBlock(text string) *ConsoleBlock {
	return &ConsoleBlock{Type: BlockSystem, CreatedAt: time.Now(), Text: text}
}
