// Package schema defines the shared JSON types exchanged between the console and the NLG backend.
package schema

// RunRequest は POST /api/run のリクエストボディ。
//
// コンソールは常に以下の形式で送信する:
//
//	{
//	  "tool_id": "language_health",
//	  "args":    ["--verbose", "--lang", "swe"]
//	}
type RunRequest struct {
	ToolID string   `json:"tool_id"`
	Args   []string `json:"args"`
}

// RunResponse は現行バックエンドの実行結果ペイロード。
// 旧世代バックエンドは output / error / return_code だけの形式で応答することがある。
// どちらの形式もコンソールは backend.Normalize で正規化してから使う。
type RunResponse struct {
	TraceID     string   `json:"trace_id"`
	Success     *bool    `json:"success"`
	Command     string   `json:"command"`
	Stdout      *string  `json:"stdout"`
	Stderr      *string  `json:"stderr"`
	StdoutChars *float64 `json:"stdout_chars"`
	StderrChars *float64 `json:"stderr_chars"`
	ExitCode    *int     `json:"exit_code"`
	DurationMS  *float64 `json:"duration_ms"`
	StartedAt   string   `json:"started_at"`
	EndedAt     string   `json:"ended_at"`
	Cwd         string   `json:"cwd"`
	RepoRoot    string   `json:"repo_root"`

	Tool         *ToolInfo      `json:"tool"`
	ArgsReceived []string       `json:"args_received"`
	ArgsAccepted []string       `json:"args_accepted"`
	ArgsRejected []ArgRejection `json:"args_rejected"`
	Truncation   *Truncation    `json:"truncation"`
	Events       []RunEvent     `json:"events"`

	// Legacy フィールド（旧世代バックエンド）。
	// stdout/output、stderr/error は正規化時に相互補完される。
	Output     *string `json:"output"`
	Error      *string `json:"error"`
	ReturnCode *int    `json:"return_code"`
}

// ToolInfo はバックエンドが申告するツールのメタ情報。
// TimeoutSec は表示専用であり、クライアント側で強制されることはない。
type ToolInfo struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	TimeoutSec  float64 `json:"timeout_sec"`
}

// ArgRejection はバックエンドが拒否した引数とその理由。
// 個別の引数が拒否されても実行全体は成功しうる。
type ArgRejection struct {
	Arg    string `json:"arg"`
	Reason string `json:"reason"`
}

// Truncation は stdout/stderr がバックエンド側で切り詰められたかを示す。
type Truncation struct {
	Stdout     bool `json:"stdout"`
	Stderr     bool `json:"stderr"`
	LimitChars int  `json:"limit_chars"`
}

// RunEvent は実行ライフサイクルの1イベント（時系列順）。
type RunEvent struct {
	TS      string         `json:"ts"`
	Level   string         `json:"level"`
	Step    string         `json:"step"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Health は GET /api/health のレスポンス。全フィールド表示専用。
type Health struct {
	Broker  string `json:"broker,omitempty"`
	Storage string `json:"storage,omitempty"`
	Engine  string `json:"engine,omitempty"`
}

// Inventory は GET /api/inventory のレスポンス。
// Groups の順序はバックエンドが管理する明示的な優先順位リストであり、
// パスが複数グループに現れた場合は先に現れたグループが有効になる。
type Inventory struct {
	Groups []PathGroup `json:"groups"`
}

// PathGroup は発見パスの1ソースグループ。
type PathGroup struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths"`
}
