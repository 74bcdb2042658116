package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/0x6d61/glotdeck/pkg/schema"
)

const (
	runPath       = "/api/run"
	healthPath    = "/api/health"
	inventoryPath = "/api/inventory"
)

// Client は NLG バックエンドへの HTTP クライアント。
// タイムアウトは意図的に設定しない: ツールごとのタイムアウトは
// バックエンドが所有し、クライアントは ctx のキャンセルだけを伝える。
type Client struct {
	baseURL string
	client  *http.Client
	token   string
}

// NewClient は baseURL に対する Client を返す。token は空でもよい。
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		token:   token,
	}
}

// BaseURL は設定済みのバックエンド URL を返す（ステータスバー表示用）。
func (c *Client) BaseURL() string { return c.baseURL }

// Run は {tool_id, args} を POST し、ボディ全文をまずテキストとして読み、
// そのうえで構造化パースを試みる。
//
// 戻り値:
//   - raw:    レスポンスボディ全文（非 JSON・部分 JSON でもそのまま）
//   - parsed: パースに成功した場合のみ非 nil
//   - meta:   HTTP ステータス（レスポンスが届いた場合のみ非 nil）
//   - err:    トランスポート失敗のみ（リクエスト生成・送信・ボディ読み取り）
//
// 呼び出し元はどの戻り値の組でも必ず Normalize を通すこと。
func (c *Client) Run(ctx context.Context, req schema.RunRequest) (raw string, parsed *schema.RunResponse, meta *HTTPMeta, err error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return "", nil, nil, fmt.Errorf("backend: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+runPath, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", nil, nil, fmt.Errorf("backend: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", nil, nil, fmt.Errorf("backend: send request: %w", err)
	}
	defer resp.Body.Close()

	meta = &HTTPMeta{StatusCode: resp.StatusCode, Status: resp.Status}
	// net/http の resp.Status は "500 Internal Server Error" 形式

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, meta, fmt.Errorf("backend: read response: %w", err)
	}
	raw = string(respBytes)

	var rr schema.RunResponse
	if jsonErr := json.Unmarshal(respBytes, &rr); jsonErr == nil {
		parsed = &rr
	}
	return raw, parsed, meta, nil
}

// Health はバックエンドのヘルス状態を取得する。表示専用。
func (c *Client) Health(ctx context.Context) (*schema.Health, error) {
	var h schema.Health
	if err := c.getJSON(ctx, healthPath, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Inventory は発見パスのグループ一覧を取得する。
// グループ順はバックエンドが管理する明示的な優先順位リスト。
func (c *Client) Inventory(ctx context.Context) (*schema.Inventory, error) {
	var inv schema.Inventory
	if err := c.getJSON(ctx, inventoryPath, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("backend: create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend: send request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("backend: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend: %s returned %s: %s", path, resp.Status, string(respBytes))
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("backend: parse %s response: %w", path, err)
	}
	return nil
}
