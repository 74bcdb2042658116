package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0x6d61/glotdeck/internal/backend"
	"github.com/0x6d61/glotdeck/pkg/schema"
)

func TestClient_RunSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/run" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req schema.RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}
		if req.ToolID != "language_health" || len(req.Args) != 2 {
			t.Errorf("request payload: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"trace_id": "tr-1", "success": true, "stdout": "ok"}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, "")
	raw, parsed, meta, err := c.Run(context.Background(), schema.RunRequest{
		ToolID: "language_health",
		Args:   []string{"--lang", "swe"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if parsed == nil || parsed.TraceID != "tr-1" {
		t.Errorf("parsed: %+v", parsed)
	}
	if meta == nil || meta.StatusCode != 200 {
		t.Errorf("meta: %+v", meta)
	}
	if raw == "" {
		t.Error("raw body should always be returned")
	}
}

func TestClient_RunNonJSONBodyIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("panic: something broke"))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, "")
	raw, parsed, meta, err := c.Run(context.Background(), schema.RunRequest{ToolID: "t"})
	// レスポンスが届いた以上トランスポートエラーではない
	if err != nil {
		t.Fatalf("Run should not fail on non-JSON body: %v", err)
	}
	if parsed != nil {
		t.Errorf("parsed should be nil for non-JSON, got %+v", parsed)
	}
	if raw != "panic: something broke" {
		t.Errorf("raw: %q", raw)
	}
	if meta.StatusCode != 500 {
		t.Errorf("meta: %+v", meta)
	}

	// Normalize に渡すと失敗レコードになる
	res := backend.Normalize("t", raw, parsed, meta)
	if res.Success || res.ExitCode != -1 || res.Stderr != raw {
		t.Errorf("normalized failure: %+v", res)
	}
}

func TestClient_RunTransportError(t *testing.T) {
	c := backend.NewClient("http://127.0.0.1:1", "")
	_, _, _, err := c.Run(context.Background(), schema.RunRequest{ToolID: "t"})
	if err == nil {
		t.Fatal("expected transport error for unreachable backend")
	}
}

func TestClient_RunSendsBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"trace_id": "tr", "success": true}`))
	}))
	defer srv.Close()

	c := backend.NewClient(srv.URL, "sekrit")
	if _, _, _, err := c.Run(context.Background(), schema.RunRequest{ToolID: "t"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "Bearer sekrit" {
		t.Errorf("Authorization: got %q", got)
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"broker": "ok", "storage": "ok", "engine": "degraded"}`))
	}))
	defer srv.Close()

	h, err := backend.NewClient(srv.URL, "").Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if h.Engine != "degraded" || h.Broker != "ok" {
		t.Errorf("health: %+v", h)
	}
}

func TestClient_InventoryPreservesGroupOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/inventory" {
			t.Errorf("path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"groups": [
			{"name": "core", "paths": ["pipeline.py"]},
			{"name": "tools", "paths": ["tools/language_health.py"]},
			{"name": "legacy", "paths": ["legacy/old_gen.py"]}
		]}`))
	}))
	defer srv.Close()

	inv, err := backend.NewClient(srv.URL, "").Inventory(context.Background())
	if err != nil {
		t.Fatalf("Inventory: %v", err)
	}
	want := []string{"core", "tools", "legacy"}
	if len(inv.Groups) != len(want) {
		t.Fatalf("groups: %+v", inv.Groups)
	}
	for i, g := range inv.Groups {
		if g.Name != want[i] {
			t.Errorf("group[%d]: got %q, want %q", i, g.Name, want[i])
		}
	}
}

func TestClient_InventoryNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := backend.NewClient(srv.URL, "").Inventory(context.Background()); err == nil {
		t.Fatal("expected error for non-200 inventory response")
	}
}
