package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"webdex/internal/boundary"
	"webdex/internal/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 0}}
	engine := boundary.NewEngine(slog.Default())
	return NewServer(cfg, engine, slog.Default())
}

func postJSON(t *testing.T, s *Server, path string, body any) (int, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("unmarshal response %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestExtractEndpointReturnsValues(t *testing.T) {
	s := testServer(t)
	status, body := postJSON(t, s, "/v1/extract", map[string]any{
		"html": `<html><body><h1>Widget</h1></body></html>`,
		"specs": []map[string]any{
			{"source": "css", "selector": "h1", "alias": "heading", "return_text": true},
		},
	})

	if status != 200 {
		t.Fatalf("status = %d, body = %#v", status, body)
	}
	values, ok := body["values"].(map[string]any)
	if !ok || values["heading"] != "Widget" {
		t.Fatalf("values = %#v", body["values"])
	}
}

func TestCrawlEndpointRejectsMissingURLs(t *testing.T) {
	s := testServer(t)
	status, body := postJSON(t, s, "/v1/crawl", map[string]any{})
	if status != 400 {
		t.Fatalf("status = %d, body = %#v", status, body)
	}
}

func TestJSONLDEndpoint(t *testing.T) {
	s := testServer(t)
	status, body := postJSON(t, s, "/v1/jsonld", map[string]any{
		"html": `<html><head><script type="application/ld+json">{"@type":"Product","name":"Widget"}</script></head></html>`,
	})
	if status != 200 {
		t.Fatalf("status = %d, body = %#v", status, body)
	}
	if _, ok := body["Product"]; !ok {
		t.Fatalf("body = %#v", body)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
