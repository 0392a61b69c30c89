package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSearchFormatsOrganicResults(t *testing.T) {
	var gotKey, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		gotQuery = body["q"]
		json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]string{
				{"title": "Ceramic mugs", "link": "https://shop.example/mugs", "snippet": "Handmade mugs."},
				{"title": "Mug trends", "link": "https://blog.example/mugs", "snippet": "2026 trends."},
			},
		})
	}))
	defer srv.Close()

	tool := &SearchTool{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := tool.Run(context.Background(), json.RawMessage(`{"query":"ceramic mugs"}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotKey != "k" || gotQuery != "ceramic mugs" {
		t.Fatalf("request key=%q query=%q", gotKey, gotQuery)
	}
	if !strings.Contains(got, "1. Ceramic mugs") || !strings.Contains(got, "https://blog.example/mugs") {
		t.Fatalf("output = %q", got)
	}
}

func TestSearchRequiresQueryAndKey(t *testing.T) {
	tool := &SearchTool{APIKey: "k"}
	if _, err := tool.Run(context.Background(), json.RawMessage(`{"query":""}`)); err == nil {
		t.Fatalf("expected error for empty query")
	}
	tool = &SearchTool{}
	if _, err := tool.Run(context.Background(), json.RawMessage(`{"query":"x"}`)); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestSearchSurfacesRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid api key"})
	}))
	defer srv.Close()

	tool := &SearchTool{APIKey: "bad", BaseURL: srv.URL, HTTPClient: srv.Client()}
	_, err := tool.Run(context.Background(), json.RawMessage(`{"query":"x"}`))
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("err = %v", err)
	}
}
