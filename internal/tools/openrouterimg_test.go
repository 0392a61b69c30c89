package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"visualdna/internal/storage"
)

type fakeImageChat struct {
	prompt string
	refs   []string
	urls   []string
	err    error
}

func (f *fakeImageChat) GenerateImages(_ context.Context, prompt string, references []string) ([]string, error) {
	f.prompt = prompt
	f.refs = references
	return f.urls, f.err
}

func TestOpenRouterToolReturnsURLs(t *testing.T) {
	gen := &fakeImageChat{urls: []string{"https://img.example/out.png"}}
	tool := &OpenRouterImageTool{Generator: gen}
	got, err := tool.Run(context.Background(), json.RawMessage(`{"prompt":"banner","reference_images":["a.jpg"]}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "https://img.example/out.png" {
		t.Fatalf("output = %q", got)
	}
	if gen.prompt != "banner" || len(gen.refs) != 1 {
		t.Fatalf("generator saw prompt=%q refs=%v", gen.prompt, gen.refs)
	}
}

func TestOpenRouterToolDecodesDataURL(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	gen := &fakeImageChat{urls: []string{dataURL}}
	tool := &OpenRouterImageTool{Generator: gen, Store: store}

	got, err := tool.Run(context.Background(), json.RawMessage(`{"prompt":"x","saved_images":["out.jpg"]}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(store.BasePath(), "out.jpg"))
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("decoded bytes = %x", data)
	}
	_ = got
}

func TestDecodeDataURLRejectsRemote(t *testing.T) {
	if _, err := decodeDataURL("https://img.example/x.png"); err == nil {
		t.Fatalf("expected error for non-data url")
	}
	if _, err := decodeDataURL("data:image/png,plain"); err == nil {
		t.Fatalf("expected error for non-base64 data url")
	}
}
