package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"visualdna/internal/hunyuan"
	"visualdna/internal/storage"
)

type fakeGenerator struct {
	req    hunyuan.JobRequest
	polls  int
	result *hunyuan.ImageGenerationResult
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, req hunyuan.JobRequest, _ time.Duration, maxPolls int) (*hunyuan.ImageGenerationResult, error) {
	f.req = req
	f.polls = maxPolls
	return f.result, f.err
}

func TestHunyuanToolReturnsURLs(t *testing.T) {
	gen := &fakeGenerator{result: &hunyuan.ImageGenerationResult{
		StatusCode: hunyuan.StatusCompleted,
		ImageURLs:  []string{"https://img.example/1.png", "https://img.example/2.png"},
	}}
	tool := &HunyuanImageTool{Generator: gen}
	args, _ := json.Marshal(map[string]any{"prompt": "白底产品照"})
	got, err := tool.Run(context.Background(), args)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "https://img.example/1.png\nhttps://img.example/2.png" {
		t.Fatalf("output = %q", got)
	}
	if gen.req.Resolution != "1024:1024" {
		t.Fatalf("default resolution = %q", gen.req.Resolution)
	}
	if !gen.req.Revise {
		t.Fatalf("revise flag should be set")
	}
}

func TestHunyuanToolSavesImagesWithSidecar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("fake image bytes"))
	}))
	defer srv.Close()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	gen := &fakeGenerator{result: &hunyuan.ImageGenerationResult{
		StatusCode: hunyuan.StatusCompleted,
		ImageURLs:  []string{srv.URL + "/result.jpg"},
	}}
	tool := &HunyuanImageTool{Generator: gen, Store: store, HTTPClient: srv.Client()}

	args, _ := json.Marshal(map[string]any{
		"prompt":           "主图",
		"reference_images": []string{"ref1.jpg"},
		"saved_images":     []string{"hero.jpg"},
	})
	got, err := tool.Run(context.Background(), args)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasSuffix(got, "hero.jpg") {
		t.Fatalf("output = %q, want saved path", got)
	}

	data, err := os.ReadFile(filepath.Join(store.BasePath(), "hero.jpg"))
	if err != nil {
		t.Fatalf("read saved image: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Fatalf("saved bytes = %q", data)
	}
	sidecar, err := os.ReadFile(filepath.Join(store.BasePath(), "hero.txt"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	text := string(sidecar)
	if !strings.Contains(text, "Reference Images: ref1.jpg") || !strings.Contains(text, "Prompt: 主图") {
		t.Fatalf("sidecar = %q", text)
	}
}

func TestHunyuanToolNoImages(t *testing.T) {
	gen := &fakeGenerator{result: &hunyuan.ImageGenerationResult{StatusCode: hunyuan.StatusCompleted}}
	tool := &HunyuanImageTool{Generator: gen}
	got, err := tool.Run(context.Background(), json.RawMessage(`{"prompt":"x"}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(got, "no image URLs") {
		t.Fatalf("output = %q", got)
	}
}
