package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestUserInputPromptsAndReads(t *testing.T) {
	var out bytes.Buffer
	tool := &UserInputTool{In: strings.NewReader("ceramic mug\n"), Out: &out}

	got, err := tool.Run(context.Background(), json.RawMessage(`{"prompt_message":"What is the product?"}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "ceramic mug" {
		t.Fatalf("answer = %q", got)
	}
	if !strings.Contains(out.String(), "What is the product?") || !strings.Contains(out.String(), "> ") {
		t.Fatalf("prompt output = %q", out.String())
	}
}

func TestUserInputLastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	tool := &UserInputTool{In: strings.NewReader("blue"), Out: &out}

	got, err := tool.Run(context.Background(), json.RawMessage(`{"prompt_message":"Color?"}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "blue" {
		t.Fatalf("answer = %q", got)
	}
}
