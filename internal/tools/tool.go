// Package tools defines the function-calling surface exposed to crew agents:
// file reading, terminal input, web search, page scraping, and image
// generation.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"visualdna/internal/llm"
)

// Tool is one callable function an agent may invoke during a task.
type Tool interface {
	// Name is the function name the model calls.
	Name() string
	// Description tells the model when to use the tool.
	Description() string
	// Parameters is the JSON schema of the arguments object.
	Parameters() json.RawMessage
	// Run executes the tool. Returned text goes back to the model verbatim.
	Run(ctx context.Context, args json.RawMessage) (string, error)
}

// Defs converts tools into the wire declarations the chat API expects.
func Defs(available []Tool) []llm.ToolDef {
	if len(available) == 0 {
		return nil
	}
	defs := make([]llm.ToolDef, 0, len(available))
	for _, t := range available {
		defs = append(defs, llm.ToolDef{
			Type: "function",
			Function: llm.FunctionDef{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Find locates a tool by name.
func Find(available []Tool, name string) (Tool, bool) {
	for _, t := range available {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// StringList tolerates the argument encodings models actually produce for
// list parameters: a JSON array, a JSON-encoded array inside a string, or a
// single bare string.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*s = direct
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("tools: list argument is neither array nor string: %s", data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		*s = nil
		return nil
	}
	if strings.HasPrefix(text, "[") {
		var nested []string
		if err := json.Unmarshal([]byte(text), &nested); err != nil {
			return fmt.Errorf("tools: decode embedded list: %w", err)
		}
		*s = nested
		return nil
	}
	*s = []string{text}
	return nil
}
