package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// UserInputTool lets an agent ask the operator a question on the terminal.
type UserInputTool struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (t *UserInputTool) Name() string { return "user_input" }

func (t *UserInputTool) Description() string {
	return "Prompt the human operator for input on the terminal. Display a " +
		"message and wait for their typed response. Useful for collecting " +
		"product information, file paths, or confirmations."
}

func (t *UserInputTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"prompt_message": {"type": "string", "description": "The message shown to the user."}
		},
		"required": ["prompt_message"]
	}`)
}

type userInputArgs struct {
	PromptMessage string `json:"prompt_message"`
}

func (t *UserInputTool) Run(_ context.Context, raw json.RawMessage) (string, error) {
	var args userInputArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("user_input: decode arguments: %w", err)
	}
	fmt.Fprintf(t.Out, "\n%s\n> ", args.PromptMessage)
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("user_input: read: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var _ Tool = (*UserInputTool)(nil)
