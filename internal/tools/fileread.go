package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FileReadTool reads text files for agents, optionally windowed by line.
type FileReadTool struct {
	// DefaultPath is used when the model omits file_path.
	DefaultPath string
}

func (t *FileReadTool) Name() string { return "read_file" }

func (t *FileReadTool) Description() string {
	desc := "Read the content of a text file. Provide 'file_path'; optionally " +
		"'start_line' (1-indexed) and 'line_count' to read a window."
	if t.DefaultPath != "" {
		desc += fmt.Sprintf(" Defaults to %s when file_path is omitted.", t.DefaultPath)
	}
	return desc
}

func (t *FileReadTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"file_path": {"type": "string", "description": "Full path of the file to read."},
			"start_line": {"type": "integer", "description": "Line to start from, 1-indexed."},
			"line_count": {"type": "integer", "description": "Number of lines to read; omit for the whole file."}
		}
	}`)
}

type fileReadArgs struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	LineCount int    `json:"line_count"`
}

func (t *FileReadTool) Run(_ context.Context, raw json.RawMessage) (string, error) {
	var args fileReadArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return "", fmt.Errorf("read_file: decode arguments: %w", err)
		}
	}
	path := strings.TrimSpace(args.FilePath)
	if path == "" {
		path = t.DefaultPath
	}
	if path == "" {
		return "", fmt.Errorf("read_file: no file path provided")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read_file: %w", err)
	}
	defer f.Close()

	start := args.StartLine
	if start < 1 {
		start = 1
	}
	if start == 1 && args.LineCount <= 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read_file: %w", err)
		}
		return string(data), nil
	}

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	taken := 0
	for scanner.Scan() {
		line++
		if line < start {
			continue
		}
		if args.LineCount > 0 && taken >= args.LineCount {
			break
		}
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
		taken++
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read_file: scan: %w", err)
	}
	if taken == 0 && start > 1 {
		return "", fmt.Errorf("read_file: start line %d exceeds the file's %d lines", start, line)
	}
	return b.String(), nil
}

var _ Tool = (*FileReadTool)(nil)
