package crew

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"visualdna/internal/llm"
	"visualdna/internal/tools"
)

// scriptedLLM replays canned assistant messages and records what it saw.
type scriptedLLM struct {
	replies  []llm.Message
	calls    int
	lastSeen []llm.Message
	lastDefs []llm.ToolDef
}

func (s *scriptedLLM) Chat(_ context.Context, messages []llm.Message, defs []llm.ToolDef) (*llm.Message, error) {
	s.lastSeen = messages
	s.lastDefs = defs
	if s.calls >= len(s.replies) {
		reply := llm.Message{Role: "assistant", Content: "done"}
		s.calls++
		return &reply, nil
	}
	reply := s.replies[s.calls]
	s.calls++
	return &reply, nil
}

// echoTool records its arguments and returns a fixed result.
type echoTool struct {
	name   string
	gotRaw json.RawMessage
	result string
	err    error
}

func (t *echoTool) Name() string                 { return t.name }
func (t *echoTool) Description() string          { return "echo" }
func (t *echoTool) Parameters() json.RawMessage  { return json.RawMessage(`{"type":"object"}`) }
func (t *echoTool) Run(_ context.Context, raw json.RawMessage) (string, error) {
	t.gotRaw = raw
	return t.result, t.err
}

func newTestCrew(client *scriptedLLM, task *Task) *Crew {
	return &Crew{
		Name:   "test",
		Tasks:  []*Task{task},
		LLM:    client,
		Logger: zerolog.Nop(),
	}
}

func TestKickoffPlainAnswer(t *testing.T) {
	client := &scriptedLLM{replies: []llm.Message{
		{Role: "assistant", Content: "  the report  "},
	}}
	agent := &Agent{Name: "analyst", Role: "Analyst", Goal: "Analyze"}
	crew := newTestCrew(client, &Task{Name: "analysis_task", Description: "Analyze {topic}.", Agent: agent})

	got, err := crew.Kickoff(context.Background(), map[string]string{"topic": "mugs"})
	if err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	if got != "the report" {
		t.Fatalf("output = %q", got)
	}
	if client.calls != 1 {
		t.Fatalf("llm calls = %d, want 1", client.calls)
	}
	user := client.lastSeen[1]
	if !strings.Contains(user.Content, "Analyze mugs.") {
		t.Fatalf("placeholder not interpolated: %q", user.Content)
	}
	if client.lastSeen[0].Role != "system" || !strings.Contains(client.lastSeen[0].Content, "You are Analyst") {
		t.Fatalf("system prompt = %q", client.lastSeen[0].Content)
	}
}

func TestKickoffRunsToolCalls(t *testing.T) {
	tool := &echoTool{name: "lookup", result: "42 results"}
	client := &scriptedLLM{replies: []llm.Message{
		{Role: "assistant", ToolCalls: []llm.ToolCall{{
			ID:   "call_1",
			Type: "function",
			Function: llm.FunctionCall{Name: "lookup", Arguments: `{"q":"mugs"}`},
		}}},
		{Role: "assistant", Content: "found 42"},
	}}
	agent := &Agent{Name: "researcher", Role: "Researcher", Goal: "Research", Tools: []tools.Tool{tool}}
	crew := newTestCrew(client, &Task{Name: "research_task", Description: "Find mugs.", Agent: agent})

	got, err := crew.Kickoff(context.Background(), nil)
	if err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	if got != "found 42" {
		t.Fatalf("output = %q", got)
	}
	if string(tool.gotRaw) != `{"q":"mugs"}` {
		t.Fatalf("tool args = %s", tool.gotRaw)
	}
	// Second call must carry the assistant tool-call turn and the tool result.
	var sawToolResult bool
	for _, m := range client.lastSeen {
		if m.Role == "tool" && m.ToolCallID == "call_1" && m.Content == "42 results" {
			sawToolResult = true
		}
	}
	if !sawToolResult {
		t.Fatalf("tool result not fed back: %+v", client.lastSeen)
	}
	if len(client.lastDefs) != 1 || client.lastDefs[0].Function.Name != "lookup" {
		t.Fatalf("tool defs = %+v", client.lastDefs)
	}
}

func TestKickoffUnknownToolReportedToModel(t *testing.T) {
	client := &scriptedLLM{replies: []llm.Message{
		{Role: "assistant", ToolCalls: []llm.ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: llm.FunctionCall{Name: "nope", Arguments: `{}`},
		}}},
		{Role: "assistant", Content: "recovered"},
	}}
	agent := &Agent{Name: "a", Role: "A", Goal: "G"}
	crew := newTestCrew(client, &Task{Name: "t", Description: "d", Agent: agent})

	got, err := crew.Kickoff(context.Background(), nil)
	if err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("output = %q", got)
	}
	var sawError bool
	for _, m := range client.lastSeen {
		if m.Role == "tool" && strings.Contains(m.Content, "unknown tool") {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("unknown-tool error not surfaced to the model")
	}
}

func TestKickoffBoundsToolIterations(t *testing.T) {
	tool := &echoTool{name: "loop", result: "again"}
	call := llm.Message{Role: "assistant", ToolCalls: []llm.ToolCall{{
		ID: "c", Type: "function", Function: llm.FunctionCall{Name: "loop", Arguments: `{}`},
	}}}
	client := &scriptedLLM{replies: []llm.Message{call, call, call}}
	agent := &Agent{Name: "a", Role: "A", Goal: "G", Tools: []tools.Tool{tool}}
	crew := newTestCrew(client, &Task{Name: "t", Description: "d", Agent: agent})
	crew.MaxToolIterations = 3

	if _, err := crew.Kickoff(context.Background(), nil); err == nil {
		t.Fatalf("expected iteration-bound error")
	}
	if client.calls != 3 {
		t.Fatalf("llm calls = %d, want 3", client.calls)
	}
}

func TestKickoffWritesOutputFileAndChainsContext(t *testing.T) {
	dir := t.TempDir()
	client := &scriptedLLM{replies: []llm.Message{
		{Role: "assistant", Content: "first output"},
		{Role: "assistant", Content: "second output"},
	}}
	agent := &Agent{Name: "a", Role: "A", Goal: "G"}
	crew := &Crew{
		Name: "test",
		Tasks: []*Task{
			{Name: "one", Description: "d1", Agent: agent, OutputFile: "kit.md"},
			{Name: "two", Description: "d2", Agent: agent},
		},
		LLM:       client,
		Logger:    zerolog.Nop(),
		OutputDir: dir,
	}

	got, err := crew.Kickoff(context.Background(), nil)
	if err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	if got != "second output" {
		t.Fatalf("final output = %q", got)
	}
	data, err := os.ReadFile(filepath.Join(dir, "kit.md"))
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if string(data) != "first output\n" {
		t.Fatalf("file content = %q", data)
	}
	user := client.lastSeen[1]
	if !strings.Contains(user.Content, "Context From Previous Tasks") || !strings.Contains(user.Content, "first output") {
		t.Fatalf("context not chained: %q", user.Content)
	}
}

func TestInterpolateAndDisplayName(t *testing.T) {
	got := Interpolate("make {n} of {thing}", map[string]string{"n": "3", "thing": "mugs"})
	if got != "make 3 of mugs" {
		t.Fatalf("interpolate = %q", got)
	}
	if Interpolate("keep {unknown}", nil) != "keep {unknown}" {
		t.Fatalf("unknown placeholder must be preserved")
	}
	if DisplayName("market_intelligence_task") != "Market Intelligence Task" {
		t.Fatalf("display name = %q", DisplayName("market_intelligence_task"))
	}
}
