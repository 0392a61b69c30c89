// Package crew runs sequential agent pipelines: each task is an LLM
// conversation with tool calling, and each task's answer feeds the next
// task's context.
package crew

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"visualdna/internal/infra"
	"visualdna/internal/llm"
	"visualdna/internal/tools"
)

// chatClient is the slice of the LLM client the runner needs.
type chatClient interface {
	Chat(ctx context.Context, messages []llm.Message, toolDefs []llm.ToolDef) (*llm.Message, error)
}

// Agent is one role in the pipeline.
type Agent struct {
	Name      string
	Role      string
	Goal      string
	Backstory string
	// Tools the agent may call on any of its tasks.
	Tools []tools.Tool
}

// Task is one unit of work assigned to an agent.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	// OutputFile, when set, receives the task's final answer.
	OutputFile string
	Agent      *Agent
	// Tools extend the agent's tools for this task only.
	Tools []tools.Tool
}

// Crew executes its tasks in order.
type Crew struct {
	Name   string
	Tasks  []*Task
	LLM    chatClient
	Logger infra.Logger
	// MaxToolIterations bounds the tool-calling loop per task. Default 25.
	MaxToolIterations int
	// OutputDir prefixes relative OutputFile paths.
	OutputDir string
}

var titleCaser = cases.Title(language.Und)

// DisplayName renders a snake_case identifier as a human heading.
func DisplayName(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// Interpolate substitutes {placeholder} occurrences from inputs. Unknown
// placeholders are left untouched.
func Interpolate(text string, inputs map[string]string) string {
	if len(inputs) == 0 {
		return text
	}
	pairs := make([]string, 0, len(inputs)*2)
	for k, v := range inputs {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Kickoff runs every task in order and returns the final task's answer.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (string, error) {
	if len(c.Tasks) == 0 {
		return "", errors.New("crew: no tasks configured")
	}
	if c.LLM == nil {
		return "", errors.New("crew: no llm client configured")
	}

	var previous []string
	var final string
	for _, task := range c.Tasks {
		if task.Agent == nil {
			return "", fmt.Errorf("crew: task %s has no agent", task.Name)
		}
		c.Logger.Info().
			Str("crew", c.Name).
			Str("task", task.Name).
			Str("agent", task.Agent.Name).
			Msg("task started")

		output, err := c.runTask(ctx, task, inputs, previous)
		if err != nil {
			return "", fmt.Errorf("crew: task %s: %w", task.Name, err)
		}
		if task.OutputFile != "" {
			if err := c.writeOutput(task.OutputFile, output); err != nil {
				return "", fmt.Errorf("crew: task %s: %w", task.Name, err)
			}
		}
		c.Logger.Info().
			Str("crew", c.Name).
			Str("task", task.Name).
			Int("output_bytes", len(output)).
			Msg("task finished")
		previous = append(previous, output)
		final = output
	}
	return final, nil
}

func (c *Crew) runTask(ctx context.Context, task *Task, inputs map[string]string, previous []string) (string, error) {
	available := append(append([]tools.Tool{}, task.Agent.Tools...), task.Tools...)
	defs := tools.Defs(available)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt(task.Agent)},
		{Role: "user", Content: taskPrompt(task, inputs, previous)},
	}

	maxIterations := c.MaxToolIterations
	if maxIterations <= 0 {
		maxIterations = 25
	}
	for i := 0; i < maxIterations; i++ {
		reply, err := c.LLM.Chat(ctx, messages, defs)
		if err != nil {
			return "", err
		}
		if len(reply.ToolCalls) == 0 {
			return strings.TrimSpace(reply.Content), nil
		}
		messages = append(messages, *reply)
		for _, call := range reply.ToolCalls {
			messages = append(messages, c.runToolCall(ctx, available, call))
		}
	}
	return "", fmt.Errorf("no final answer after %d tool iterations", maxIterations)
}

// runToolCall executes one tool call; failures are reported back to the
// model as the tool result so it can recover or rephrase.
func (c *Crew) runToolCall(ctx context.Context, available []tools.Tool, call llm.ToolCall) llm.Message {
	result := func(content string) llm.Message {
		return llm.Message{
			Role:       "tool",
			Content:    content,
			Name:       call.Function.Name,
			ToolCallID: call.ID,
		}
	}
	tool, ok := tools.Find(available, call.Function.Name)
	if !ok {
		return result(fmt.Sprintf("Error: unknown tool %q", call.Function.Name))
	}
	args := json.RawMessage(call.Function.Arguments)
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	c.Logger.Debug().
		Str("tool", call.Function.Name).
		RawJSON("args", args).
		Msg("tool call")
	output, err := tool.Run(ctx, args)
	if err != nil {
		c.Logger.Warn().Err(err).Str("tool", call.Function.Name).Msg("tool failed")
		return result("Error: " + err.Error())
	}
	return result(output)
}

func systemPrompt(a *Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", strings.TrimSpace(a.Role))
	fmt.Fprintf(&b, "\n## Goal\n%s\n", strings.TrimSpace(a.Goal))
	if a.Backstory != "" {
		fmt.Fprintf(&b, "\n## Backstory\n%s\n", strings.TrimSpace(a.Backstory))
	}
	b.WriteString("\nUse the available tools when they help. When you are done, reply with the final result only, without commentary about the process.\n")
	return b.String()
}

func taskPrompt(task *Task, inputs map[string]string, previous []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Task: %s\n%s\n", DisplayName(task.Name), Interpolate(strings.TrimSpace(task.Description), inputs))
	if task.ExpectedOutput != "" {
		fmt.Fprintf(&b, "\n## Expected Output\n%s\n", Interpolate(strings.TrimSpace(task.ExpectedOutput), inputs))
	}
	if len(previous) > 0 {
		b.WriteString("\n## Context From Previous Tasks\n")
		for _, out := range previous {
			b.WriteString(out)
			b.WriteString("\n\n---\n\n")
		}
	}
	return b.String()
}

func (c *Crew) writeOutput(path, content string) error {
	if c.OutputDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(c.OutputDir, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
