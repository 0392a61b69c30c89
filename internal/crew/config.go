package crew

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed config/agents.yaml config/tasks.yaml
var configFS embed.FS

// AgentConfig is one agent definition from agents.yaml.
type AgentConfig struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

// TaskConfig is one task definition from tasks.yaml.
type TaskConfig struct {
	Agent          string `yaml:"agent"`
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
	OutputFile     string `yaml:"output_file"`
}

func loadAgentConfigs() (map[string]AgentConfig, error) {
	raw, err := configFS.ReadFile("config/agents.yaml")
	if err != nil {
		return nil, fmt.Errorf("crew: read agents config: %w", err)
	}
	configs := make(map[string]AgentConfig)
	if err := yaml.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("crew: parse agents config: %w", err)
	}
	return configs, nil
}

func loadTaskConfigs() (map[string]TaskConfig, error) {
	raw, err := configFS.ReadFile("config/tasks.yaml")
	if err != nil {
		return nil, fmt.Errorf("crew: read tasks config: %w", err)
	}
	configs := make(map[string]TaskConfig)
	if err := yaml.Unmarshal(raw, &configs); err != nil {
		return nil, fmt.Errorf("crew: parse tasks config: %w", err)
	}
	return configs, nil
}
