package crew

import (
	"fmt"

	"visualdna/internal/infra"
	"visualdna/internal/tools"
)

// Toolbox carries the shared tool instances the crews draw from.
type Toolbox struct {
	Search    tools.Tool
	Scrape    tools.Tool
	FileRead  tools.Tool
	UserInput tools.Tool
	ImageDesc tools.Tool
	ImageGen  tools.Tool
}

// Builder assembles the three pipeline crews from the embedded definitions.
type Builder struct {
	LLM       chatClient
	Tools     Toolbox
	Logger    infra.Logger
	OutputDir string

	agents map[string]AgentConfig
	tasks  map[string]TaskConfig
}

// NewBuilder loads the embedded agent and task definitions.
func NewBuilder(llmClient chatClient, toolbox Toolbox, logger infra.Logger, outputDir string) (*Builder, error) {
	agents, err := loadAgentConfigs()
	if err != nil {
		return nil, err
	}
	taskConfigs, err := loadTaskConfigs()
	if err != nil {
		return nil, err
	}
	return &Builder{
		LLM:       llmClient,
		Tools:     toolbox,
		Logger:    logger,
		OutputDir: outputDir,
		agents:    agents,
		tasks:     taskConfigs,
	}, nil
}

func (b *Builder) agent(name string, agentTools ...tools.Tool) (*Agent, error) {
	cfg, ok := b.agents[name]
	if !ok {
		return nil, fmt.Errorf("crew: agent %s is not defined", name)
	}
	var wired []tools.Tool
	for _, t := range agentTools {
		if t != nil {
			wired = append(wired, t)
		}
	}
	return &Agent{
		Name:      name,
		Role:      cfg.Role,
		Goal:      cfg.Goal,
		Backstory: cfg.Backstory,
		Tools:     wired,
	}, nil
}

func (b *Builder) task(name string, agent *Agent, taskTools ...tools.Tool) (*Task, error) {
	cfg, ok := b.tasks[name]
	if !ok {
		return nil, fmt.Errorf("crew: task %s is not defined", name)
	}
	if cfg.Agent != "" && cfg.Agent != agent.Name {
		return nil, fmt.Errorf("crew: task %s is defined for agent %s, wired to %s", name, cfg.Agent, agent.Name)
	}
	var wired []tools.Tool
	for _, t := range taskTools {
		if t != nil {
			wired = append(wired, t)
		}
	}
	return &Task{
		Name:           name,
		Description:    cfg.Description,
		ExpectedOutput: cfg.ExpectedOutput,
		OutputFile:     cfg.OutputFile,
		Agent:          agent,
		Tools:          wired,
	}, nil
}

func (b *Builder) crew(name string, taskList ...*Task) *Crew {
	return &Crew{
		Name:      name,
		Tasks:     taskList,
		LLM:       b.LLM,
		Logger:    b.Logger,
		OutputDir: b.OutputDir,
	}
}

// ProductResearchCrew researches the market and writes the initial resource
// kit (resource_kit_researched.md).
func (b *Builder) ProductResearchCrew() (*Crew, error) {
	researcher, err := b.agent("product_research_specialist", b.Tools.Search, b.Tools.Scrape, b.Tools.UserInput)
	if err != nil {
		return nil, err
	}
	planner, err := b.agent("strategic_visual_planner", b.Tools.FileRead)
	if err != nil {
		return nil, err
	}
	research, err := b.task("market_intelligence_task", researcher)
	if err != nil {
		return nil, err
	}
	kit, err := b.task("resource_kit_generation_task", planner)
	if err != nil {
		return nil, err
	}
	return b.crew("product_research", research, kit), nil
}

// VisualDNAToListingCrew runs the full path from product intake through
// generated listing images.
func (b *Builder) VisualDNAToListingCrew() (*Crew, error) {
	collector, err := b.agent("product_info_collector", b.Tools.ImageDesc)
	if err != nil {
		return nil, err
	}
	architect, err := b.agent("visual_dna_architect")
	if err != nil {
		return nil, err
	}
	engineer, err := b.agent("creative_prompt_engineer")
	if err != nil {
		return nil, err
	}
	producer, err := b.agent("image_production_specialist")
	if err != nil {
		return nil, err
	}

	collect, err := b.task("collect_product_info_task", collector, b.Tools.FileRead, b.Tools.UserInput)
	if err != nil {
		return nil, err
	}
	describe, err := b.task("reference_photo_description_task", collector)
	if err != nil {
		return nil, err
	}
	confirm, err := b.task("confirm_and_save_facts_task", collector, b.Tools.UserInput)
	if err != nil {
		return nil, err
	}
	dna, err := b.task("define_visual_dna_task", architect, b.Tools.FileRead)
	if err != nil {
		return nil, err
	}
	prompts, err := b.task("plan_and_write_prompts_task", engineer, b.Tools.FileRead)
	if err != nil {
		return nil, err
	}
	review, err := b.task("image_prompts_review_task", engineer, b.Tools.FileRead)
	if err != nil {
		return nil, err
	}
	generate, err := b.task("generate_listing_images_task", producer, b.Tools.ImageGen)
	if err != nil {
		return nil, err
	}
	return b.crew("visualdna_to_listing", collect, describe, confirm, dna, prompts, review, generate), nil
}

// RefinedKitToListingCrew skips intake and runs from an existing refined
// resource kit straight to generated images.
func (b *Builder) RefinedKitToListingCrew() (*Crew, error) {
	architect, err := b.agent("visual_dna_architect")
	if err != nil {
		return nil, err
	}
	engineer, err := b.agent("creative_prompt_engineer")
	if err != nil {
		return nil, err
	}
	producer, err := b.agent("image_production_specialist")
	if err != nil {
		return nil, err
	}

	dna, err := b.task("define_visual_dna_task", architect, b.Tools.FileRead)
	if err != nil {
		return nil, err
	}
	prompts, err := b.task("plan_and_write_prompts_task", engineer, b.Tools.FileRead)
	if err != nil {
		return nil, err
	}
	review, err := b.task("image_prompts_review_task", engineer, b.Tools.FileRead)
	if err != nil {
		return nil, err
	}
	generate, err := b.task("generate_listing_images_task", producer, b.Tools.ImageGen)
	if err != nil {
		return nil, err
	}
	return b.crew("refined_kit_to_listing", dna, prompts, review, generate), nil
}
