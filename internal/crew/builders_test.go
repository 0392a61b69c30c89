package crew

import (
	"testing"

	"github.com/rs/zerolog"
)

func testToolbox() Toolbox {
	return Toolbox{
		Search:    &echoTool{name: "web_search"},
		Scrape:    &echoTool{name: "scrape_website"},
		FileRead:  &echoTool{name: "read_file"},
		UserInput: &echoTool{name: "user_input"},
		ImageDesc: &echoTool{name: "get_image_description"},
		ImageGen:  &echoTool{name: "hunyuan_image_generator"},
	}
}

func TestEmbeddedConfigsLoad(t *testing.T) {
	agents, err := loadAgentConfigs()
	if err != nil {
		t.Fatalf("load agents: %v", err)
	}
	if len(agents) != 6 {
		t.Fatalf("agents = %d, want 6", len(agents))
	}
	taskConfigs, err := loadTaskConfigs()
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(taskConfigs) != 9 {
		t.Fatalf("tasks = %d, want 9", len(taskConfigs))
	}
	for name, cfg := range taskConfigs {
		if cfg.Agent == "" {
			t.Fatalf("task %s has no agent", name)
		}
		if _, ok := agents[cfg.Agent]; !ok {
			t.Fatalf("task %s references unknown agent %s", name, cfg.Agent)
		}
	}
}

func TestBuilderAssemblesCrews(t *testing.T) {
	b, err := NewBuilder(&scriptedLLM{}, testToolbox(), zerolog.Nop(), t.TempDir())
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}

	research, err := b.ProductResearchCrew()
	if err != nil {
		t.Fatalf("research crew: %v", err)
	}
	if len(research.Tasks) != 2 {
		t.Fatalf("research tasks = %d, want 2", len(research.Tasks))
	}
	if research.Tasks[1].OutputFile != "resource_kit_researched.md" {
		t.Fatalf("research output file = %q", research.Tasks[1].OutputFile)
	}

	full, err := b.VisualDNAToListingCrew()
	if err != nil {
		t.Fatalf("full crew: %v", err)
	}
	if len(full.Tasks) != 7 {
		t.Fatalf("full tasks = %d, want 7", len(full.Tasks))
	}
	if full.Tasks[2].OutputFile != "resource_kit_refined.md" {
		t.Fatalf("refined output file = %q", full.Tasks[2].OutputFile)
	}
	last := full.Tasks[len(full.Tasks)-1]
	if len(last.Tools) != 1 || last.Tools[0].Name() != "hunyuan_image_generator" {
		t.Fatalf("image task tools = %+v", last.Tools)
	}

	refined, err := b.RefinedKitToListingCrew()
	if err != nil {
		t.Fatalf("refined crew: %v", err)
	}
	if len(refined.Tasks) != 4 {
		t.Fatalf("refined tasks = %d, want 4", len(refined.Tasks))
	}
}
