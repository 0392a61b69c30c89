package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"visualdna/internal/crew"
	"visualdna/internal/hunyuan"
	"visualdna/internal/infra"
	"visualdna/internal/llm"
	"visualdna/internal/openrouter"
	"visualdna/internal/runlog"
	"visualdna/internal/storage"
	"visualdna/internal/tools"
	"visualdna/internal/uploader"
	"visualdna/pkg/zip"
)

func main() {
	_ = godotenv.Load()

	runResearch := flag.Bool("r", false, "run the product research crew")
	runFull := flag.Bool("g", false, "run the visualdna-to-listing crew")
	runRefined := flag.Bool("f", false, "run the refined-resource-kit-to-listing crew")
	references := flag.String("images", "", "comma-separated reference image paths or URLs")
	product := flag.String("product", "", "product name for the research crew")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	choice := ""
	switch {
	case *runResearch:
		choice = "r"
	case *runFull:
		choice = "g"
	case *runRefined:
		choice = "f"
	default:
		choice = askChoice()
	}

	builder, err := newBuilder(ctx, cfg, logger, choice)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to assemble pipeline")
	}

	var selected *crew.Crew
	switch choice {
	case "r":
		selected, err = builder.ProductResearchCrew()
	case "g":
		selected, err = builder.VisualDNAToListingCrew()
	case "f":
		selected, err = builder.RefinedKitToListingCrew()
	default:
		fmt.Fprintln(os.Stderr, "invalid choice, expected r, g or f")
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build crew")
	}

	inputs := map[string]string{
		"product_name":     *product,
		"reference_images": *references,
	}
	logger.Info().Str("crew", selected.Name).Msg("starting crew")
	result, err := selected.Kickoff(ctx, inputs)
	if err != nil {
		logger.Fatal().Err(err).Str("crew", selected.Name).Msg("crew failed")
	}
	fmt.Println(result)

	// Bundle the generated assets for handoff when an image crew ran.
	if choice == "g" || choice == "f" {
		bundle := cfg.OutputDir + ".zip"
		if err := zip.ArchiveDir(cfg.OutputDir, bundle); err != nil {
			logger.Warn().Err(err).Msg("asset bundle not written")
		} else {
			logger.Info().Str("path", bundle).Msg("asset bundle written")
		}
	}
}

func askChoice() string {
	fmt.Println("Select a crew to run:")
	fmt.Println("  r. Product Research Crew")
	fmt.Println("  g. VisualDNA to Listing Crew")
	fmt.Println("  f. Refined ResourceKit to Listing Crew")
	fmt.Print("Enter choice (r/g/f): ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.ToLower(strings.TrimSpace(line))
}

// newBuilder wires clients and tools for the selected crew. The research
// crew needs no image stack, so its builder skips those credentials.
func newBuilder(ctx context.Context, cfg *infra.Config, logger infra.Logger, choice string) (*crew.Builder, error) {
	llmClient, err := llm.NewClient(llm.Options{
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: cfg.LLMBaseURL,
		LogDir:  cfg.LLMLogDir,
	})
	if err != nil {
		return nil, err
	}

	toolbox := crew.Toolbox{
		FileRead:  &tools.FileReadTool{},
		UserInput: &tools.UserInputTool{In: os.Stdin, Out: os.Stdout},
	}
	if cfg.SerperAPIKey != "" {
		toolbox.Search = &tools.SearchTool{APIKey: cfg.SerperAPIKey}
		toolbox.Scrape = &tools.ScrapeTool{}
	}

	if choice == "g" || choice == "f" {
		backend, err := uploader.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		hyClient, err := hunyuan.NewClient(hunyuan.Options{
			SecretID:  cfg.TencentSecretID,
			SecretKey: cfg.TencentSecretKey,
			Region:    cfg.TencentRegion,
			BaseURL:   cfg.HunyuanBaseURL,
			Uploader:  backend,
			Logger:    &logger,
		})
		if err != nil {
			return nil, err
		}
		store, err := storage.NewFileStore(cfg.OutputDir)
		if err != nil {
			return nil, err
		}

		imageTool := &tools.HunyuanImageTool{
			Generator:    hyClient,
			Store:        store,
			PollInterval: cfg.PollInterval,
			MaxPolls:     cfg.MaxPolls,
		}
		if cfg.DatabaseURL != "" {
			pool, err := infra.NewDBPool(ctx, cfg)
			if err != nil {
				return nil, err
			}
			ledger := runlog.NewStore(pool)
			if err := ledger.EnsureSchema(ctx); err != nil {
				return nil, err
			}
			crewName := "visualdna_to_listing"
			if choice == "f" {
				crewName = "refined_kit_to_listing"
			}
			imageTool.Generator = &runlog.Recorder{
				Inner:  hyClient,
				Store:  ledger,
				Crew:   crewName,
				Logger: logger,
			}
		}
		toolbox.ImageGen = imageTool

		if cfg.OpenRouterAPIKey != "" {
			orClient, err := openrouter.NewClient(openrouter.Options{
				APIKey:  cfg.OpenRouterAPIKey,
				Model:   cfg.OpenRouterModel,
				BaseURL: cfg.OpenRouterBaseURL,
			})
			if err != nil {
				return nil, err
			}
			toolbox.ImageDesc = &tools.ImageDescTool{Describer: orClient}
		}
	}

	return crew.NewBuilder(llmClient, toolbox, logger, ".")
}
