package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/clinsight-inc/clinsight-engine/pkg/chatbot"
	"github.com/clinsight-inc/clinsight-engine/pkg/config"
	"github.com/clinsight-inc/clinsight-engine/pkg/generator"
	"github.com/clinsight-inc/clinsight-engine/pkg/llm"
	"github.com/clinsight-inc/clinsight-engine/pkg/pipeline"
	"github.com/clinsight-inc/clinsight-engine/pkg/prompts"
	"github.com/clinsight-inc/clinsight-engine/pkg/recipes"
	"github.com/clinsight-inc/clinsight-engine/pkg/reference"
	"github.com/clinsight-inc/clinsight-engine/pkg/schema"
	"github.com/clinsight-inc/clinsight-engine/pkg/sqltmpl"
	"github.com/clinsight-inc/clinsight-engine/pkg/warehouse"
)

// Version is set at build time via ldflags.
var Version = "dev"

// engine bundles the wired components behind the CLI commands.
type engine struct {
	cfg       *config.Config
	logger    *zap.Logger
	catalog   *schema.Catalog
	reference *reference.Store
	index     *recipes.Index
	assembler *prompts.Assembler
	sqlEngine *sqltmpl.Engine
	client    llm.Client
	warehouse warehouse.Executor
}

// buildEngine constructs every component once and passes dependencies
// explicitly; there are no singletons.
func buildEngine(configPath string) (*engine, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	catalog, err := schema.LoadCatalog(cfg.Paths.SchemaCSV, logger)
	if err != nil {
		return nil, err
	}

	refStore, err := reference.LoadStore(cfg.Paths.ReferenceDir, logger)
	if err != nil {
		return nil, err
	}

	index, err := recipes.LoadIndex(cfg.Paths.RecipesDir, logger)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewOpenAIClient(&llm.Config{
		Endpoint:    cfg.LLM.Endpoint,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	e := &engine{
		cfg:       cfg,
		logger:    logger,
		catalog:   catalog,
		reference: refStore,
		index:     index,
		assembler: prompts.NewAssembler(cfg.Paths.PromptsDir),
		sqlEngine: sqltmpl.NewEngine(cfg.Paths.RecipesDir),
		client:    client,
	}

	if cfg.Warehouse.IsConfigured() {
		wh, err := warehouse.NewClient(&warehouse.Config{
			ServerHostname: cfg.Warehouse.ServerHostname,
			HTTPPath:       cfg.Warehouse.HTTPPath,
			AccessToken:    cfg.Warehouse.AccessToken,
			Timeout:        time.Duration(cfg.Warehouse.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		e.warehouse = wh
	}

	return e, nil
}

func (e *engine) orchestrator() *generator.Orchestrator {
	return generator.NewOrchestrator(e.catalog, e.reference, e.assembler, e.client, e.logger)
}

// executeAndPrint runs SQL against the warehouse if one is configured.
func (e *engine) executeAndPrint(ctx context.Context, sqlText string) {
	if e.warehouse == nil {
		fmt.Println("warehouse not configured; skipping execution")
		return
	}
	result := e.warehouse.Execute(ctx, sqlText, e.cfg.Warehouse.MaxRows)
	if !result.Success {
		fmt.Printf("execution failed: %s\n", result.ErrorMessage)
		return
	}
	fmt.Printf("returned %d rows in %s\n", result.RowCount, result.ExecutionTime)
	fmt.Println(result.Columns)
	for _, row := range result.Rows {
		fmt.Println(row)
	}
}

func printResult(result *generator.Result) {
	if !result.Success {
		fmt.Printf("generation failed (%s): %s\n", result.FailureKind, result.ErrorMessage)
		return
	}
	fmt.Println("-- generated SQL --")
	fmt.Println(result.SQLQuery)
	if result.Analysis.Explanation != "" {
		fmt.Println("-- explanation --")
		fmt.Println(result.Analysis.Explanation)
	}
	if len(result.ReferencedTables) > 0 {
		fmt.Printf("tables: %v\n", result.ReferencedTables)
	}
}

func main() {
	var configPath string
	var execute bool

	root := &cobra.Command{
		Use:     "clinsight",
		Short:   "Retrieval-augmented SQL generation for clinical analytics",
		Version: Version,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	generateCmd := &cobra.Command{
		Use:   "generate [question]",
		Short: "Generate SQL from a natural-language question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(configPath)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			result := e.orchestrator().GenerateSQL(cmd.Context(), args[0])
			printResult(result)
			if result.Success && execute {
				e.executeAndPrint(cmd.Context(), result.SQLQuery)
			}
			return nil
		},
	}
	generateCmd.Flags().BoolVar(&execute, "execute", false, "execute the generated SQL against the warehouse")

	refineCmd := &cobra.Command{
		Use:   "refine [original-question] [current-sql] [refinement]",
		Short: "Refine previously generated SQL from feedback",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(configPath)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			result := e.orchestrator().RefineSQL(cmd.Context(), args[0], args[1], args[2])
			printResult(result)
			return nil
		},
	}

	var feedback string
	var targetCount int
	pipelineCmd := &cobra.Command{
		Use:   "pipeline [disease-name]",
		Short: "Run the disease analysis pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(configPath)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			p := pipeline.New(e.index, e.sqlEngine, e.catalog, e.assembler, e.client, e.logger)
			run := p.RunComplete(cmd.Context(), args[0], pipeline.RunOptions{
				Feedback:    feedback,
				TargetCount: targetCount,
			})

			fmt.Printf("run %s for %s: %d recipes, %.1f%% success\n",
				run.ID, run.DiseaseName, len(run.Executed), run.SuccessRate*100)
			for _, r := range run.Executed {
				status := "ok"
				if !r.Success {
					status = "failed: " + r.Error
				}
				fmt.Printf("  %-45s %s\n", r.RecipeName, status)
			}
			return nil
		},
	}
	pipelineCmd.Flags().StringVar(&feedback, "feedback", "", "natural-language feedback on recommended recipes")
	pipelineCmd.Flags().IntVar(&targetCount, "target-count", 0, "number of additional recipes to recommend")

	chatCmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask a question about the analytical schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(configPath)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			bot := chatbot.NewService(e.catalog, e.assembler, e.client, e.logger)
			answer, err := bot.Ask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}

	previewCmd := &cobra.Command{
		Use:   "preview [table] [limit]",
		Short: "Preview warehouse table contents",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(configPath)
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			limit := 10
			if len(args) == 2 {
				if _, err := fmt.Sscanf(args[1], "%d", &limit); err != nil {
					return fmt.Errorf("invalid limit %q", args[1])
				}
			}
			e.executeAndPrint(cmd.Context(), fmt.Sprintf("SELECT * FROM %s LIMIT %d", args[0], limit))
			return nil
		},
	}

	root.AddCommand(generateCmd, refineCmd, pipelineCmd, chatCmd, previewCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
