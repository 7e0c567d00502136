// Package cmd provides the CLI commands for drafting Responsible AI
// assessments.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/plimantour/rai-agent/core/assessment"
	"github.com/plimantour/rai-agent/core/cache"
	"github.com/plimantour/rai-agent/core/completion"
	"github.com/plimantour/rai-agent/core/compress"
	"github.com/plimantour/rai-agent/core/config"
	"github.com/plimantour/rai-agent/core/llm"
	"github.com/plimantour/rai-agent/core/pricing"
)

var (
	cfgPath      string
	flagModel    string
	flagLanguage string
	flagRebuild  bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "rai-agent",
	Short: "Responsible AI assessment drafting copilot",
	Long: `rai-agent drafts a Responsible AI Impact Assessment from a solution
description: it runs a fixed sequence of generation steps against an
Azure OpenAI deployment, caches every completion for replay, and fills
the assessment template's placeholders with the generated content.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model deployment to use (overrides configuration)")
	rootCmd.PersistentFlags().StringVar(&flagLanguage, "language", "", "target language for the assessment")
	rootCmd.PersistentFlags().BoolVar(&flagRebuild, "rebuild-cache", false, "ignore cached completions and re-invoke the model")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// app wires the runtime dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    cache.Store
	pipeline *assessment.Pipeline

	stopPricingWatch func()
}

func newApp() (*app, error) {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if flagModel != "" {
		cfg.OpenAI.Model = flagModel
	}
	if flagLanguage != "" {
		cfg.Assessment.Language = flagLanguage
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	table := pricing.NewTable(logger)
	stopWatch := func() {}
	if cfg.Pricing.OverridePath != "" {
		if err := table.LoadOverride(cfg.Pricing.OverridePath); err != nil {
			logger.Warn("failed to load pricing override, using defaults", slog.String("error", err.Error()))
		} else if stop, err := table.Watch(cfg.Pricing.OverridePath, logger); err == nil {
			stopWatch = stop
		}
	}

	store, err := cache.NewSQLiteStore(cfg.Cache.Path, cfg.Cache.MemoryEntries, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open completion cache: %w", err)
	}

	var compressor compress.Compressor = compress.Identity{}
	if cfg.Compression.Enabled && cfg.Compression.ServiceURL != "" {
		compressor = compress.NewHTTPCompressor(cfg.Compression.ServiceURL, cfg.OpenAI.Timeout.Std())
	}

	invoker := llm.NewInvoker(llm.NewAPI(cfg.OpenAI), table, logger)
	orchestrator := completion.NewOrchestrator(
		invoker,
		store,
		table,
		compressor,
		cfg.OpenAI.FallbackModel,
		cfg.Compression.GlobalRate,
		logger,
	)

	return &app{
		cfg:              cfg,
		logger:           logger,
		store:            store,
		pipeline:         assessment.NewPipeline(orchestrator, store, logger),
		stopPricingWatch: stopWatch,
	}, nil
}

func (a *app) Close() {
	a.stopPricingWatch()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close completion cache", slog.String("error", err.Error()))
	}
}

// readDescription loads the solution description from a file argument
// or standard input when the argument is "-".
func readDescription(path string) (string, error) {
	if path == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read solution description from stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read solution description: %w", err)
	}
	return string(raw), nil
}

func printProgress(message string) {
	fmt.Fprintln(os.Stderr, message)
}
