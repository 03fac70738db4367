package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fathom-search/fathom/internal/config"
	"github.com/fathom-search/fathom/internal/dive"
	"github.com/fathom-search/fathom/internal/extract"
	"github.com/fathom-search/fathom/internal/fetch"
	"github.com/fathom-search/fathom/pkg/anthropic"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fathom",
	Short: "Meta-search dive pipeline",
	Long:  "Acquires content from candidate web pages under tight deadlines and synthesizes one attributed answer via Claude.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newPipeline wires the dive pipeline from config.
func newPipeline(sink dive.EventSink) *dive.Pipeline {
	extractor := extract.New(cfg.Extract.MaxChars)
	fetcher := fetch.NewPageFetcher(
		extractor,
		time.Duration(cfg.Dive.FetchTimeoutMs)*time.Millisecond,
		cfg.Dive.MinContentChars,
	)
	orch := fetch.NewOrchestrator(fetcher, fetch.OrchestratorConfig{
		TargetPages:     cfg.Dive.TargetPages,
		MaxConcurrency:  cfg.Dive.MaxConcurrency,
		OverfetchFactor: cfg.Dive.OverfetchFactor,
	})
	prompts := dive.NewPromptBuilder(cfg.Prompt.MaxSourceChars)
	ai := anthropic.NewClient(cfg.Anthropic.Key)

	return dive.New(orch, prompts, ai, sink, dive.Options{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Dive.MaxTokens,
		Temperature: cfg.Dive.Temperature,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
