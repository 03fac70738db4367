package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fathom-search/fathom/internal/dive"
	"github.com/fathom-search/fathom/internal/model"
	"github.com/fathom-search/fathom/pkg/brave"
)

var (
	diveURLs  []string
	diveCount int
)

var diveCmd = &cobra.Command{
	Use:   "dive <query>",
	Short: "Run one dive from the terminal",
	Long:  "Sources candidates from Brave Search (or --url flags), acquires their content, and prints a synthesized answer with sources.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := args[0]

		candidates, err := diveCandidates(cmd, query)
		if err != nil {
			return err
		}

		pipeline := newPipeline(dive.LogSink{})
		result, err := pipeline.Run(ctx, dive.Request{
			Query:      query,
			Candidates: candidates,
		})
		if err != nil {
			return err
		}

		fmt.Println(result.Answer)
		fmt.Println()
		for i, src := range result.Sources {
			fmt.Printf("[%d] %s (%s)\n", i+1, src.Title, src.URL)
		}
		fmt.Printf("\n%d/%d pages acquired in %dms (fetch %dms, synthesis %dms)\n",
			result.Metadata.PagesAcquired,
			result.Metadata.CandidatesOffered,
			result.Metadata.TotalDurationMs,
			result.Metadata.FetchDurationMs,
			result.Metadata.SynthesisDurationMs,
		)

		return nil
	},
}

// diveCandidates builds the candidate list from --url flags, or from Brave
// Search when none are given.
func diveCandidates(cmd *cobra.Command, query string) ([]model.Candidate, error) {
	if len(diveURLs) > 0 {
		candidates := make([]model.Candidate, len(diveURLs))
		for i, u := range diveURLs {
			candidates[i] = model.Candidate{URL: u, Title: u}
		}
		return candidates, nil
	}

	if cfg.Brave.Key == "" {
		return nil, eris.New("dive: brave.key is not configured; pass --url instead")
	}

	client := brave.NewClient(cfg.Brave.Key, brave.WithBaseURL(cfg.Brave.BaseURL))
	results, err := client.Search(cmd.Context(), query, diveCount)
	if err != nil {
		return nil, eris.Wrap(err, "dive: search candidates")
	}

	candidates := make([]model.Candidate, len(results))
	for i, r := range results {
		candidates[i] = model.Candidate{
			URL:     r.URL,
			Title:   r.Title,
			Snippet: r.Description,
		}
	}
	return candidates, nil
}

func init() {
	diveCmd.Flags().StringArrayVar(&diveURLs, "url", nil, "candidate URL (repeatable; skips search)")
	diveCmd.Flags().IntVar(&diveCount, "count", 8, "number of search results to offer as candidates")
	rootCmd.AddCommand(diveCmd)
}
