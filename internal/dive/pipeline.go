// Package dive runs the candidate content acquisition and synthesis pipeline:
// fetch enough usable pages from an ordered candidate list, then synthesize a
// single attributed answer with a completion model.
package dive

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fathom-search/fathom/internal/model"
	"github.com/fathom-search/fathom/pkg/anthropic"
)

// FallbackAnswer replaces a successful but empty completion.
const FallbackAnswer = "I could not produce an answer from the available sources."

// Acquirer gathers usable pages from a candidate list.
type Acquirer interface {
	Acquire(ctx context.Context, candidates []model.Candidate) model.AcquisitionResult
}

// Request is one pipeline invocation.
type Request struct {
	Query      string
	Candidates []model.Candidate
}

// Options tunes the synthesis call.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// Pipeline is the dive controller. It validates input, acquires content,
// synthesizes the answer, and assembles the response with sources and phase
// timings. All state lives within a single Run call.
type Pipeline struct {
	acquirer Acquirer
	prompts  *PromptBuilder
	ai       anthropic.Client
	sink     EventSink
	opts     Options
}

// New creates a Pipeline. A nil sink is replaced with NoopSink.
func New(acquirer Acquirer, prompts *PromptBuilder, ai anthropic.Client, sink EventSink, opts Options) *Pipeline {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Pipeline{
		acquirer: acquirer,
		prompts:  prompts,
		ai:       ai,
		sink:     sink,
		opts:     opts,
	}
}

// Run executes validate → acquire → synthesize for one request.
//
// Validation failures return ErrValidation before any network call. Zero
// acquired pages returns ErrNoContent. Completion-service failures return
// ErrSynthesis. Fewer pages than the acquisition target is not an error as
// long as at least one page was acquired.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.DiveResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, eris.Wrap(ErrValidation, "query must not be empty")
	}
	if len(req.Candidates) == 0 {
		return nil, eris.Wrap(ErrValidation, "pages must not be empty")
	}

	p.sink.Started(ctx, req.Query, len(req.Candidates))

	fetchStart := time.Now()
	acquired := p.acquirer.Acquire(ctx, req.Candidates)
	fetchMs := time.Since(fetchStart).Milliseconds()

	if len(acquired.Pages) == 0 {
		err := eris.Wrapf(ErrNoContent, "%d candidates offered", len(req.Candidates))
		p.sink.Failed(ctx, err)
		return nil, err
	}
	p.sink.AcquisitionComplete(ctx, len(acquired.Pages), fetchMs)

	synthStart := time.Now()
	answer, err := p.synthesize(ctx, req.Query, acquired.Pages)
	synthMs := time.Since(synthStart).Milliseconds()
	if err != nil {
		p.sink.Failed(ctx, err)
		return nil, err
	}

	result := &model.DiveResult{
		Answer:  answer,
		Sources: sourcesFor(acquired.Pages),
		Metadata: model.DiveMetadata{
			TotalDurationMs:     fetchMs + synthMs,
			FetchDurationMs:     fetchMs,
			SynthesisDurationMs: synthMs,
			CandidatesOffered:   len(req.Candidates),
			PagesAcquired:       len(acquired.Pages),
		},
	}
	p.sink.SynthesisComplete(ctx, result.Metadata)

	zap.L().Info("dive: complete",
		zap.Int("candidates", len(req.Candidates)),
		zap.Int("pages", len(acquired.Pages)),
		zap.Int64("total_ms", result.Metadata.TotalDurationMs),
	)

	return result, nil
}

func (p *Pipeline) synthesize(ctx context.Context, query string, pages []model.AcquiredPage) (string, error) {
	resp, err := p.ai.Complete(ctx, anthropic.CompletionRequest{
		Model:       p.opts.Model,
		System:      SystemPrompt,
		Prompt:      p.prompts.Build(query, pages),
		MaxTokens:   p.opts.MaxTokens,
		Temperature: p.opts.Temperature,
	})
	if err != nil {
		return "", eris.Wrap(ErrSynthesis, err.Error())
	}

	answer := strings.TrimSpace(resp.Text)
	if answer == "" {
		return FallbackAnswer, nil
	}
	return answer, nil
}

// sourcesFor maps acquired pages to attributed sources, 1:1 and in order.
// The description is the caller-supplied snippet; the pipeline does not
// synthesize descriptions from page content.
func sourcesFor(pages []model.AcquiredPage) []model.Source {
	sources := make([]model.Source, len(pages))
	for i, p := range pages {
		sources[i] = model.Source{
			URL:         p.Candidate.URL,
			Title:       p.Candidate.Title,
			Description: p.Candidate.Snippet,
		}
	}
	return sources
}
