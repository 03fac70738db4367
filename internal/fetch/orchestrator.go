package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fathom-search/fathom/internal/model"
)

// OrchestratorConfig bounds the two-phase acquisition strategy.
type OrchestratorConfig struct {
	// TargetPages is how many usable pages acquisition aims for.
	TargetPages int
	// MaxConcurrency caps the phase 1 batch size.
	MaxConcurrency int
	// OverfetchFactor scales the phase 2 batch: needed * OverfetchFactor
	// candidates are attempted to compensate for the expected failure rate.
	OverfetchFactor int
}

// Orchestrator runs bounded concurrent fetch batches over a candidate list.
// Worst-case latency is two sequential rounds regardless of list length.
type Orchestrator struct {
	fetcher Fetcher
	cfg     OrchestratorConfig
}

// NewOrchestrator creates an Orchestrator using fetcher for individual pages.
func NewOrchestrator(fetcher Fetcher, cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, cfg: cfg}
}

// Acquire attempts to gather TargetPages usable pages from candidates.
//
// Phase 1 fetches the first MaxConcurrency candidates as one concurrent batch
// and keeps the successes in input order. If that falls short and candidates
// remain, phase 2 fetches up to needed*OverfetchFactor more and appends up to
// needed successes. No third phase and no per-URL retry; the result may hold
// fewer than TargetPages pages, possibly zero.
func (o *Orchestrator) Acquire(ctx context.Context, candidates []model.Candidate) model.AcquisitionResult {
	target := o.cfg.TargetPages

	phase1 := candidates
	if len(phase1) > o.cfg.MaxConcurrency {
		phase1 = phase1[:o.cfg.MaxConcurrency]
	}

	start := time.Now()
	pages := successes(o.fetchBatch(ctx, phase1))
	zap.L().Debug("acquire: phase 1 complete",
		zap.Int("attempted", len(phase1)),
		zap.Int("succeeded", len(pages)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if len(pages) >= target {
		return model.AcquisitionResult{Pages: pages[:target]}
	}

	remainder := candidates[len(phase1):]
	if len(remainder) == 0 {
		return model.AcquisitionResult{Pages: pages}
	}

	needed := target - len(pages)
	batch := remainder
	if limit := needed * o.cfg.OverfetchFactor; len(batch) > limit {
		batch = batch[:limit]
	}

	extra := successes(o.fetchBatch(ctx, batch))
	if len(extra) > needed {
		extra = extra[:needed]
	}
	pages = append(pages, extra...)

	zap.L().Debug("acquire: phase 2 complete",
		zap.Int("attempted", len(batch)),
		zap.Int("total_pages", len(pages)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return model.AcquisitionResult{Pages: pages}
}

// fetchBatch fetches all candidates concurrently and waits for the whole
// batch. Outcomes land in an indexed slice so the result order matches the
// input order, not completion order. Cancelling one fetch (its own deadline)
// has no effect on siblings.
func (o *Orchestrator) fetchBatch(ctx context.Context, batch []model.Candidate) []model.FetchOutcome {
	outcomes := make([]model.FetchOutcome, len(batch))

	g, gCtx := errgroup.WithContext(ctx)
	for i, c := range batch {
		g.Go(func() error {
			outcomes[i] = o.fetcher.Fetch(gCtx, c)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// successes filters a batch to its usable pages, preserving order.
func successes(outcomes []model.FetchOutcome) []model.AcquiredPage {
	var pages []model.AcquiredPage
	for _, out := range outcomes {
		if out.Succeeded {
			pages = append(pages, model.AcquiredPage{
				Candidate: out.Candidate,
				Content:   out.Content,
			})
		}
	}
	return pages
}
