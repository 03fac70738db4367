package dive

import (
	"context"

	"go.uber.org/zap"

	"github.com/fathom-search/fathom/internal/model"
)

// EventSink receives pipeline lifecycle notifications. Implementations feed
// analytics; they must not block the pipeline and their failures are ignored.
type EventSink interface {
	Started(ctx context.Context, query string, candidatesOffered int)
	AcquisitionComplete(ctx context.Context, pagesAcquired int, durationMs int64)
	SynthesisComplete(ctx context.Context, meta model.DiveMetadata)
	Failed(ctx context.Context, err error)
}

// NoopSink discards all events.
type NoopSink struct{}

func (NoopSink) Started(context.Context, string, int)                  {}
func (NoopSink) AcquisitionComplete(context.Context, int, int64)       {}
func (NoopSink) SynthesisComplete(context.Context, model.DiveMetadata) {}
func (NoopSink) Failed(context.Context, error)                         {}

// LogSink emits events as structured logs.
type LogSink struct{}

func (LogSink) Started(_ context.Context, query string, candidatesOffered int) {
	zap.L().Info("dive: started",
		zap.Int("query_chars", len(query)),
		zap.Int("candidates", candidatesOffered),
	)
}

func (LogSink) AcquisitionComplete(_ context.Context, pagesAcquired int, durationMs int64) {
	zap.L().Info("dive: acquisition complete",
		zap.Int("pages", pagesAcquired),
		zap.Int64("duration_ms", durationMs),
	)
}

func (LogSink) SynthesisComplete(_ context.Context, meta model.DiveMetadata) {
	zap.L().Info("dive: synthesis complete",
		zap.Int64("total_ms", meta.TotalDurationMs),
		zap.Int64("fetch_ms", meta.FetchDurationMs),
		zap.Int64("synthesis_ms", meta.SynthesisDurationMs),
		zap.Int("pages_acquired", meta.PagesAcquired),
	)
}

func (LogSink) Failed(_ context.Context, err error) {
	zap.L().Warn("dive: failed", zap.Error(err))
}
