package dive

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fathom-search/fathom/internal/model"
	"github.com/fathom-search/fathom/pkg/anthropic"
)

// --- Acquirer Mock ---

type mockAcquirer struct {
	mock.Mock
}

func (m *mockAcquirer) Acquire(ctx context.Context, candidates []model.Candidate) model.AcquisitionResult {
	args := m.Called(ctx, candidates)
	return args.Get(0).(model.AcquisitionResult)
}

// --- Anthropic Mock ---

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) Complete(ctx context.Context, req anthropic.CompletionRequest) (*anthropic.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.CompletionResponse), args.Error(1)
}

// --- Event Sink Spy ---

// spySink records the order of pipeline boundary events.
type spySink struct {
	events []string
}

func (s *spySink) Started(context.Context, string, int) {
	s.events = append(s.events, "started")
}

func (s *spySink) AcquisitionComplete(context.Context, int, int64) {
	s.events = append(s.events, "acquisition_complete")
}

func (s *spySink) SynthesisComplete(context.Context, model.DiveMetadata) {
	s.events = append(s.events, "synthesis_complete")
}

func (s *spySink) Failed(context.Context, error) {
	s.events = append(s.events, "failed")
}
