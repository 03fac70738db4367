package fetch

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom-search/fathom/internal/model"
)

// scriptedFetcher succeeds or fails per URL and records every attempt.
type scriptedFetcher struct {
	mu       sync.Mutex
	failing  map[string]bool
	attempts []string
}

func newScriptedFetcher(failing ...string) *scriptedFetcher {
	f := &scriptedFetcher{failing: make(map[string]bool)}
	for _, u := range failing {
		f.failing[u] = true
	}
	return f
}

func (f *scriptedFetcher) Fetch(_ context.Context, c model.Candidate) model.FetchOutcome {
	f.mu.Lock()
	f.attempts = append(f.attempts, c.URL)
	f.mu.Unlock()

	if f.failing[c.URL] {
		return model.FetchOutcome{Candidate: c, Succeeded: false}
	}
	return model.FetchOutcome{
		Candidate: c,
		Content:   "content from " + c.URL,
		Succeeded: true,
	}
}

func (f *scriptedFetcher) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

func candidates(urls ...string) []model.Candidate {
	out := make([]model.Candidate, len(urls))
	for i, u := range urls {
		out[i] = model.Candidate{URL: u, Title: u}
	}
	return out
}

func defaultConfig() OrchestratorConfig {
	return OrchestratorConfig{TargetPages: 2, MaxConcurrency: 4, OverfetchFactor: 2}
}

func urlsOf(result model.AcquisitionResult) []string {
	urls := make([]string, len(result.Pages))
	for i, p := range result.Pages {
		urls[i] = p.Candidate.URL
	}
	return urls
}

func TestAcquire_PhaseOneSatisfiesTarget(t *testing.T) {
	// Scenario: 4 candidates, all succeed. Phase 1 yields 4 >= target 2;
	// exactly the first 2 come back in input order and phase 2 never runs.
	fetcher := newScriptedFetcher()
	orch := NewOrchestrator(fetcher, defaultConfig())

	result := orch.Acquire(context.Background(), candidates("a", "b", "c", "d"))

	assert.Equal(t, []string{"a", "b"}, urlsOf(result))
	assert.Equal(t, 4, fetcher.attemptCount())
}

func TestAcquire_PhaseTwoTopsUp(t *testing.T) {
	// Phase 1 (a,b,c,d): only a succeeds. needed = 1, so phase 2 fetches
	// min(2, 1*2) = 2 of the remainder (e,f).
	fetcher := newScriptedFetcher("b", "c", "d", "f")
	orch := NewOrchestrator(fetcher, defaultConfig())

	result := orch.Acquire(context.Background(), candidates("a", "b", "c", "d", "e", "f", "g"))

	assert.Equal(t, []string{"a", "e"}, urlsOf(result))
	assert.Equal(t, 6, fetcher.attemptCount())
	assert.NotContains(t, fetcher.attempts, "g")
}

func TestAcquire_AllPhaseOneFail(t *testing.T) {
	// Scenario: 5 candidates, first 4 all fail. Phase 2 fetches
	// min(1 remaining, 2*2) = 1 candidate; its success still counts even
	// though the target of 2 is missed.
	fetcher := newScriptedFetcher("a", "b", "c", "d")
	orch := NewOrchestrator(fetcher, defaultConfig())

	result := orch.Acquire(context.Background(), candidates("a", "b", "c", "d", "e"))

	assert.Equal(t, []string{"e"}, urlsOf(result))
	assert.Equal(t, 5, fetcher.attemptCount())
}

func TestAcquire_TotalFailureYieldsEmpty(t *testing.T) {
	fetcher := newScriptedFetcher("a", "b", "c", "d", "e", "f")
	orch := NewOrchestrator(fetcher, defaultConfig())

	result := orch.Acquire(context.Background(), candidates("a", "b", "c", "d", "e", "f"))

	assert.Empty(t, result.Pages)
}

func TestAcquire_NoPhaseTwoWithoutRemainder(t *testing.T) {
	fetcher := newScriptedFetcher("a", "b", "c")
	orch := NewOrchestrator(fetcher, defaultConfig())

	result := orch.Acquire(context.Background(), candidates("a", "b", "c", "d"))

	// Only d succeeded in phase 1; no candidates remain for phase 2.
	assert.Equal(t, []string{"d"}, urlsOf(result))
	assert.Equal(t, 4, fetcher.attemptCount())
}

func TestAcquire_PhaseTwoBoundScalesWithOverfetch(t *testing.T) {
	// needed = 2, overfetch = 3: phase 2 attempts min(10 remaining, 6).
	fetcher := newScriptedFetcher("a", "b", "c", "d")
	cfg := OrchestratorConfig{TargetPages: 2, MaxConcurrency: 4, OverfetchFactor: 3}
	orch := NewOrchestrator(fetcher, cfg)

	result := orch.Acquire(context.Background(), candidates(
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n",
	))

	assert.Equal(t, []string{"e", "f"}, urlsOf(result))
	assert.Equal(t, 4+6, fetcher.attemptCount())
}

func TestAcquire_PhaseTwoAppendsAtMostNeeded(t *testing.T) {
	// Phase 1 yields 1 success; phase 2 fetches 2 and both succeed, but only
	// needed (1) is appended.
	fetcher := newScriptedFetcher("b", "c", "d")
	orch := NewOrchestrator(fetcher, defaultConfig())

	result := orch.Acquire(context.Background(), candidates("a", "b", "c", "d", "e", "f"))

	require.Len(t, result.Pages, 2)
	assert.Equal(t, []string{"a", "e"}, urlsOf(result))
}

func TestAcquire_OrderPreservedWithinBatch(t *testing.T) {
	// Success order must follow input order within the batch, not completion
	// order.
	fetcher := newScriptedFetcher("b")
	cfg := OrchestratorConfig{TargetPages: 3, MaxConcurrency: 4, OverfetchFactor: 2}
	orch := NewOrchestrator(fetcher, cfg)

	result := orch.Acquire(context.Background(), candidates("a", "b", "c", "d"))

	assert.Equal(t, []string{"a", "c", "d"}, urlsOf(result))
}

func TestAcquire_ShortListSinglePhase(t *testing.T) {
	fetcher := newScriptedFetcher()
	orch := NewOrchestrator(fetcher, defaultConfig())

	result := orch.Acquire(context.Background(), candidates("a"))

	assert.Equal(t, []string{"a"}, urlsOf(result))
	assert.Equal(t, 1, fetcher.attemptCount())
}
