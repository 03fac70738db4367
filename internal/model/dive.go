// Package model defines the value types flowing through the dive pipeline.
package model

// Candidate is a caller-supplied URL proposed as a content source. Identity is
// the URL; the pipeline does not deduplicate — duplicate candidates are
// fetched independently.
type Candidate struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// FetchOutcome records a single page-fetch attempt. Every failure mode
// (timeout, non-2xx, parse error, thin content) is represented here as data;
// the fetcher never surfaces an error to its caller. Never mutated after
// creation.
type FetchOutcome struct {
	Candidate  Candidate
	Content    string
	Succeeded  bool
	DurationMs int64
}

// AcquiredPage pairs a candidate with the extracted content that passed the
// quality gate.
type AcquiredPage struct {
	Candidate Candidate
	Content   string
}

// AcquisitionResult holds the pages acquired across both fetch phases,
// truncated to at most the target count. Phase 1 successes precede phase 2
// successes; within a phase, input order is preserved.
type AcquisitionResult struct {
	Pages []AcquiredPage
}

// Source attributes one acquired page in the final answer. Sources correspond
// 1:1, in order, to AcquisitionResult.Pages.
type Source struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DiveMetadata carries phase timings and acquisition counts for one run.
type DiveMetadata struct {
	TotalDurationMs     int64 `json:"totalDuration"`
	FetchDurationMs     int64 `json:"fetchDuration"`
	SynthesisDurationMs int64 `json:"aiDuration"`
	CandidatesOffered   int   `json:"pagesAttempted"`
	PagesAcquired       int   `json:"pagesSuccessful"`
}

// DiveResult is the assembled outcome of a successful pipeline run.
type DiveResult struct {
	Answer   string       `json:"response"`
	Sources  []Source     `json:"sources"`
	Metadata DiveMetadata `json:"metadata"`
}
