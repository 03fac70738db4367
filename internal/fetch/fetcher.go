// Package fetch acquires usable page content from candidate URLs under tight
// per-request deadlines.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fathom-search/fathom/internal/extract"
	"github.com/fathom-search/fathom/internal/model"
)

// browserUA mimics a desktop browser; many sites serve bot UAs a stub page.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

const maxBodyBytes = 1 << 20

// Fetcher fetches a single candidate and reports the outcome as data.
type Fetcher interface {
	Fetch(ctx context.Context, c model.Candidate) model.FetchOutcome
}

// PageFetcher fetches candidate pages over HTTP and extracts their content.
// All failure modes (timeout, non-2xx, network error, parse error, thin
// content) are absorbed into the returned FetchOutcome; Fetch never returns
// an error.
type PageFetcher struct {
	client          *http.Client
	extractor       *extract.Extractor
	timeout         time.Duration
	minContentChars int
}

// NewPageFetcher creates a PageFetcher with the given per-fetch timeout and
// minimum usable content length.
func NewPageFetcher(extractor *extract.Extractor, timeout time.Duration, minContentChars int) *PageFetcher {
	return &PageFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		extractor:       extractor,
		timeout:         timeout,
		minContentChars: minContentChars,
	}
}

// Fetch issues one GET under the configured deadline and runs extraction on
// the body. Content shorter than the minimum threshold counts as a failure
// even when the HTTP call itself succeeded.
func (f *PageFetcher) Fetch(ctx context.Context, c model.Candidate) model.FetchOutcome {
	start := time.Now()
	content, ok := f.fetch(ctx, c.URL)
	return model.FetchOutcome{
		Candidate:  c,
		Content:    content,
		Succeeded:  ok,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

func (f *PageFetcher) fetch(ctx context.Context, targetURL string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		f.logFailure(targetURL, "create request", err)
		return "", false
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logFailure(targetURL, "fetch", err)
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("fetch: non-2xx status",
			zap.String("url", targetURL),
			zap.Int("status", resp.StatusCode),
		)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		f.logFailure(targetURL, "read body", err)
		return "", false
	}

	content, err := f.extractor.Extract(string(body))
	if err != nil {
		f.logFailure(targetURL, "extract", err)
		return "", false
	}

	if len(content) < f.minContentChars {
		zap.L().Debug("fetch: content below threshold",
			zap.String("url", targetURL),
			zap.Int("chars", len(content)),
			zap.Int("min_chars", f.minContentChars),
		)
		return "", false
	}

	return content, true
}

func (f *PageFetcher) logFailure(targetURL, stage string, err error) {
	zap.L().Debug("fetch: failed",
		zap.String("url", targetURL),
		zap.String("stage", stage),
		zap.Error(err),
	)
}
