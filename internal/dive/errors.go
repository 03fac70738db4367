package dive

import "github.com/rotisserie/eris"

// Pipeline-level error taxonomy. Individual page-fetch failures never appear
// here — they are absorbed as FetchOutcome data. Only input validation and
// whole-phase exhaustion become user-visible errors.
var (
	// ErrValidation marks bad or missing caller input. Never retried.
	ErrValidation = eris.New("dive: invalid request")

	// ErrNoContent marks total acquisition failure: zero usable pages after
	// both fetch phases. The most common unrecoverable outcome under
	// adversarial network conditions.
	ErrNoContent = eris.New("dive: could not fetch meaningful content from the provided pages")

	// ErrSynthesis marks a completion-service failure or malformed response.
	ErrSynthesis = eris.New("dive: answer synthesis failed")
)
