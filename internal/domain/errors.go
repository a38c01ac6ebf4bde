package domain

import "errors"

// Sentinel errors shared across the pipeline. Callers discriminate with
// errors.Is; wrapping sites add context with fmt.Errorf("...: %w", err).
var (
	// ErrNotFound indicates an id did not resolve to a stored entity.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition indicates a state-machine violation, such as
	// cancelling a completed job or approving a rejected suggestion.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrBackendUnavailable indicates the analysis backend is unreachable
	// or misconfigured. It triggers the rules fallback, not a hard failure.
	ErrBackendUnavailable = errors.New("analysis backend unavailable")

	// ErrMalformedBackendResponse indicates the backend replied with a
	// payload that could not be parsed.
	ErrMalformedBackendResponse = errors.New("malformed backend response")

	// ErrExtractionFailure indicates a page's markup yielded no usable
	// text. Per-page failures are logged and skipped, never fatal.
	ErrExtractionFailure = errors.New("content extraction failed")

	// ErrPersistenceFailure indicates a store commit failed.
	ErrPersistenceFailure = errors.New("persistence failure")
)
