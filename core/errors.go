package core

import "errors"

// Terminal error classes surfaced to the boundary layer. Callers match
// with errors.Is; wrapped detail travels alongside via fmt.Errorf %w.
var (
	// ErrInvalidInput marks malformed URLs or unextractable video ids.
	// Terminal, not retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a query against a video that was never ingested,
	// or missing metadata.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a failed embedding, LLM, or transcription call.
	// The whole operation may be retried by the caller; nothing is
	// retried internally.
	ErrUpstream = errors.New("upstream failure")

	// ErrAlreadyInProgress is the ingestion de-duplication signal, not a
	// real failure.
	ErrAlreadyInProgress = errors.New("ingestion already in progress")
)
