// File path: internal/common/errors.go
package common

import "errors"

// Shared error kinds for the matching engine. Callers classify failures
// with errors.Is; packages wrap these with contextual detail.
var (
	// ErrConfiguration marks invalid chunker, cache, or model parameters.
	// Fatal: the caller must fix the configuration before retrying.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrProvider marks a failed embedding or generative-model call.
	// Recoverable by the surrounding application's retry policy; the
	// engine itself never retries.
	ErrProvider = errors.New("provider call failed")

	// ErrReplyFormat marks a generative reply that could not be parsed.
	// Recovered locally by degrading to a null match.
	ErrReplyFormat = errors.New("malformed model reply")

	// ErrEmptyInput marks an operation invoked with no usable input.
	ErrEmptyInput = errors.New("empty input")

	// ErrDimensionMismatch marks vectors of differing dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrNoResolution marks an Explain call issued before any Find.
	ErrNoResolution = errors.New("no resolution available")
)
