package domain

import "errors"

// Error taxonomy shared across handlers and the dispatch boundary. Each class
// maps to exactly one user-facing outcome; wrap these with fmt.Errorf("...: %w", ...)
// to attach context and test with errors.Is.
var (
	// ErrValidation marks malformed user input. Surfaced immediately, never
	// retried, never logged above debug.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a definitive empty result: a provider 404 or an
	// exhausted fallback chain.
	ErrNotFound = errors.New("no data found")

	// ErrTransient marks a timeout, 429, 5xx, or network failure after the
	// retry policy is exhausted.
	ErrTransient = errors.New("temporary provider failure")

	// ErrBadPayload marks an unexpected response shape on an otherwise
	// successful status. Retrying cannot help; logged with full context.
	ErrBadPayload = errors.New("unexpected provider payload")

	// ErrProviderFailure marks a definitive provider rejection (a 4xx other
	// than 404). Never retried; surfaced as a generic failure.
	ErrProviderFailure = errors.New("provider request rejected")

	// ErrDenied marks a cooldown or dedup rejection. Never logged as an error.
	ErrDenied = errors.New("command denied")
)
