package errs

import "errors"

// Shared error categories. Wrap with fmt.Errorf("...: %w", ...) and test
// with errors.Is so callers can branch on category without string matching.
var (
	// ErrNotConfigured means an external provider is missing credentials.
	// The process keeps running; calls to that provider fail fast.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrValidation marks malformed input rejected at write time.
	ErrValidation = errors.New("validation failed")

	// ErrUpstream marks a failed or timed-out external provider call.
	ErrUpstream = errors.New("upstream provider error")

	// ErrConflict marks a concurrent-update conflict on schedule state.
	// Retried at most once per tick, then logged and skipped.
	ErrConflict = errors.New("concurrent update conflict")

	ErrNotFound = errors.New("not found")
)
