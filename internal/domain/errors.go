package domain

import "errors"

// Sentinel errors for the failure modes callers are expected to branch on.
// All are synchronous and non-retryable; wrap with fmt.Errorf("...: %w", err)
// to add context and test with errors.Is.
var (
	// ErrServiceUnavailable means the upstream archive reported it is
	// temporarily unavailable. Distinct from parse failures.
	ErrServiceUnavailable = errors.New("radiosonde archive unavailable")

	// ErrInvalidArgument means a query was malformed: bad combined-identifier
	// syntax, or a mode's required parameters missing or conflicting.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoCatalog means selection was attempted before any station listing
	// was loaded.
	ErrNoCatalog = errors.New("no station catalog loaded")

	// ErrRangeUnavailable means a requested export window extends outside the
	// span covered by the supplied profiles.
	ErrRangeUnavailable = errors.New("requested range not covered by available soundings")
)
