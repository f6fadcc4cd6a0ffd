package review

import "errors"

var (
	// ErrStaleAction marks a verdict for an item that is no longer current.
	// Callers ignore it silently.
	ErrStaleAction = errors.New("review: stale action")

	// ErrIdentityMismatch marks a verdict sent by someone other than the
	// session owner. Callers surface it as "not your session".
	ErrIdentityMismatch = errors.New("review: not your session")

	// ErrFetchFailed marks missing presentation data. The distributor
	// degrades to a text-only presentation.
	ErrFetchFailed = errors.New("review: fetch failed")

	// ErrUnknownAction marks a verdict whose action is neither accept nor reject.
	ErrUnknownAction = errors.New("review: unknown action")
)
