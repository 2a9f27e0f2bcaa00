package booking

import "errors"

var (
	// ErrInvalidInterval is returned when start >= end where a positive-length interval is required.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidArgument covers malformed input other than intervals (negative gap length, unknown kind).
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnitNotFound    = errors.New("unit not found")
	ErrNotOwned        = errors.New("unit not owned by caller")
	// ErrDataFetchFailed wraps any data-layer failure. Retryable.
	ErrDataFetchFailed = errors.New("data fetch failed")
	// ErrUnavailable is returned by a reserve when the advisory availability check finds conflicts.
	ErrUnavailable = errors.New("interval unavailable")
	// ErrConcurrentConflict is returned when the write-time re-check rejects a commitment
	// that passed the advisory check. Callers should re-run the availability flow.
	ErrConcurrentConflict = errors.New("concurrent booking conflict")
)
