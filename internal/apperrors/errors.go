package apperrors

import "errors"

// Source errors are raised by the price source adapter. Both are recoverable
// at the cache boundary by serving a stale record when one exists.
var (
	// ErrSourceUnavailable indicates the price provider could not be reached,
	// returned an error, or did not answer before the source timeout.
	ErrSourceUnavailable = errors.New("price source unavailable")

	// ErrEmptySeries indicates the provider answered but returned no usable bars
	// (for example every close was null). Such a result is never cached.
	ErrEmptySeries = errors.New("price source returned no usable data")
)

// Analysis errors are surfaced to the caller, which renders a "no data" state.
var (
	// ErrInsufficientData indicates the analyzed window holds fewer than two rows
	// with a day-over-day change.
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Cache errors are raised by cache stores.
var (
	// ErrCacheMiss indicates no record has been written to the store yet.
	ErrCacheMiss = errors.New("cache record not found")

	// ErrCorruptCacheRecord indicates a stored record could not be decoded.
	ErrCorruptCacheRecord = errors.New("cache record is corrupt")
)

// Validation errors.
var (
	// ErrInvalidPage indicates a page number that is not a positive integer.
	ErrInvalidPage = errors.New("page must be a positive integer")

	// ErrInvalidPageSize indicates a page size that is not a positive integer.
	ErrInvalidPageSize = errors.New("page size must be a positive integer")

	// ErrInvalidRate indicates a missing or non-positive conversion input.
	ErrInvalidRate = errors.New("conversion rate must be positive")
)
