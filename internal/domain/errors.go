package domain

import (
	"errors"
	"fmt"
)

// Configuration errors abort a sync before any fetching begins.
var (
	ErrUnknownTable    = errors.New("unknown table")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidRange    = errors.New("invalid date range")
)

// ErrSchemaMismatch means a fetched batch's fields cannot be aligned with
// the table's declared columns (primary key or date column absent).
var ErrSchemaMismatch = errors.New("schema mismatch")

// ErrStorage marks failures of the storage backend. A storage failure is
// fatal to the current table's sync but leaves other tables unaffected.
var ErrStorage = errors.New("storage error")

// StorageErr wraps err so that errors.Is(err, ErrStorage) holds.
func StorageErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// RetryClass tags a fetch failure with the recovery policy it permits.
type RetryClass int

const (
	// RetryNone means the call failed terminally for this parameter set.
	RetryNone RetryClass = iota
	// RetryBackoff means the call may be retried after exponential backoff.
	RetryBackoff
	// RetryCooldown means the remote throttled us; wait the fixed cooldown
	// window before retrying the identical call.
	RetryCooldown
)

func (c RetryClass) String() string {
	switch c {
	case RetryBackoff:
		return "backoff"
	case RetryCooldown:
		return "cooldown"
	default:
		return "none"
	}
}

// FetchError is a remote call failure carrying its recoverability class.
type FetchError struct {
	Class RetryClass
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed (%s): %v", e.Class, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a throttle signal from the remote.
func IsRateLimited(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Class == RetryCooldown
}

// IsRetryable reports whether err permits another attempt.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Class != RetryNone
}
