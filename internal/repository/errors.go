package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned when an identifier is not in the store's id format.
	ErrInvalidID = errors.New("invalid record id")

	// ErrConflict matches any StoreError of kind KindConflict via errors.Is.
	ErrConflict = errors.New("record already exists")
)

// Kind classifies a storage failure for the caller's retry decision.
type Kind int

const (
	// KindFatal failures are not worth retrying (bad query, auth, decode errors).
	KindFatal Kind = iota
	// KindTransient failures are connectivity or timeout problems.
	KindTransient
	// KindConflict is a unique constraint violation.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindConflict:
		return "conflict"
	default:
		return "fatal"
	}
}

// StoreError is the typed error every repository returns for driver failures.
type StoreError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConflict) match conflict-kind errors.
func (e *StoreError) Is(target error) bool {
	return target == ErrConflict && e.Kind == KindConflict
}

// KindOf returns the kind of a StoreError anywhere in err's chain.
// Errors that are not StoreErrors are treated as fatal.
func KindOf(err error) Kind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindFatal
}

// IsTransient reports whether err is a retryable storage failure.
func IsTransient(err error) bool {
	return err != nil && KindOf(err) == KindTransient
}

// IsConflict reports whether err is a unique constraint violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func storeErr(op string, kind Kind, err error) error {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

// isTransientNetwork covers failures shared by every driver: deadlines,
// refused or reset connections, and net timeouts.
func isTransientNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
