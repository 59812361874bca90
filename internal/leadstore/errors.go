package leadstore

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped inside a StoreError.
var (
	ErrNotFound = errors.New("lead not found")
)

// Op names the store operation that failed.
type Op string

const (
	OpList   Op = "list"
	OpUpdate Op = "update"
	OpPing   Op = "ping"
)

// StoreError is the only failure kind the store surfaces. Transport, auth
// and constraint failures are all flattened into it.
type StoreError struct {
	Op Op
	ID string
	// Status is the HTTP status for REST drivers, 0 otherwise.
	Status int
	Err    error
}

func (e *StoreError) Error() string {
	msg := "store " + string(e.Op)
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error { return e.Err }

// Wrap returns err as a StoreError for op. nil stays nil and an existing
// StoreError is returned unchanged.
func Wrap(op Op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, ID: id, Err: err}
}

// IsStoreError reports whether err is, or wraps, a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
