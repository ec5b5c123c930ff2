package documents

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("document not found")
	ErrStorage      = errors.New("storage failure")
	ErrPersistence  = errors.New("persistence failure")
	// ErrEmptyIndex stops a sweep that would treat every blob as an orphan.
	ErrEmptyIndex = errors.New("no records to reconcile against")
)

// wrapError keeps both the failure kind and its cause reachable through errors.Is.
func wrapError(op string, kind, cause error) error {
	if cause == nil || errors.Is(cause, kind) {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, cause)
}
