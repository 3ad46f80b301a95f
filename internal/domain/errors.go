package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for server responses
var (
	// ErrBookNotFound indicates the server has no book under the given title
	ErrBookNotFound = errors.New("book not found")

	// ErrQuoteNotFound indicates no quote matches the (book_title, text) pair
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrServerOffline indicates the shelf server is unreachable
	ErrServerOffline = errors.New("shelf server is unreachable")
)

// FetchError classifies a failed collection read. It is non-fatal: the caller
// degrades to the cached or previous snapshot and surfaces a notice.
type FetchError struct {
	Collection Collection
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError classifies a failed write. No local state changes and no
// refresh runs; the user must re-trigger the action.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// ValidationError is a client-side precondition failure caught before any
// request is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
