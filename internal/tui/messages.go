package tui

import (
	"github.com/ebranwell/marginalia/internal/collections"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CollectionsLoadedMsg signals that the initial load barrier has resolved.
// Notices carry per-collection fetch failures that fell back to cache.
type CollectionsLoadedMsg struct {
	Notices []collections.Notice
}

// MutationDoneMsg signals a successful write plus its selective refresh.
type MutationDoneMsg struct {
	Op      string // human-readable, e.g. "Added \"Dune\""
	Notices []collections.Notice
}

// ReaderSwitchedMsg signals the active reader toggle changed.
type ReaderSwitchedMsg struct {
	Reader int
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// TickMsg is a general tick message for animations
type TickMsg struct{}
