package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebranwell/marginalia/internal/adapter"
	"github.com/ebranwell/marginalia/internal/collections"
	"github.com/ebranwell/marginalia/internal/domain"
)

// Command factories for async operations

const (
	loadTimeout     = 30 * time.Second
	mutationTimeout = 15 * time.Second
)

// LoadCollectionsCmd runs the initial fan-out load of all three collections.
// The coordinator's barrier guarantees the message arrives only after every
// collection has settled (live or cache fallback).
func LoadCollectionsCmd(coord *collections.Coordinator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		notices := coord.LoadAll(ctx)
		return CollectionsLoadedMsg{Notices: notices}
	}
}

// AddBookCmd creates a book and refreshes the affected collections.
func AddBookCmd(coord *collections.Coordinator, title string, status domain.ReadingStatus, rating float64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		notices, err := coord.AddBook(ctx, title, status, rating)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding book"}
		}
		return MutationDoneMsg{Op: fmt.Sprintf("Added %q", title), Notices: notices}
	}
}

// UpdateBookCmd applies a partial book update.
func UpdateBookCmd(coord *collections.Coordinator, title string, patch domain.BookPatch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		notices, err := coord.UpdateBook(ctx, title, patch)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating book"}
		}
		return MutationDoneMsg{Op: fmt.Sprintf("Updated %q", title), Notices: notices}
	}
}

// DeleteBookCmd removes a book. Its quotes and quote card stay visible.
func DeleteBookCmd(coord *collections.Coordinator, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		notices, err := coord.DeleteBook(ctx, title)
		if err != nil {
			return ErrMsg{Err: err, Context: "deleting book"}
		}
		return MutationDoneMsg{Op: fmt.Sprintf("Deleted %q", title), Notices: notices}
	}
}

// AddQuoteCmd attaches a quote to a book.
func AddQuoteCmd(coord *collections.Coordinator, quote domain.Quote) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		notices, err := coord.AddQuote(ctx, quote)
		if err != nil {
			return ErrMsg{Err: err, Context: "adding quote"}
		}
		return MutationDoneMsg{Op: fmt.Sprintf("Quote added to %q", quote.BookTitle), Notices: notices}
	}
}

// UpdateDiscussionCmd edits a quote's discussion text.
func UpdateDiscussionCmd(coord *collections.Coordinator, key domain.QuoteKey, discussion string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		notices, err := coord.UpdateDiscussion(ctx, key, discussion)
		if err != nil {
			return ErrMsg{Err: err, Context: "saving discussion"}
		}
		return MutationDoneMsg{Op: "Discussion saved", Notices: notices}
	}
}

// DeleteQuoteCmd removes a quote.
func DeleteQuoteCmd(coord *collections.Coordinator, key domain.QuoteKey) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()

		notices, err := coord.DeleteQuote(ctx, key)
		if err != nil {
			return ErrMsg{Err: err, Context: "deleting quote"}
		}
		return MutationDoneMsg{Op: "Quote deleted", Notices: notices}
	}
}

// SwitchReaderCmd persists the reader toggle and reports the new value.
func SwitchReaderCmd(reader int) tea.Cmd {
	return func() tea.Msg {
		if err := adapter.SaveActiveReader(reader); err != nil {
			return ErrMsg{Err: err, Context: "saving reader preference"}
		}
		return ReaderSwitchedMsg{Reader: reader}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
