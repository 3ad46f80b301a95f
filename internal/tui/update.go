package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebranwell/marginalia/internal/domain"
	"github.com/ebranwell/marginalia/internal/tui/components"
)

// handleKeyMsg routes key events: modals and confirmations swallow input
// first, then the filter, then the global bindings.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.BookForm.IsVisible() {
		return m.handleBookForm(msg)
	}
	if m.QuoteForm.IsVisible() {
		return m.handleQuoteForm(msg)
	}
	if m.Confirm != nil {
		return m.handleConfirm(msg)
	}
	if m.FilterActive {
		return m.handleFilter(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.Coordinator.Teardown()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = !m.ShowHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.FilterInput.Value() != "" {
			m.FilterInput.SetValue("")
			m.clampCursors()
		}
		m.ShowHelp = false
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		if m.Tab == TabShelf {
			m.Tab = TabQuotes
		} else {
			m.Tab = TabShelf
		}
		return m, nil

	case key.Matches(msg, Keys.Shelf):
		m.Tab = TabShelf
		return m, nil

	case key.Matches(msg, Keys.Quotes):
		m.Tab = TabQuotes
		return m, nil

	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, Keys.Home):
		m.setCursor(0)
		return m, nil

	case key.Matches(msg, Keys.End):
		m.setCursor(m.listLen() - 1)
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.FilterActive = true
		m.FilterInput.Focus()
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		m.Loading = true
		return m, tea.Batch(
			LoadCollectionsCmd(m.Coordinator),
			TickCmd(100*time.Millisecond),
		)

	case key.Matches(msg, Keys.SwitchReader):
		next := 1
		if m.ActiveReader == 1 {
			next = 2
		}
		return m, SwitchReaderCmd(next)

	case key.Matches(msg, Keys.Add):
		if m.Tab == TabShelf {
			m.BookForm.ShowAdd()
		} else {
			title := ""
			if entry := m.selectedQuoteEntry(); entry != nil {
				title = entry.Title
			}
			m.QuoteForm.ShowAdd(title)
		}
		return m, nil

	case key.Matches(msg, Keys.Edit):
		if m.Tab == TabShelf {
			if book := m.selectedBook(); book != nil {
				m.BookForm.ShowEdit(*book)
			}
		} else {
			if entry := m.selectedQuoteEntry(); entry != nil {
				m.QuoteForm.ShowDiscussion(entry.Quote)
			}
		}
		return m, nil

	case key.Matches(msg, Keys.Delete):
		return m.beginDelete()

	case key.Matches(msg, Keys.CycleStatus):
		if m.Tab != TabShelf {
			return m, nil
		}
		if book := m.selectedBook(); book != nil {
			next := book.Status.Next()
			patch := domain.BookPatch{Status: &next}
			return m, UpdateBookCmd(m.Coordinator, book.Title, patch)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleBookForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd, submitted := m.BookForm.Update(msg)
	m.BookForm = form
	if !submitted {
		return m, cmd
	}

	title, status, rating, ok := m.BookForm.Values()
	if !ok {
		return m.setStatus("Rating must be a number between 1.0 and 10.0", true)
	}

	mode := m.BookForm.Mode()
	original := m.BookForm.OriginalTitle()
	m.BookForm.Hide()

	if mode == components.BookFormAdd {
		return m, AddBookCmd(m.Coordinator, title, status, rating)
	}
	return m, UpdateBookCmd(m.Coordinator, original, m.bookPatch(original, title, status, rating))
}

// bookPatch builds a partial update carrying only the fields that changed.
func (m Model) bookPatch(original, title string, status domain.ReadingStatus, rating float64) domain.BookPatch {
	var patch domain.BookPatch
	for _, b := range m.Books {
		if b.Title != original {
			continue
		}
		if title != b.Title {
			patch.Title = &title
		}
		if status != b.Status {
			patch.Status = &status
		}
		if rating != b.Rating {
			patch.Rating = &rating
		}
		return patch
	}
	// Book vanished from the local copy; send everything and let the
	// server decide.
	patch.Title = &title
	patch.Status = &status
	patch.Rating = &rating
	return patch
}

func (m Model) handleQuoteForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, cmd, submitted := m.QuoteForm.Update(msg)
	m.QuoteForm = form
	if !submitted {
		return m, cmd
	}

	bookTitle, text, discussion := m.QuoteForm.Values()
	mode := m.QuoteForm.Mode()
	quoteKey := m.QuoteForm.Key()
	m.QuoteForm.Hide()

	if mode == components.QuoteFormDiscussion {
		return m, UpdateDiscussionCmd(m.Coordinator, quoteKey, discussion)
	}

	quote := domain.Quote{
		BookTitle:  bookTitle,
		Text:       text,
		UserID:     m.ActiveReader,
		Discussion: discussion,
	}
	return m, AddQuoteCmd(m.Coordinator, quote)
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Confirm):
		pending := m.Confirm
		m.Confirm = nil
		if pending.kind == deleteBook {
			return m, DeleteBookCmd(m.Coordinator, pending.title)
		}
		return m, DeleteQuoteCmd(m.Coordinator, pending.key)

	case key.Matches(msg, Keys.Deny):
		m.Confirm = nil
		return m, nil
	}
	return m, nil
}

func (m Model) handleFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.FilterActive = false
		m.FilterInput.Blur()
		return m, nil
	case "esc":
		m.FilterActive = false
		m.FilterInput.Blur()
		m.FilterInput.SetValue("")
		m.clampCursors()
		return m, nil
	}

	var cmd tea.Cmd
	m.FilterInput, cmd = m.FilterInput.Update(msg)
	m.clampCursors()
	return m, cmd
}

func (m Model) beginDelete() (tea.Model, tea.Cmd) {
	if m.Tab == TabShelf {
		book := m.selectedBook()
		if book == nil {
			return m, nil
		}
		m.Confirm = &pendingDelete{
			kind:   deleteBook,
			title:  book.Title,
			prompt: "Delete " + book.Title + "? Its quotes stay on the quotes tab.",
		}
		return m, nil
	}

	entry := m.selectedQuoteEntry()
	if entry == nil {
		return m, nil
	}
	m.Confirm = &pendingDelete{
		kind:   deleteQuote,
		key:    entry.Quote.Key(),
		prompt: "Delete this quote from " + entry.Title + "?",
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	m.setCursor(m.cursor() + delta)
}

func (m *Model) setCursor(pos int) {
	n := m.listLen()
	if n == 0 {
		pos = 0
	} else if pos < 0 {
		pos = 0
	} else if pos >= n {
		pos = n - 1
	}
	if m.Tab == TabShelf {
		m.ShelfCursor = pos
	} else {
		m.QuoteCursor = pos
	}
}

func (m Model) cursor() int {
	if m.Tab == TabShelf {
		return m.ShelfCursor
	}
	return m.QuoteCursor
}

func (m Model) listLen() int {
	if m.Tab == TabShelf {
		return len(m.visibleBooks())
	}
	return len(m.visibleQuoteEntries())
}
