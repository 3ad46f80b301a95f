package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ebranwell/marginalia/internal/domain"
	"github.com/ebranwell/marginalia/internal/tui/styles"
)

// QuoteFormMode distinguishes adding a quote from editing a discussion
type QuoteFormMode int

const (
	QuoteFormAdd QuoteFormMode = iota
	QuoteFormDiscussion
)

const (
	quoteFieldBook = iota
	quoteFieldText
	quoteFieldDiscussion
	quoteFieldCount
)

// QuoteForm is the modal for attaching a quote to a book or editing a
// quote's discussion. In discussion mode the quote identity is fixed and
// only the discussion field is editable.
type QuoteForm struct {
	visible bool
	mode    QuoteFormMode

	// key identifies the quote being discussed in QuoteFormDiscussion mode
	key domain.QuoteKey

	book       textinput.Model
	text       textinput.Model
	discussion textinput.Model
	focus      int
}

// NewQuoteForm creates a hidden quote form
func NewQuoteForm() QuoteForm {
	mk := func(placeholder string, limit, width int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.Width = width
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		ti.PlaceholderStyle = styles.DimStyle
		return ti
	}

	return QuoteForm{
		book:       mk("Book title...", 120, 36),
		text:       mk("Quote text...", 500, 36),
		discussion: mk("Discussion (optional)...", 500, 36),
	}
}

// ShowAdd opens the form for a new quote, optionally pre-filled with the
// selected book's title.
func (f *QuoteForm) ShowAdd(bookTitle string) {
	f.visible = true
	f.mode = QuoteFormAdd
	f.key = domain.QuoteKey{}
	f.book.SetValue(bookTitle)
	f.text.SetValue("")
	f.discussion.SetValue("")
	if bookTitle == "" {
		f.setFocus(quoteFieldBook)
	} else {
		f.setFocus(quoteFieldText)
	}
}

// ShowDiscussion opens the form to edit an existing quote's discussion
func (f *QuoteForm) ShowDiscussion(quote domain.Quote) {
	f.visible = true
	f.mode = QuoteFormDiscussion
	f.key = quote.Key()
	f.book.SetValue(quote.BookTitle)
	f.text.SetValue(quote.Text)
	f.discussion.SetValue(quote.Discussion)
	f.setFocus(quoteFieldDiscussion)
}

// Hide dismisses the form
func (f *QuoteForm) Hide() {
	f.visible = false
	f.book.Blur()
	f.text.Blur()
	f.discussion.Blur()
}

// IsVisible returns whether the form is shown
func (f QuoteForm) IsVisible() bool {
	return f.visible
}

// Mode returns whether the form adds a quote or edits a discussion
func (f QuoteForm) Mode() QuoteFormMode {
	return f.mode
}

// Key returns the identity of the quote being discussed
func (f QuoteForm) Key() domain.QuoteKey {
	return f.key
}

// Values returns the entered book title, quote text and discussion
func (f QuoteForm) Values() (bookTitle, text, discussion string) {
	return strings.TrimSpace(f.book.Value()), strings.TrimSpace(f.text.Value()), strings.TrimSpace(f.discussion.Value())
}

func (f *QuoteForm) setFocus(field int) {
	f.focus = field
	f.book.Blur()
	f.text.Blur()
	f.discussion.Blur()
	switch field {
	case quoteFieldBook:
		f.book.Focus()
	case quoteFieldText:
		f.text.Focus()
	case quoteFieldDiscussion:
		f.discussion.Focus()
	}
}

// Update handles input events, returns (form, cmd, submitted)
func (f QuoteForm) Update(msg tea.Msg) (QuoteForm, tea.Cmd, bool) {
	if !f.visible {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return f, nil, true
		case "esc":
			f.Hide()
			return f, nil, false
		case "tab", "down":
			if f.mode == QuoteFormAdd {
				f.setFocus((f.focus + 1) % quoteFieldCount)
			}
			return f, nil, false
		case "shift+tab", "up":
			if f.mode == QuoteFormAdd {
				f.setFocus((f.focus + quoteFieldCount - 1) % quoteFieldCount)
			}
			return f, nil, false
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case quoteFieldBook:
		f.book, cmd = f.book.Update(msg)
	case quoteFieldText:
		f.text, cmd = f.text.Update(msg)
	case quoteFieldDiscussion:
		f.discussion, cmd = f.discussion.Update(msg)
	}
	return f, cmd, false
}

// View renders the quote form modal
func (f QuoteForm) View() string {
	if !f.visible {
		return ""
	}

	heading := "Add Quote"
	if f.mode == QuoteFormDiscussion {
		heading = "Edit Discussion"
	}

	var rows []string
	rows = append(rows, styles.ModalTitleStyle.Render(heading))

	if f.mode == QuoteFormAdd {
		rows = append(rows,
			fieldLabel("Book", f.focus == quoteFieldBook)+f.book.View(),
			fieldLabel("Quote", f.focus == quoteFieldText)+f.text.View(),
		)
	} else {
		// Identity is fixed; show it for context only.
		rows = append(rows,
			styles.DimStyle.Render("Book:  ")+styles.SubtitleStyle.Render(f.book.Value()),
			styles.DimStyle.Render("Quote: ")+styles.SubtitleStyle.Render(truncate(f.text.Value(), 36)),
		)
	}

	rows = append(rows,
		fieldLabel("Notes", f.focus == quoteFieldDiscussion)+f.discussion.View(),
		"",
		styles.DimStyle.Render("enter save · esc cancel"),
	)

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
