package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ebranwell/marginalia/internal/domain"
	"github.com/ebranwell/marginalia/internal/tui/styles"
)

// BookFormMode distinguishes add from edit
type BookFormMode int

const (
	BookFormAdd BookFormMode = iota
	BookFormEdit
)

const (
	bookFieldTitle = iota
	bookFieldStatus
	bookFieldRating
	bookFieldCount
)

// BookForm is the add/edit modal for shelf entries: title, status, rating.
type BookForm struct {
	visible bool
	mode    BookFormMode

	// originalTitle is the update key in edit mode; the title field may
	// rename the book.
	originalTitle string

	title  textinput.Model
	rating textinput.Model
	status domain.ReadingStatus
	focus  int
}

// NewBookForm creates a hidden book form
func NewBookForm() BookForm {
	title := textinput.New()
	title.Placeholder = "Title..."
	title.CharLimit = 120
	title.Width = 32
	title.Prompt = ""
	title.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	title.PlaceholderStyle = styles.DimStyle

	rating := textinput.New()
	rating.Placeholder = "1.0 - 10.0"
	rating.CharLimit = 4
	rating.Width = 10
	rating.Prompt = ""
	rating.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	rating.PlaceholderStyle = styles.DimStyle

	return BookForm{
		title:  title,
		rating: rating,
		status: domain.StatusToRead,
	}
}

// ShowAdd opens the form empty for a new book
func (f *BookForm) ShowAdd() {
	f.visible = true
	f.mode = BookFormAdd
	f.originalTitle = ""
	f.title.SetValue("")
	f.rating.SetValue("")
	f.status = domain.StatusToRead
	f.setFocus(bookFieldTitle)
}

// ShowEdit opens the form pre-filled from an existing book
func (f *BookForm) ShowEdit(book domain.Book) {
	f.visible = true
	f.mode = BookFormEdit
	f.originalTitle = book.Title
	f.title.SetValue(book.Title)
	f.rating.SetValue(strconv.FormatFloat(book.Rating, 'f', 1, 64))
	f.status = book.Status
	f.setFocus(bookFieldTitle)
}

// Hide dismisses the form
func (f *BookForm) Hide() {
	f.visible = false
	f.title.Blur()
	f.rating.Blur()
}

// IsVisible returns whether the form is shown
func (f BookForm) IsVisible() bool {
	return f.visible
}

// Mode returns whether the form adds or edits
func (f BookForm) Mode() BookFormMode {
	return f.mode
}

// OriginalTitle returns the update key for edit mode
func (f BookForm) OriginalTitle() string {
	return f.originalTitle
}

// Values returns the entered title, status and parsed rating. ok is false
// when the rating field is not a number; range checks stay with the
// coordinator's validation.
func (f BookForm) Values() (title string, status domain.ReadingStatus, rating float64, ok bool) {
	title = strings.TrimSpace(f.title.Value())
	status = f.status
	rating, err := strconv.ParseFloat(strings.TrimSpace(f.rating.Value()), 64)
	return title, status, rating, err == nil
}

func (f *BookForm) setFocus(field int) {
	f.focus = field
	f.title.Blur()
	f.rating.Blur()
	switch field {
	case bookFieldTitle:
		f.title.Focus()
	case bookFieldRating:
		f.rating.Focus()
	}
}

// Update handles input events, returns (form, cmd, submitted)
func (f BookForm) Update(msg tea.Msg) (BookForm, tea.Cmd, bool) {
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
			f.setFocus((f.focus + 1) % bookFieldCount)
			return f, nil, false
		case "shift+tab", "up":
			f.setFocus((f.focus + bookFieldCount - 1) % bookFieldCount)
			return f, nil, false
		case "left", "right":
			if f.focus == bookFieldStatus {
				f.status = f.status.Next()
				return f, nil, false
			}
		}
	}

	var cmd tea.Cmd
	switch f.focus {
	case bookFieldTitle:
		f.title, cmd = f.title.Update(msg)
	case bookFieldRating:
		f.rating, cmd = f.rating.Update(msg)
	}
	return f, cmd, false
}

// View renders the book form modal
func (f BookForm) View() string {
	if !f.visible {
		return ""
	}

	heading := "Add Book"
	if f.mode == BookFormEdit {
		heading = "Edit Book"
	}

	statusLine := string(f.status)
	if f.focus == bookFieldStatus {
		statusLine = styles.AccentStyle.Render("◂ " + statusLine + " ▸")
	} else {
		statusLine = styles.SubtitleStyle.Render(statusLine)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(heading),
		fieldLabel("Title", f.focus == bookFieldTitle)+f.title.View(),
		fieldLabel("Status", f.focus == bookFieldStatus)+statusLine,
		fieldLabel("Rating", f.focus == bookFieldRating)+f.rating.View(),
		"",
		styles.DimStyle.Render("enter save · esc cancel · tab next field"),
	)

	return styles.ModalStyle.Render(content)
}

func fieldLabel(name string, focused bool) string {
	label := name + ": "
	if focused {
		return styles.AccentStyle.Render(label)
	}
	return styles.DimStyle.Render(label)
}
