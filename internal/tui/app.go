package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebranwell/marginalia/internal/adapter"
	"github.com/ebranwell/marginalia/internal/collections"
	"github.com/ebranwell/marginalia/internal/domain"
	"github.com/ebranwell/marginalia/internal/search"
	"github.com/ebranwell/marginalia/internal/tui/components"
)

// Tab identifies the two main views
type Tab int

const (
	TabShelf Tab = iota
	TabQuotes
)

const statusDuration = 4 * time.Second

// deleteKind distinguishes what a pending confirmation would remove
type deleteKind int

const (
	deleteBook deleteKind = iota
	deleteQuote
)

// pendingDelete holds a delete awaiting y/n confirmation
type pendingDelete struct {
	kind   deleteKind
	title  string          // book delete
	key    domain.QuoteKey // quote delete
	prompt string
}

// quoteEntry is one selectable row on the quotes tab: a quote under its
// card title. Orphan marks cards whose title no longer matches any book.
type quoteEntry struct {
	Title  string
	Quote  domain.Quote
	Orphan bool
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Coordinator *collections.Coordinator
	Cfg         *adapter.Config

	// Rendering copies of the collection store. Refreshed from the store
	// after every load/mutation message; never mutated directly.
	Books       []domain.Book
	Quotes      []domain.Quote
	QuoteTitles []string
	Loading     bool

	// UI components
	BookForm  components.BookForm
	QuoteForm components.QuoteForm

	// UI state
	Tab          Tab
	ShelfCursor  int
	QuoteCursor  int
	FilterActive bool
	FilterInput  textinput.Model
	Confirm      *pendingDelete
	ActiveReader int
	ShowHelp     bool

	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int

	Width  int
	Height int
	Ready  bool
}

// NewModel creates a new application model
func NewModel(coord *collections.Coordinator, cfg *adapter.Config) Model {
	filter := textinput.New()
	filter.Placeholder = "filter..."
	filter.CharLimit = 60
	filter.Width = 24
	filter.Prompt = "/"

	reader := cfg.Preferences.ActiveReader
	if reader != 1 && reader != 2 {
		reader = 1
	}

	return Model{
		Coordinator:  coord,
		Cfg:          cfg,
		Loading:      true,
		BookForm:     components.NewBookForm(),
		QuoteForm:    components.NewQuoteForm(),
		FilterInput:  filter,
		ActiveReader: reader,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadCollectionsCmd(m.Coordinator),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		if m.Loading {
			m.SpinnerFrame++
			return m, TickCmd(100 * time.Millisecond)
		}
		return m, nil

	case CollectionsLoadedMsg:
		m.Loading = false
		m.syncFromStore()
		if len(msg.Notices) > 0 {
			return m, m.noticeStatus(msg.Notices)
		}
		return m, nil

	case MutationDoneMsg:
		m.syncFromStore()
		if len(msg.Notices) > 0 {
			return m, m.noticeStatus(msg.Notices)
		}
		return m.setStatus(msg.Op, false)

	case ReaderSwitchedMsg:
		m.ActiveReader = msg.Reader
		return m.setStatus("Quoting as "+m.Cfg.ReaderName(msg.Reader), false)

	case ErrMsg:
		return m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// syncFromStore refreshes the rendering copies from the collection store and
// clamps cursors against the new sizes.
func (m *Model) syncFromStore() {
	state := m.Coordinator.State()
	m.Books = state.Books()
	m.Quotes = state.Quotes()
	m.QuoteTitles = state.QuoteTitles()
	m.Loading = state.Loading()
	m.clampCursors()
}

func (m *Model) clampCursors() {
	if n := len(m.visibleBooks()); m.ShelfCursor >= n {
		m.ShelfCursor = max(0, n-1)
	}
	if n := len(m.visibleQuoteEntries()); m.QuoteCursor >= n {
		m.QuoteCursor = max(0, n-1)
	}
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(statusDuration)
}

// noticeStatus surfaces the first fetch-fallback notice in the status bar.
func (m *Model) noticeStatus(notices []collections.Notice) tea.Cmd {
	n := notices[0]
	text := "Couldn't refresh " + string(n.Collection)
	if n.FromCache {
		text += ", showing cached copy"
	} else {
		text += ", showing previous data"
	}
	m.StatusMsg = text
	m.StatusIsErr = true
	return ClearStatusCmd(statusDuration)
}

// visibleBooks applies the active filter to the shelf, preserving server
// display order for an empty query and rank order otherwise.
func (m Model) visibleBooks() []domain.Book {
	query := m.filterQuery()
	if query == "" {
		return m.Books
	}
	titles := make([]string, len(m.Books))
	for i, b := range m.Books {
		titles[i] = b.Title
	}
	var out []domain.Book
	for _, idx := range search.Filter(query, titles) {
		out = append(out, m.Books[idx])
	}
	return out
}

// visibleQuoteEntries flattens the quote cards into selectable rows. Card
// order follows the server's books-with-quotes list, which decides which
// cards exist, including orphans of deleted books.
func (m Model) visibleQuoteEntries() []quoteEntry {
	query := m.filterQuery()
	shelf := make(map[string]bool, len(m.Books))
	for _, b := range m.Books {
		shelf[b.Title] = true
	}

	var entries []quoteEntry
	for _, title := range m.QuoteTitles {
		for _, q := range m.Quotes {
			if q.BookTitle != title {
				continue
			}
			if query != "" && !search.Matches(query, q.BookTitle+" "+q.Text) {
				continue
			}
			entries = append(entries, quoteEntry{
				Title:  title,
				Quote:  q,
				Orphan: !shelf[title],
			})
		}
	}
	return entries
}

func (m Model) filterQuery() string {
	if !m.FilterActive && m.FilterInput.Value() == "" {
		return ""
	}
	return m.FilterInput.Value()
}

func (m Model) selectedBook() *domain.Book {
	books := m.visibleBooks()
	if m.ShelfCursor < 0 || m.ShelfCursor >= len(books) {
		return nil
	}
	return &books[m.ShelfCursor]
}

func (m Model) selectedQuoteEntry() *quoteEntry {
	entries := m.visibleQuoteEntries()
	if m.QuoteCursor < 0 || m.QuoteCursor >= len(entries) {
		return nil
	}
	return &entries[m.QuoteCursor]
}
