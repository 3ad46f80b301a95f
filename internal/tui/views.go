package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ebranwell/marginalia/internal/domain"
	"github.com/ebranwell/marginalia/internal/tui/styles"
)

// View renders the whole application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.BookForm.IsVisible() {
		return m.centered(m.BookForm.View())
	}
	if m.QuoteForm.IsVisible() {
		return m.centered(m.QuoteForm.View())
	}
	if m.Confirm != nil {
		return m.centered(m.confirmView())
	}

	var sections []string
	sections = append(sections, m.headerView())

	if m.Loading {
		sections = append(sections, m.loadingView())
	} else if m.Tab == TabShelf {
		sections = append(sections, m.shelfView())
	} else {
		sections = append(sections, m.quotesView())
	}

	if m.ShowHelp {
		sections = append(sections, m.helpView())
	}
	sections = append(sections, m.statusView())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	shelfTab := styles.InactiveTabStyle.Render("Shelf")
	quotesTab := styles.InactiveTabStyle.Render("Quotes")
	if m.Tab == TabShelf {
		shelfTab = styles.ActiveTabStyle.Render("Shelf")
	} else {
		quotesTab = styles.ActiveTabStyle.Render("Quotes")
	}

	reader := styles.DimStyle.Render("reader: ") +
		styles.AccentStyle.Render(m.Cfg.ReaderName(m.ActiveReader))

	left := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.TitleStyle.Render(" marginalia "), " ", shelfTab, quotesTab)

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(reader) - 1
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + reader
}

func (m Model) loadingView() string {
	frame := styles.SpinnerFrames[m.SpinnerFrame%len(styles.SpinnerFrames)]
	line := styles.AccentStyle.Render(frame) + " Loading your shelf..."
	return lipgloss.NewStyle().Padding(1, 2).Render(line)
}

func (m Model) shelfView() string {
	books := m.visibleBooks()
	if len(books) == 0 {
		return m.emptyView("No books yet. Press 'a' to add one.")
	}

	var rows []string
	for i, book := range books {
		rows = append(rows, m.bookRow(book, i == m.ShelfCursor))
	}
	return lipgloss.NewStyle().Padding(1, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) bookRow(book domain.Book, selected bool) string {
	title := m.highlightTitle(book.Title)

	line := fmt.Sprintf("%2d  %s %s  %s",
		book.Number,
		statusDot(book.Status),
		title,
		styles.DimStyle.Render(book.FormattedRating()),
	)
	if selected {
		return styles.SelectedItemStyle.Render(line)
	}
	return styles.NormalItemStyle.Render(line)
}

// highlightTitle brightens the characters that matched the active filter
func (m Model) highlightTitle(title string) string {
	query := m.filterQuery()
	if query == "" {
		return title
	}
	matches := fuzzy.Find(query, []string{title})
	if len(matches) == 0 {
		return title
	}

	matched := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, idx := range matches[0].MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder
	for i, r := range []rune(title) {
		if matched[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteString(string(r))
		}
	}
	return b.String()
}

func (m Model) quotesView() string {
	entries := m.visibleQuoteEntries()
	if len(entries) == 0 {
		return m.emptyView("No quotes yet. Press 'a' to capture one.")
	}

	var cards []string
	lastTitle := ""
	for i, entry := range entries {
		if entry.Title != lastTitle {
			cards = append(cards, m.cardHeader(entry))
			lastTitle = entry.Title
		}
		cards = append(cards, m.quoteCard(entry, i == m.QuoteCursor))
	}
	return lipgloss.NewStyle().Padding(1, 1).Render(
		lipgloss.JoinVertical(lipgloss.Left, cards...))
}

func (m Model) cardHeader(entry quoteEntry) string {
	header := styles.TitleStyle.Render(entry.Title)
	if entry.Orphan {
		header += " " + styles.OrphanBadge
	}
	return header
}

func (m Model) quoteCard(entry quoteEntry, selected bool) string {
	text := entry.Quote.Text
	if text == "" {
		text = styles.DimStyle.Render("(no text yet)")
	} else {
		text = "“" + text + "”"
	}

	lines := []string{text}
	attribution := styles.DimStyle.Render("~ " + m.Cfg.ReaderName(entry.Quote.UserID))
	lines = append(lines, attribution)
	if entry.Quote.Discussion != "" {
		lines = append(lines, styles.SubtitleStyle.Render("› "+entry.Quote.Discussion))
	}

	card := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if selected {
		return styles.SelectedCardStyle.Render(card)
	}
	return styles.CardStyle.Render(card)
}

func (m Model) emptyView(hint string) string {
	return lipgloss.NewStyle().Padding(1, 2).Render(styles.DimStyle.Render(hint))
}

func (m Model) confirmView() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Confirm"),
		m.Confirm.prompt,
		"",
		styles.DimStyle.Render("y confirm · n cancel"),
	)
	return styles.ModalStyle.Render(content)
}

func (m Model) helpView() string {
	entries := []string{
		"j/k move", "tab switch view", "/ filter", "a add", "e edit",
		"x delete", "s cycle status", "u switch reader", "r reload", "q quit",
	}
	return lipgloss.NewStyle().Padding(0, 2).Render(
		styles.DimStyle.Render(strings.Join(entries, "  ·  ")))
}

func (m Model) statusView() string {
	if m.FilterActive || m.FilterInput.Value() != "" {
		return lipgloss.NewStyle().Padding(0, 1).Render(m.FilterInput.View())
	}
	if m.StatusMsg == "" {
		return lipgloss.NewStyle().Padding(0, 1).Render(
			styles.DimStyle.Render("? help"))
	}
	style := styles.SuccessStyle
	if m.StatusIsErr {
		style = styles.ErrorStyle
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(style.Render(m.StatusMsg))
}

func (m Model) centered(content string) string {
	if m.Width == 0 || m.Height == 0 {
		return content
	}
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
}

func statusDot(status domain.ReadingStatus) string {
	switch status {
	case domain.StatusReading:
		return styles.ReadingDot
	case domain.StatusCompleted:
		return styles.CompletedDot
	default:
		return styles.ToReadDot
	}
}
