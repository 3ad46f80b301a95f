package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebranwell/marginalia/internal/adapter"
	"github.com/ebranwell/marginalia/internal/domain"
)

func testModel() Model {
	cfg := adapter.DefaultConfig()
	m := NewModel(nil, cfg)
	m.Loading = false
	m.Books = []domain.Book{
		{Title: "Dune", Status: domain.StatusReading, Rating: 8.5, Number: 1},
		{Title: "Hyperion", Status: domain.StatusToRead, Rating: 9.0, Number: 2},
	}
	m.Quotes = []domain.Quote{
		{BookTitle: "Dune", Text: "Fear is the mind-killer.", UserID: 1},
		{BookTitle: "Mort", Text: "There is no justice. There is just us.", UserID: 2},
	}
	m.QuoteTitles = []string{"Dune", "Mort"}
	return m
}

func TestQuoteEntriesFollowTitlesList(t *testing.T) {
	m := testModel()

	entries := m.visibleQuoteEntries()

	require.Len(t, entries, 2)
	assert.Equal(t, "Dune", entries[0].Title)
	assert.Equal(t, "Mort", entries[1].Title)
}

func TestDeletedBookCardIsMarkedOrphan(t *testing.T) {
	m := testModel()

	entries := m.visibleQuoteEntries()

	require.Len(t, entries, 2)
	assert.False(t, entries[0].Orphan, "Dune is still on the shelf")
	assert.True(t, entries[1].Orphan, "Mort was removed from the shelf but keeps its card")
}

func TestFilterNarrowsShelf(t *testing.T) {
	m := testModel()
	m.FilterInput.SetValue("hyp")

	books := m.visibleBooks()

	require.Len(t, books, 1)
	assert.Equal(t, "Hyperion", books[0].Title)
}

func TestFilterNarrowsQuotes(t *testing.T) {
	m := testModel()
	m.FilterInput.SetValue("justice")

	entries := m.visibleQuoteEntries()

	require.Len(t, entries, 1)
	assert.Equal(t, "Mort", entries[0].Title)
}

func TestBookPatchCarriesOnlyChanges(t *testing.T) {
	m := testModel()

	patch := m.bookPatch("Dune", "Dune", domain.StatusCompleted, 8.5)

	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Rating)
	require.NotNil(t, patch.Status)
	assert.Equal(t, domain.StatusCompleted, *patch.Status)
}

func TestBookPatchRename(t *testing.T) {
	m := testModel()

	patch := m.bookPatch("Dune", "Dune Messiah", domain.StatusReading, 8.5)

	require.NotNil(t, patch.Title)
	assert.Equal(t, "Dune Messiah", *patch.Title)
	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.Rating)
}

func TestCursorClampsToFilteredList(t *testing.T) {
	m := testModel()
	m.ShelfCursor = 1
	m.FilterInput.SetValue("dune")

	m.clampCursors()

	assert.Equal(t, 0, m.ShelfCursor)
}
