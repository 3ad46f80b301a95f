package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebranwell/marginalia/internal/domain"
	"github.com/ebranwell/marginalia/internal/store"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	snaps, err := store.Open("")
	require.NoError(t, err)
	return NewState(snaps, nil)
}

func TestStateStartsLoading(t *testing.T) {
	state := newTestState(t)

	assert.True(t, state.Loading())
	state.FinishLoad()
	assert.False(t, state.Loading())
}

func TestLoadReplacesWholesale(t *testing.T) {
	state := newTestState(t)

	state.LoadBooks([]domain.Book{{Title: "Dune"}, {Title: "Hyperion"}})
	state.LoadBooks([]domain.Book{{Title: "Solaris"}})

	books := state.Books()
	require.Len(t, books, 1)
	assert.Equal(t, "Solaris", books[0].Title)
}

func TestAccessorsReturnCopies(t *testing.T) {
	state := newTestState(t)
	state.LoadBooks([]domain.Book{{Title: "Dune"}})
	state.LoadQuoteTitles([]string{"Dune"})

	state.Books()[0].Title = "mutated"
	state.QuoteTitles()[0] = "mutated"

	assert.Equal(t, "Dune", state.Books()[0].Title)
	assert.Equal(t, "Dune", state.QuoteTitles()[0])
}

func TestQuotesFor(t *testing.T) {
	state := newTestState(t)
	state.LoadQuotes([]domain.Quote{
		{BookTitle: "Dune", Text: "first"},
		{BookTitle: "Hyperion", Text: "other"},
		{BookTitle: "Dune", Text: "second"},
	})

	quotes := state.QuotesFor("Dune")
	require.Len(t, quotes, 2)
	assert.Equal(t, "first", quotes[0].Text)
	assert.Equal(t, "second", quotes[1].Text)
	assert.Empty(t, state.QuotesFor("Solaris"))
}

func TestFallbackRestoresSnapshot(t *testing.T) {
	state := newTestState(t)

	// A successful load seeds the snapshot; a later empty load loses it
	// from the live state but not from the cache.
	state.LoadQuotes([]domain.Quote{{BookTitle: "Dune", Text: "x", UserID: 1}})
	state.quotes = nil

	require.True(t, state.FallbackQuotes())
	quotes := state.Quotes()
	require.Len(t, quotes, 1)
	assert.Equal(t, "Dune", quotes[0].BookTitle)
}

func TestFallbackWithoutSnapshotKeepsPrevious(t *testing.T) {
	state := newTestState(t)
	state.books = []domain.Book{{Title: "held over"}}

	assert.False(t, state.FallbackBooks())
	require.Len(t, state.Books(), 1)
	assert.Equal(t, "held over", state.Books()[0].Title)
}
