package collections

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebranwell/marginalia/internal/domain"
	"github.com/ebranwell/marginalia/internal/store"
)

// fakeRepo is a scriptable Repository that counts fetches per collection, so
// tests can assert exactly which collections a mutation refreshed.
type fakeRepo struct {
	mu sync.Mutex

	books  []domain.Book
	quotes []domain.Quote
	titles []string

	booksCalls  int
	quotesCalls int
	titlesCalls int

	booksErr  error
	quotesErr error
	titlesErr error

	createBookErr  error
	updateBookErr  error
	deleteBookErr  error
	createQuoteErr error
	updateQuoteErr error
	deleteQuoteErr error

	// gate, when non-nil, blocks every fetch until closed
	gate chan struct{}
}

func (f *fakeRepo) wait() {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeRepo) GetBooks(ctx context.Context) ([]domain.Book, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.booksCalls++
	if f.booksErr != nil {
		return nil, f.booksErr
	}
	return f.books, nil
}

func (f *fakeRepo) GetQuotes(ctx context.Context) ([]domain.Quote, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotesCalls++
	if f.quotesErr != nil {
		return nil, f.quotesErr
	}
	return f.quotes, nil
}

func (f *fakeRepo) GetQuotesForBook(ctx context.Context, bookTitle string) ([]domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Quote
	for _, q := range f.quotes {
		if q.BookTitle == bookTitle {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetBooksWithQuotes(ctx context.Context) ([]string, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titlesCalls++
	if f.titlesErr != nil {
		return nil, f.titlesErr
	}
	return f.titles, nil
}

func (f *fakeRepo) CreateBook(ctx context.Context, title string, status domain.ReadingStatus, rating float64) (domain.Book, error) {
	if f.createBookErr != nil {
		return domain.Book{}, f.createBookErr
	}
	return domain.Book{Title: title, Status: status, Rating: rating}, nil
}

func (f *fakeRepo) UpdateBook(ctx context.Context, title string, patch domain.BookPatch) (domain.Book, error) {
	if f.updateBookErr != nil {
		return domain.Book{}, f.updateBookErr
	}
	return domain.Book{Title: title}, nil
}

func (f *fakeRepo) DeleteBook(ctx context.Context, title string) error {
	return f.deleteBookErr
}

func (f *fakeRepo) CreateQuote(ctx context.Context, quote domain.Quote) (domain.Quote, error) {
	if f.createQuoteErr != nil {
		return domain.Quote{}, f.createQuoteErr
	}
	return quote, nil
}

func (f *fakeRepo) UpdateQuote(ctx context.Context, key domain.QuoteKey, patch domain.QuotePatch) (domain.Quote, error) {
	if f.updateQuoteErr != nil {
		return domain.Quote{}, f.updateQuoteErr
	}
	return domain.Quote{BookTitle: key.BookTitle, Text: key.Text}, nil
}

func (f *fakeRepo) DeleteQuote(ctx context.Context, key domain.QuoteKey) error {
	return f.deleteQuoteErr
}

func (f *fakeRepo) counts() (books, quotes, titles int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.booksCalls, f.quotesCalls, f.titlesCalls
}

func newTestCoordinator(t *testing.T, repo *fakeRepo) (*Coordinator, *State) {
	t.Helper()
	snaps, err := store.Open("")
	require.NoError(t, err)
	state := NewState(snaps, nil)
	return NewCoordinator(repo, state, nil), state
}

func seededRepo() *fakeRepo {
	return &fakeRepo{
		books: []domain.Book{
			{Title: "Dune", Status: domain.StatusReading, Rating: 8.5, Number: 1},
			{Title: "Hyperion", Status: domain.StatusToRead, Rating: 9.0, Number: 2},
		},
		quotes: []domain.Quote{
			{BookTitle: "Dune", Text: "Fear is the mind-killer.", UserID: 1},
			{BookTitle: "Hyperion", Text: "In the beginning was the Word.", UserID: 2},
		},
		titles: []string{"Dune", "Hyperion"},
	}
}

func TestLoadAllPopulatesState(t *testing.T) {
	repo := seededRepo()
	coord, state := newTestCoordinator(t, repo)

	notices := coord.LoadAll(context.Background())

	assert.Empty(t, notices)
	assert.False(t, state.Loading())
	assert.Len(t, state.Books(), 2)
	assert.Len(t, state.Quotes(), 2)
	assert.Equal(t, []string{"Dune", "Hyperion"}, state.QuoteTitles())
}

func TestLoadAllWaitsForAllCollections(t *testing.T) {
	repo := seededRepo()
	repo.gate = make(chan struct{})
	coord, state := newTestCoordinator(t, repo)

	loadDone := make(chan struct{})
	go func() {
		coord.LoadAll(context.Background())
		close(loadDone)
	}()

	// Nothing may be applied while any fetch is still in flight.
	time.Sleep(50 * time.Millisecond)
	assert.True(t, state.Loading())
	assert.Empty(t, state.Books())
	assert.Empty(t, state.Quotes())
	assert.Empty(t, state.QuoteTitles())

	close(repo.gate)

	select {
	case <-loadDone:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle after fetches unblocked")
	}
	assert.False(t, state.Loading())
	assert.Len(t, state.Books(), 2)
}

func TestLoadAllFallsBackToSnapshot(t *testing.T) {
	repo := seededRepo()
	coord, state := newTestCoordinator(t, repo)

	// First load succeeds and seeds the snapshot cache.
	require.Empty(t, coord.LoadAll(context.Background()))

	// Server goes away; books fetch fails but quotes and titles survive.
	repo.mu.Lock()
	repo.booksErr = domain.ErrServerOffline
	repo.mu.Unlock()

	notices := coord.LoadAll(context.Background())

	require.Len(t, notices, 1)
	assert.Equal(t, domain.CollectionBooks, notices[0].Collection)
	assert.True(t, notices[0].FromCache)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, notices[0].Err, &fetchErr)
	assert.ErrorIs(t, fetchErr, domain.ErrServerOffline)

	// The cached copy renders, not an empty shelf.
	assert.Len(t, state.Books(), 2)
	assert.Equal(t, "Dune", state.Books()[0].Title)
}

func TestLoadAllNoSnapshotKeepsPreviousValue(t *testing.T) {
	repo := seededRepo()
	repo.booksErr = domain.ErrServerOffline
	coord, state := newTestCoordinator(t, repo)

	notices := coord.LoadAll(context.Background())

	require.Len(t, notices, 1)
	assert.False(t, notices[0].FromCache)
	assert.Empty(t, state.Books())
	// The other two collections still applied.
	assert.Len(t, state.Quotes(), 2)
	assert.False(t, state.Loading())
}

func TestTeardownDiscardsInFlightLoad(t *testing.T) {
	repo := seededRepo()
	repo.gate = make(chan struct{})
	coord, state := newTestCoordinator(t, repo)

	loadDone := make(chan struct{})
	go func() {
		coord.LoadAll(context.Background())
		close(loadDone)
	}()

	coord.Teardown()
	close(repo.gate)

	select {
	case <-loadDone:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle")
	}

	// Results arrived after teardown: nothing may be applied.
	assert.Empty(t, state.Books())
	assert.Empty(t, state.Quotes())
	assert.Empty(t, state.QuoteTitles())
	assert.True(t, state.Loading())
}

func TestAddBookRefreshesBooksAndTitles(t *testing.T) {
	repo := seededRepo()
	coord, _ := newTestCoordinator(t, repo)

	notices, err := coord.AddBook(context.Background(), "Solaris", domain.StatusToRead, 7.0)

	require.NoError(t, err)
	assert.Empty(t, notices)
	books, quotes, titles := repo.counts()
	assert.Equal(t, 1, books)
	assert.Equal(t, 0, quotes)
	assert.Equal(t, 1, titles)
}

func TestUpdateBookRefreshesBooksAndTitles(t *testing.T) {
	repo := seededRepo()
	coord, _ := newTestCoordinator(t, repo)

	status := domain.StatusCompleted
	_, err := coord.UpdateBook(context.Background(), "Dune", domain.BookPatch{Status: &status})

	require.NoError(t, err)
	books, quotes, titles := repo.counts()
	assert.Equal(t, 1, books)
	assert.Equal(t, 0, quotes)
	assert.Equal(t, 1, titles)
}

func TestDeleteBookRefreshesBooksOnly(t *testing.T) {
	repo := seededRepo()
	coord, state := newTestCoordinator(t, repo)
	require.Empty(t, coord.LoadAll(context.Background()))

	// The server keeps Dune's quotes after the delete; the card must too.
	repo.mu.Lock()
	repo.books = repo.books[1:]
	repo.mu.Unlock()
	booksBefore, quotesBefore, titlesBefore := repo.counts()

	notices, err := coord.DeleteBook(context.Background(), "Dune")

	require.NoError(t, err)
	assert.Empty(t, notices)

	books, quotes, titles := repo.counts()
	assert.Equal(t, booksBefore+1, books)
	assert.Equal(t, quotesBefore, quotes, "quotes must not be refetched on book delete")
	assert.Equal(t, titlesBefore, titles, "books-with-quotes must not be refetched on book delete")

	// Orphaned card survives: the titles list still includes the deleted book.
	assert.Equal(t, []string{"Dune", "Hyperion"}, state.QuoteTitles())
	assert.Len(t, state.QuotesFor("Dune"), 1)
	assert.Len(t, state.Books(), 1)
}

func TestAddQuoteRefreshesQuotesAndTitles(t *testing.T) {
	repo := seededRepo()
	coord, _ := newTestCoordinator(t, repo)

	quote := domain.Quote{BookTitle: "Dune", Text: "The sleeper must awaken.", UserID: 2}
	_, err := coord.AddQuote(context.Background(), quote)

	require.NoError(t, err)
	books, quotes, titles := repo.counts()
	assert.Equal(t, 0, books)
	assert.Equal(t, 1, quotes)
	assert.Equal(t, 1, titles)
}

func TestUpdateDiscussionRefreshesQuotesOnly(t *testing.T) {
	repo := seededRepo()
	coord, state := newTestCoordinator(t, repo)
	require.Empty(t, coord.LoadAll(context.Background()))

	booksBefore, _, titlesBefore := repo.counts()
	booksState := state.Books()
	titlesState := state.QuoteTitles()

	key := domain.QuoteKey{BookTitle: "Dune", Text: "Fear is the mind-killer."}
	_, err := coord.UpdateDiscussion(context.Background(), key, "Bene Gesserit litany")

	require.NoError(t, err)
	books, quotes, titles := repo.counts()
	assert.Equal(t, booksBefore, books)
	assert.Equal(t, 2, quotes)
	assert.Equal(t, titlesBefore, titles)

	// Untouched collections are byte-for-byte what they were.
	assert.Equal(t, booksState, state.Books())
	assert.Equal(t, titlesState, state.QuoteTitles())
}

func TestDeleteQuoteRefreshesQuotesAndTitles(t *testing.T) {
	repo := seededRepo()
	coord, state := newTestCoordinator(t, repo)
	require.Empty(t, coord.LoadAll(context.Background()))

	// Deleting Hyperion's only quote drops its title server-side.
	repo.mu.Lock()
	repo.quotes = repo.quotes[:1]
	repo.titles = []string{"Dune"}
	repo.mu.Unlock()

	key := domain.QuoteKey{BookTitle: "Hyperion", Text: "In the beginning was the Word."}
	_, err := coord.DeleteQuote(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, state.QuoteTitles())
	assert.Len(t, state.Quotes(), 1)
}

func TestFailedMutationRefreshesNothing(t *testing.T) {
	repo := seededRepo()
	coord, state := newTestCoordinator(t, repo)
	require.Empty(t, coord.LoadAll(context.Background()))

	booksBefore, quotesBefore, titlesBefore := repo.counts()
	booksState := state.Books()

	repo.createBookErr = errors.New("duplicate title")
	_, err := coord.AddBook(context.Background(), "Dune", domain.StatusToRead, 5.0)

	var mutErr *domain.MutationError
	require.ErrorAs(t, err, &mutErr)

	books, quotes, titles := repo.counts()
	assert.Equal(t, booksBefore, books)
	assert.Equal(t, quotesBefore, quotes)
	assert.Equal(t, titlesBefore, titles)
	assert.Equal(t, booksState, state.Books())
}

func TestRefreshFailureFallsBackToCache(t *testing.T) {
	repo := seededRepo()
	coord, state := newTestCoordinator(t, repo)
	require.Empty(t, coord.LoadAll(context.Background()))

	repo.mu.Lock()
	repo.booksErr = domain.ErrServerOffline
	repo.mu.Unlock()

	notices, err := coord.DeleteBook(context.Background(), "Dune")

	require.NoError(t, err, "a failed refresh is a degradation, not a mutation failure")
	require.Len(t, notices, 1)
	assert.Equal(t, domain.CollectionBooks, notices[0].Collection)
	assert.True(t, notices[0].FromCache)
	assert.Len(t, state.Books(), 2)
}

func TestValidation(t *testing.T) {
	repo := seededRepo()
	coord, _ := newTestCoordinator(t, repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func() error
		field string
	}{
		{
			name:  "empty book title",
			call:  func() error { _, err := coord.AddBook(ctx, "  ", domain.StatusToRead, 5.0); return err },
			field: "title",
		},
		{
			name:  "rating below range",
			call:  func() error { _, err := coord.AddBook(ctx, "Solaris", domain.StatusToRead, 0.5); return err },
			field: "rating",
		},
		{
			name:  "rating above range",
			call:  func() error { _, err := coord.AddBook(ctx, "Solaris", domain.StatusToRead, 10.5); return err },
			field: "rating",
		},
		{
			name:  "unknown status",
			call:  func() error { _, err := coord.AddBook(ctx, "Solaris", "Abandoned", 5.0); return err },
			field: "status",
		},
		{
			name: "empty patch",
			call: func() error {
				_, err := coord.UpdateBook(ctx, "Dune", domain.BookPatch{})
				return err
			},
			field: "book",
		},
		{
			name: "empty quote text",
			call: func() error {
				_, err := coord.AddQuote(ctx, domain.Quote{BookTitle: "Dune", Text: " ", UserID: 1})
				return err
			},
			field: "text",
		},
		{
			name: "quote without reader",
			call: func() error {
				_, err := coord.AddQuote(ctx, domain.Quote{BookTitle: "Dune", Text: "x", UserID: 0})
				return err
			},
			field: "user_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var valErr *domain.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)

			// Validation failures never reach the server.
			books, quotes, titles := repo.counts()
			assert.Zero(t, books)
			assert.Zero(t, quotes)
			assert.Zero(t, titles)
		})
	}
}
