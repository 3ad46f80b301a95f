package collections

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/ebranwell/marginalia/internal/domain"
)

// Notice reports a non-fatal degradation the user should see: a collection
// fetch failed and the client fell back to its cached or previous value.
type Notice struct {
	Collection domain.Collection
	FromCache  bool // true when a cached snapshot was applied
	Err        error
}

// Coordinator decides which collections to refresh after each mutation and
// guarantees the initial load applies atomically. It is the only writer to
// State.
type Coordinator struct {
	repo   domain.Repository
	state  *State
	logger *slog.Logger

	// active guards against applying results after the consuming view is
	// torn down. Checked once per settled load, before any state mutation.
	active atomic.Bool
}

// NewCoordinator creates a coordinator in the active state.
func NewCoordinator(repo domain.Repository, state *State, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{repo: repo, state: state, logger: logger}
	c.active.Store(true)
	return c
}

// State returns the collection store the coordinator feeds.
func (c *Coordinator) State() *State {
	return c.state
}

// Teardown marks the consuming view gone. In-flight loads settle but their
// results are discarded without touching the store.
func (c *Coordinator) Teardown() {
	c.active.Store(false)
}

// LoadAll fetches the three collections concurrently, waits for all of them
// to settle, and applies the results in one pass: live data where the fetch
// succeeded, cached snapshot where it failed. The loading flag stays true
// until every collection has been handled, so the UI never renders a
// half-loaded state.
func (c *Coordinator) LoadAll(ctx context.Context) []Notice {
	var (
		books     []domain.Book
		quotes    []domain.Quote
		titles    []string
		booksErr  error
		quotesErr error
		titlesErr error
	)

	done := make(chan struct{}, 3)
	go func() {
		books, booksErr = c.repo.GetBooks(ctx)
		done <- struct{}{}
	}()
	go func() {
		quotes, quotesErr = c.repo.GetQuotes(ctx)
		done <- struct{}{}
	}()
	go func() {
		titles, titlesErr = c.repo.GetBooksWithQuotes(ctx)
		done <- struct{}{}
	}()

	// Fan-in barrier: all three settle before anything is applied.
	for i := 0; i < 3; i++ {
		<-done
	}

	if !c.active.Load() {
		c.logger.Debug("initial load discarded, view torn down")
		return nil
	}

	var notices []Notice
	if booksErr != nil {
		notices = append(notices, c.fallback(domain.CollectionBooks, booksErr))
	} else {
		c.state.LoadBooks(books)
	}
	if quotesErr != nil {
		notices = append(notices, c.fallback(domain.CollectionQuotes, quotesErr))
	} else {
		c.state.LoadQuotes(quotes)
	}
	if titlesErr != nil {
		notices = append(notices, c.fallback(domain.CollectionQuoteTitles, titlesErr))
	} else {
		c.state.LoadQuoteTitles(titles)
	}

	c.state.FinishLoad()
	c.logger.Info("initial load settled",
		"books", len(c.state.Books()),
		"quotes", len(c.state.Quotes()),
		"fallbacks", len(notices))
	return notices
}

// AddBook creates a book and refreshes books + books-with-quotes. The server
// seeds a blank quote for every new book, which is why the titles list can
// change here.
func (c *Coordinator) AddBook(ctx context.Context, title string, status domain.ReadingStatus, rating float64) ([]Notice, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}

	if _, err := c.repo.CreateBook(ctx, strings.TrimSpace(title), status, rating); err != nil {
		return nil, &domain.MutationError{Op: "add book", Err: err}
	}
	return c.refresh(ctx, domain.CollectionBooks, domain.CollectionQuoteTitles), nil
}

// UpdateBook applies a partial update and refreshes books + books-with-quotes.
// A title rename changes the book's join identity; quotes under the old title
// become orphans until the server says otherwise.
func (c *Coordinator) UpdateBook(ctx context.Context, title string, patch domain.BookPatch) ([]Notice, error) {
	if patch.Empty() {
		return nil, &domain.ValidationError{Field: "book", Reason: "nothing to update"}
	}
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil {
		if err := validateStatus(*patch.Status); err != nil {
			return nil, err
		}
	}
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}

	if _, err := c.repo.UpdateBook(ctx, title, patch); err != nil {
		return nil, &domain.MutationError{Op: "update book", Err: err}
	}
	return c.refresh(ctx, domain.CollectionBooks, domain.CollectionQuoteTitles), nil
}

// DeleteBook removes a book and refreshes books ONLY. Books-with-quotes is
// deliberately left alone: the titles list reflects quote existence, not book
// existence, and refreshing it here would make the orphaned quote card
// disappear. This is a hard requirement, not an oversight.
func (c *Coordinator) DeleteBook(ctx context.Context, title string) ([]Notice, error) {
	if err := c.repo.DeleteBook(ctx, title); err != nil {
		return nil, &domain.MutationError{Op: "delete book", Err: err}
	}
	return c.refresh(ctx, domain.CollectionBooks), nil
}

// AddQuote creates a quote and refreshes quotes + books-with-quotes.
func (c *Coordinator) AddQuote(ctx context.Context, quote domain.Quote) ([]Notice, error) {
	if err := validateTitle(quote.BookTitle); err != nil {
		return nil, err
	}
	if strings.TrimSpace(quote.Text) == "" {
		return nil, &domain.ValidationError{Field: "text", Reason: "quote text cannot be empty"}
	}
	if quote.UserID != 1 && quote.UserID != 2 {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "must be reader 1 or 2"}
	}

	if _, err := c.repo.CreateQuote(ctx, quote); err != nil {
		return nil, &domain.MutationError{Op: "add quote", Err: err}
	}
	return c.refresh(ctx, domain.CollectionQuotes, domain.CollectionQuoteTitles), nil
}

// UpdateDiscussion edits a quote's discussion text and refreshes quotes ONLY.
// Neither books nor the titles list can change from a discussion edit.
func (c *Coordinator) UpdateDiscussion(ctx context.Context, key domain.QuoteKey, discussion string) ([]Notice, error) {
	patch := domain.QuotePatch{Discussion: &discussion}
	if _, err := c.repo.UpdateQuote(ctx, key, patch); err != nil {
		return nil, &domain.MutationError{Op: "update discussion", Err: err}
	}
	return c.refresh(ctx, domain.CollectionQuotes), nil
}

// DeleteQuote removes a quote and refreshes quotes + books-with-quotes, so a
// card whose last quote vanished can disappear if the server drops the title.
func (c *Coordinator) DeleteQuote(ctx context.Context, key domain.QuoteKey) ([]Notice, error) {
	if err := c.repo.DeleteQuote(ctx, key); err != nil {
		return nil, &domain.MutationError{Op: "delete quote", Err: err}
	}
	return c.refresh(ctx, domain.CollectionQuotes, domain.CollectionQuoteTitles), nil
}

// refresh re-fetches only the named collections. Failures degrade to the
// cached snapshot and surface as notices; the previous value survives when no
// snapshot exists.
func (c *Coordinator) refresh(ctx context.Context, cols ...domain.Collection) []Notice {
	var notices []Notice
	for _, col := range cols {
		var err error
		switch col {
		case domain.CollectionBooks:
			var books []domain.Book
			if books, err = c.repo.GetBooks(ctx); err == nil {
				c.state.LoadBooks(books)
			}
		case domain.CollectionQuotes:
			var quotes []domain.Quote
			if quotes, err = c.repo.GetQuotes(ctx); err == nil {
				c.state.LoadQuotes(quotes)
			}
		case domain.CollectionQuoteTitles:
			var titles []string
			if titles, err = c.repo.GetBooksWithQuotes(ctx); err == nil {
				c.state.LoadQuoteTitles(titles)
			}
		}
		if err != nil {
			notices = append(notices, c.fallback(col, err))
		}
	}
	return notices
}

// fallback applies the cached snapshot for a failed fetch and builds the
// user-visible notice.
func (c *Coordinator) fallback(col domain.Collection, err error) Notice {
	var fromCache bool
	switch col {
	case domain.CollectionBooks:
		fromCache = c.state.FallbackBooks()
	case domain.CollectionQuotes:
		fromCache = c.state.FallbackQuotes()
	case domain.CollectionQuoteTitles:
		fromCache = c.state.FallbackQuoteTitles()
	}
	c.logger.Warn("collection fetch failed", "collection", col, "fromCache", fromCache, "error", err)
	return Notice{
		Collection: col,
		FromCache:  fromCache,
		Err:        &domain.FetchError{Collection: col, Err: err},
	}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &domain.ValidationError{Field: "title", Reason: "title cannot be empty"}
	}
	return nil
}

func validateStatus(status domain.ReadingStatus) error {
	if !status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: "must be To Read, Reading or Completed"}
	}
	return nil
}

func validateRating(rating float64) error {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return &domain.ValidationError{Field: "rating", Reason: "must be between 1.0 and 10.0"}
	}
	return nil
}
