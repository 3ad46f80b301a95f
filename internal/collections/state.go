package collections

import (
	"log/slog"
	"sync"

	"github.com/ebranwell/marginalia/internal/domain"
)

// State is the single source of truth the UI renders from: the three
// collections plus the initial-load flag. It is mutated only by the
// Coordinator; everything else reads.
//
// Every successful load replaces the named collection wholesale (no partial
// merge) and mirrors it into the snapshot store, so the cache always holds the
// last known-good copy.
type State struct {
	mu sync.RWMutex

	books       []domain.Book
	quotes      []domain.Quote
	quoteTitles []string // server-derived books-with-quotes list

	loading bool

	snaps  domain.SnapshotStore
	logger *slog.Logger
}

// NewState creates an empty state with loading=true. The UI should not treat
// the collections as settled until Loading reports false.
func NewState(snaps domain.SnapshotStore, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		loading: true,
		snaps:   snaps,
		logger:  logger,
	}
}

// Loading reports whether the initial load is still in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// FinishLoad marks the initial load settled. Called once by the Coordinator
// after all three collections have been applied or fallen back.
func (s *State) FinishLoad() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

// Books returns a copy of the books collection in server display order.
func (s *State) Books() []domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Book, len(s.books))
	copy(out, s.books)
	return out
}

// Quotes returns a copy of the quotes collection.
func (s *State) Quotes() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quote, len(s.quotes))
	copy(out, s.quotes)
	return out
}

// QuoteTitles returns a copy of the books-with-quotes list. This list is
// fetched from the server, never derived locally, and decides which quote
// cards render. Deleted books keep their entry until the server drops it.
func (s *State) QuoteTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.quoteTitles))
	copy(out, s.quoteTitles)
	return out
}

// QuotesFor returns the quotes attached to one title, in fetch order.
func (s *State) QuotesFor(title string) []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quote
	for _, q := range s.quotes {
		if q.BookTitle == title {
			out = append(out, q)
		}
	}
	return out
}

// LoadBooks replaces the books collection and snapshots it.
func (s *State) LoadBooks(books []domain.Book) {
	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	s.snapshot(domain.CollectionBooks, books)
}

// LoadQuotes replaces the quotes collection and snapshots it.
func (s *State) LoadQuotes(quotes []domain.Quote) {
	s.mu.Lock()
	s.quotes = quotes
	s.mu.Unlock()
	s.snapshot(domain.CollectionQuotes, quotes)
}

// LoadQuoteTitles replaces the books-with-quotes list and snapshots it.
func (s *State) LoadQuoteTitles(titles []string) {
	s.mu.Lock()
	s.quoteTitles = titles
	s.mu.Unlock()
	s.snapshot(domain.CollectionQuoteTitles, titles)
}

// FallbackBooks restores books from the snapshot cache. If no snapshot
// exists the collection keeps its previous value (possibly empty).
func (s *State) FallbackBooks() bool {
	var books []domain.Book
	if !s.snaps.Get(domain.CollectionBooks, &books) {
		return false
	}
	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	return true
}

// FallbackQuotes restores quotes from the snapshot cache.
func (s *State) FallbackQuotes() bool {
	var quotes []domain.Quote
	if !s.snaps.Get(domain.CollectionQuotes, &quotes) {
		return false
	}
	s.mu.Lock()
	s.quotes = quotes
	s.mu.Unlock()
	return true
}

// FallbackQuoteTitles restores the books-with-quotes list from the cache.
func (s *State) FallbackQuoteTitles() bool {
	var titles []string
	if !s.snaps.Get(domain.CollectionQuoteTitles, &titles) {
		return false
	}
	s.mu.Lock()
	s.quoteTitles = titles
	s.mu.Unlock()
	return true
}

func (s *State) snapshot(key domain.Collection, v any) {
	if err := s.snaps.Put(key, v); err != nil {
		// Snapshot failure never blocks a live load; the cache just stays stale.
		s.logger.Warn("failed to snapshot collection", "collection", key, "error", err)
	}
}
