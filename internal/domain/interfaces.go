package domain

import "context"

// Repository: network operations against the shelf server (implemented by the
// REST client in internal/shelf).
type Repository interface {
	// List fetches
	GetBooks(ctx context.Context) ([]Book, error)
	GetQuotes(ctx context.Context) ([]Quote, error)
	GetQuotesForBook(ctx context.Context, bookTitle string) ([]Quote, error)
	GetBooksWithQuotes(ctx context.Context) ([]string, error)

	// Book mutations
	CreateBook(ctx context.Context, title string, status ReadingStatus, rating float64) (Book, error)
	UpdateBook(ctx context.Context, title string, patch BookPatch) (Book, error)
	DeleteBook(ctx context.Context, title string) error

	// Quote mutations
	CreateQuote(ctx context.Context, quote Quote) (Quote, error)
	UpdateQuote(ctx context.Context, key QuoteKey, patch QuotePatch) (Quote, error)
	DeleteQuote(ctx context.Context, key QuoteKey) error
}

// SnapshotStore handles the local fallback cache (bbolt + memory). One entry
// per collection, valid until overwritten. Get reports absent for missing or
// corrupt entries instead of failing.
type SnapshotStore interface {
	Put(key Collection, v any) error
	Get(key Collection, dest any) bool
	Clear() error
	Close() error
}
