package domain

import (
	"fmt"
	"time"
)

// ReadingStatus tracks where a book sits on the shelf
type ReadingStatus string

const (
	StatusToRead    ReadingStatus = "To Read"
	StatusReading   ReadingStatus = "Reading"
	StatusCompleted ReadingStatus = "Completed"
)

// Valid reports whether the status is one of the three shelf states.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusToRead, StatusReading, StatusCompleted:
		return true
	}
	return false
}

// Next cycles to the following shelf state (used by the edit form).
func (s ReadingStatus) Next() ReadingStatus {
	switch s {
	case StatusToRead:
		return StatusReading
	case StatusReading:
		return StatusCompleted
	default:
		return StatusToRead
	}
}

// Book is a shelf entry. Title is the natural key: it identifies the book in
// update/delete paths and joins the book to its quotes. A renamed title is a
// new identity as far as quotes are concerned.
type Book struct {
	Title     string        `json:"title"`
	Status    ReadingStatus `json:"status"`
	Rating    float64       `json:"rating"`     // 1.0-10.0, fractional allowed
	Number    int           `json:"number"`     // server-assigned display order
	CreatedAt time.Time     `json:"created_at"`
}

// FormattedRating renders the rating to one decimal (8.5 stays 8.5).
func (b Book) FormattedRating() string {
	return fmt.Sprintf("%.1f/10", b.Rating)
}

// Quote is a passage attached to a book by title. Quotes have no surrogate id;
// the (BookTitle, Text) pair identifies them on the wire.
type Quote struct {
	BookTitle  string    `json:"book_title"`
	Text       string    `json:"text"`
	UserID     int       `json:"user_id"` // 1 or 2
	Discussion string    `json:"discussion"`
	CreatedAt  time.Time `json:"created_at"`
}

// Key returns the composite identity of the quote.
func (q Quote) Key() QuoteKey {
	return QuoteKey{BookTitle: q.BookTitle, Text: q.Text}
}

// QuoteKey is the composite natural key for a quote. Both components are
// embedded percent-encoded in request paths and must round-trip byte-exact.
type QuoteKey struct {
	BookTitle string
	Text      string
}

// BookPatch is a partial update for a book. Nil fields are omitted from the
// request body so the server only touches what the caller set.
type BookPatch struct {
	Title  *string        `json:"title,omitempty"`
	Status *ReadingStatus `json:"status,omitempty"`
	Rating *float64       `json:"rating,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.Status == nil && p.Rating == nil
}

// QuotePatch is a partial update for a quote. Only the discussion is editable
// from the client; editing the text would change the quote's identity.
type QuotePatch struct {
	Discussion *string `json:"discussion,omitempty"`
}

// Collection names the three client-side collections. The values double as
// snapshot cache keys, so they are part of the persisted format.
type Collection string

const (
	CollectionBooks       Collection = "books"
	CollectionQuotes      Collection = "quotes"
	CollectionQuoteTitles Collection = "booksWithQuotes"
)

// Rating bounds for client-side validation.
const (
	MinRating = 1.0
	MaxRating = 10.0
)
