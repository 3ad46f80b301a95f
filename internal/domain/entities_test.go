package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadingStatusValid(t *testing.T) {
	assert.True(t, StatusToRead.Valid())
	assert.True(t, StatusReading.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, ReadingStatus("Abandoned").Valid())
	assert.False(t, ReadingStatus("").Valid())
}

func TestReadingStatusNextCycles(t *testing.T) {
	assert.Equal(t, StatusReading, StatusToRead.Next())
	assert.Equal(t, StatusCompleted, StatusReading.Next())
	assert.Equal(t, StatusToRead, StatusCompleted.Next())
}

func TestFormattedRating(t *testing.T) {
	assert.Equal(t, "8.5/10", Book{Rating: 8.5}.FormattedRating())
	assert.Equal(t, "10.0/10", Book{Rating: 10}.FormattedRating())
}

func TestQuoteKey(t *testing.T) {
	q := Quote{BookTitle: "Dune", Text: "Fear is the mind-killer.", UserID: 1, Discussion: "litany"}

	key := q.Key()

	assert.Equal(t, QuoteKey{BookTitle: "Dune", Text: "Fear is the mind-killer."}, key)
}

func TestBookPatchEmpty(t *testing.T) {
	assert.True(t, BookPatch{}.Empty())

	title := "Dune"
	assert.False(t, BookPatch{Title: &title}.Empty())
}

func TestErrorUnwrapping(t *testing.T) {
	fetchErr := &FetchError{Collection: CollectionBooks, Err: ErrServerOffline}
	assert.ErrorIs(t, fetchErr, ErrServerOffline)
	assert.Contains(t, fetchErr.Error(), "books")

	cause := errors.New("duplicate title")
	mutErr := &MutationError{Op: "add book", Err: cause}
	assert.ErrorIs(t, mutErr, cause)

	valErr := &ValidationError{Field: "rating", Reason: "must be between 1.0 and 10.0"}
	assert.Contains(t, valErr.Error(), "rating")
}
