package shelf

import "github.com/ebranwell/marginalia/internal/domain"

// Request payloads for the shelf server's /api endpoints.

type createBookRequest struct {
	Title  string               `json:"title"`
	Status domain.ReadingStatus `json:"status"`
	Rating float64              `json:"rating"`
}

type createQuoteRequest struct {
	BookTitle  string `json:"book_title"`
	Text       string `json:"text"`
	UserID     int    `json:"user_id"`
	Discussion string `json:"discussion"`
}
