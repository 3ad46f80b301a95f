package shelf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ebranwell/marginalia/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Marginalia/1.0"
	apiPrefix      = "/api"
)

// Client implements domain.Repository against the shelf server's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new shelf API client. baseURL is the server root
// without the /api prefix.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// doRequest performs a JSON request against an /api path and returns the raw
// response body. 404 maps to notFound, transport failures to ErrServerOffline.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, notFound error) ([]byte, error) {
	reqURL := c.baseURL + apiPrefix + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("shelf request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("shelf request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return nil, notFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("shelf request error", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return respBody, nil
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("failed to parse response: %w", err)
	}
	return v, nil
}

// GetBooks returns all books in the server's display order.
func (c *Client) GetBooks(ctx context.Context) ([]domain.Book, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/books/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]domain.Book](body)
}

// GetQuotes returns every quote across all books.
func (c *Client) GetQuotes(ctx context.Context) ([]domain.Quote, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/quotes/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]domain.Quote](body)
}

// GetQuotesForBook returns the quotes attached to a single title.
func (c *Client) GetQuotesForBook(ctx context.Context, bookTitle string) ([]domain.Quote, error) {
	path := "/quotes/" + url.PathEscape(bookTitle)
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]domain.Quote](body)
}

// GetBooksWithQuotes returns the server-derived list of titles that currently
// have quotes. The server's definition is authoritative; the client never
// recomputes this from the quotes collection.
func (c *Client) GetBooksWithQuotes(ctx context.Context) ([]string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/books-with-quotes/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]string](body)
}

// CreateBook adds a book. The server assigns the display number and seeds a
// blank quote for the new title.
func (c *Client) CreateBook(ctx context.Context, title string, status domain.ReadingStatus, rating float64) (domain.Book, error) {
	payload := createBookRequest{Title: title, Status: status, Rating: rating}
	body, err := c.doRequest(ctx, http.MethodPost, "/books", payload, nil)
	if err != nil {
		return domain.Book{}, err
	}
	return decode[domain.Book](body)
}

// UpdateBook applies a partial update to the book identified by title.
func (c *Client) UpdateBook(ctx context.Context, title string, patch domain.BookPatch) (domain.Book, error) {
	path := "/books/" + url.PathEscape(title)
	body, err := c.doRequest(ctx, http.MethodPut, path, patch, domain.ErrBookNotFound)
	if err != nil {
		return domain.Book{}, err
	}
	return decode[domain.Book](body)
}

// DeleteBook removes the book identified by title. Quotes survive on the
// server; the orphaned title keeps its quote card.
func (c *Client) DeleteBook(ctx context.Context, title string) error {
	path := "/books/" + url.PathEscape(title)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, domain.ErrBookNotFound)
	return err
}

// CreateQuote attaches a quote to a book by title.
func (c *Client) CreateQuote(ctx context.Context, quote domain.Quote) (domain.Quote, error) {
	payload := createQuoteRequest{
		BookTitle:  quote.BookTitle,
		Text:       quote.Text,
		UserID:     quote.UserID,
		Discussion: quote.Discussion,
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/quotes", payload, nil)
	if err != nil {
		return domain.Quote{}, err
	}
	return decode[domain.Quote](body)
}

// UpdateQuote applies a partial update to the quote identified by its
// composite key. Both path segments are percent-encoded so arbitrary quote
// text round-trips byte-exact.
func (c *Client) UpdateQuote(ctx context.Context, key domain.QuoteKey, patch domain.QuotePatch) (domain.Quote, error) {
	path := "/quotes/" + url.PathEscape(key.BookTitle) + "/" + url.PathEscape(key.Text)
	body, err := c.doRequest(ctx, http.MethodPut, path, patch, domain.ErrQuoteNotFound)
	if err != nil {
		return domain.Quote{}, err
	}
	return decode[domain.Quote](body)
}

// DeleteQuote removes the quote identified by its composite key.
func (c *Client) DeleteQuote(ctx context.Context, key domain.QuoteKey) error {
	path := "/quotes/" + url.PathEscape(key.BookTitle) + "/" + url.PathEscape(key.Text)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, domain.ErrQuoteNotFound)
	return err
}
