package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vyrlo/listing-browser/internal/models"
)

// ErrNetworkFailure marks every failure to get a usable answer from the
// backend. Callers treat it as transient and let the user retry.
var ErrNetworkFailure = errors.New("backend unavailable")

type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrNetworkFailure
}

type Options struct {
	BaseURL       string
	HTTPClient    *http.Client
	Timeout       time.Duration
	RatePerSecond float64
	Logger        *slog.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = max(1, int(opts.RatePerSecond))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

func (c *Client) HealthCheck(ctx context.Context) error {
	res, err := c.get(ctx, "health check", "/health", nil)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// FetchListings returns the full active listing set.
func (c *Client) FetchListings(ctx context.Context) ([]models.Listing, error) {
	return c.fetchListings(ctx, "fetch listings", "/listings/active", nil)
}

// SearchListings asks the backend for listings whose name and/or location
// match. Empty arguments are not sent.
func (c *Client) SearchListings(ctx context.Context, name string, location string) ([]models.Listing, error) {
	values := url.Values{}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		values.Set("name", trimmed)
	}
	if trimmed := strings.TrimSpace(location); trimmed != "" {
		values.Set("location", trimmed)
	}
	return c.fetchListings(ctx, "search listings", "/listings/search", values)
}

func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	const op = "fetch categories"
	res, err := c.get(ctx, op, "/categories", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var payload []categoryPayload
	if err := decodeCollection(res.Body, "categories", &payload); err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("decode categories: %w", err)}
	}

	categories := make([]models.Category, 0, len(payload))
	for _, item := range payload {
		categories = append(categories, item.toModel())
	}
	return categories, nil
}

func (c *Client) fetchListings(ctx context.Context, op string, path string, values url.Values) ([]models.Listing, error) {
	res, err := c.get(ctx, op, path, values)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var rows []json.RawMessage
	if err := decodeCollection(res.Body, "listings", &rows); err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("decode listings: %w", err)}
	}

	// Malformed rows are skipped and logged.
	listings := make([]models.Listing, 0, len(rows))
	skipped := 0
	for index, row := range rows {
		var item listingPayload
		if err := json.Unmarshal(row, &item); err != nil {
			skipped++
			c.logger.Warn("skipping malformed listing", "op", op, "index", index, "error", err)
			continue
		}
		listing, err := item.toModel()
		if err != nil {
			skipped++
			c.logger.Warn("skipping malformed listing", "op", op, "index", index, "error", err)
			continue
		}
		listings = append(listings, listing)
	}
	if skipped > 0 {
		c.logger.Info("listing rows skipped", "op", op, "skipped", skipped, "kept", len(listings))
	}
	return listings, nil
}

func (c *Client) get(ctx context.Context, op string, path string, values url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("wait for rate limiter: %w", err)}
	}

	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("request failed: %w", err)}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
		return nil, &Error{Op: op, StatusCode: res.StatusCode}
	}

	return res, nil
}

// decodeCollection accepts either a bare JSON array or an object carrying the
// array under key.
func decodeCollection(body io.Reader, key string, out any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(raw, out)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	items, ok := envelope[key]
	if !ok {
		return fmt.Errorf("response has no %q field", key)
	}
	return json.Unmarshal(items, out)
}
