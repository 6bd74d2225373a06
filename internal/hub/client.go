// Package hub is a small client for the Hugging Face datasets-server API,
// which serves dataset rows as JSON pages.
package hub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/samcharles93/calibkit/internal/logger"
)

const (
	DefaultEndpoint = "https://datasets-server.huggingface.co"
	// MaxPageLength is the largest page the rows endpoint serves.
	MaxPageLength = 100
)

// Client fetches rows and split listings from a datasets-server instance.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	limiter  *rate.Limiter
	pageSize int
	log      logger.Logger
}

type Option func(*Client)

// WithEndpoint overrides the datasets-server base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithRateLimit caps the request rate. A zero limit disables limiting.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r == 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(r, max(burst, 1))
	}
}

// WithPageSize sets the rows requested per page, clamped to MaxPageLength.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = min(n, MaxPageLength)
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = logger.OrDiscard(l) }
}

// New creates a client for the public datasets-server unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     http.DefaultClient,
		limiter:  rate.NewLimiter(rate.Limit(10), 10),
		pageSize: MaxPageLength,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL     string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("datasets-server %s: status %d: %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("datasets-server %s: status %d", e.URL, e.Status)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	u := c.endpoint + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &StatusError{URL: u, Status: resp.StatusCode, Message: msg}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
