package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/arun3676/agentception/internal/metrics"
	"github.com/arun3676/agentception/pkg/httpclient"
	"github.com/arun3676/agentception/pkg/ratelimit"
)

const defaultBaseURL = "https://api.exa.ai"

// ErrMissingAPIKey indicates the client was constructed without a key; any
// call that reaches the network fails with it. This is a configuration error,
// not a transient one.
var ErrMissingAPIKey = errors.New("search: API key missing")

// RateLimitError reports that the provider kept returning 429 after all
// retries were spent.
type RateLimitError struct {
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("search: rate limited after %d attempts", e.Attempts)
}

// Config configures the search client.
type Config struct {
	APIKey  string
	BaseURL string
	// Permits bounds concurrent API calls across all callers (default 1,
	// i.e. effectively serialized).
	Permits int64
	// MaxRetries caps rate-limit retries per call (default 3).
	MaxRetries int
	Timeout    time.Duration
	Backoff    ratelimit.Backoff
	Logger     *slog.Logger
}

// Client talks to the search provider. It implements Searcher.
type Client struct {
	cfg    Config
	httpc  *httpclient.Client
	gate   *ratelimit.Gate
	logger *slog.Logger
}

var _ Searcher = (*Client)(nil)

// NewClient creates a search client. The API key may be empty; calls will
// then fail with ErrMissingAPIKey so the caller can decide whether that is
// fatal.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Permits <= 0 {
		cfg.Permits = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 40 * time.Second
	}
	if cfg.Backoff == (ratelimit.Backoff{}) {
		cfg.Backoff = ratelimit.DefaultBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	httpc, err := httpclient.New(httpclient.Config{Timeout: cfg.Timeout, MaxRedirects: 5})
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	return &Client{
		cfg:    cfg,
		httpc:  httpc,
		gate:   ratelimit.NewGate(cfg.Permits),
		logger: cfg.Logger,
	}, nil
}

type searchRequest struct {
	Query          string   `json:"query"`
	Type           string   `json:"type"`
	NumResults     int      `json:"numResults"`
	IncludeDomains []string `json:"includeDomains,omitempty"`
	Text           bool     `json:"text,omitempty"`
	Highlights     bool     `json:"highlights,omitempty"`
}

type searchResponse struct {
	Results []Hit `json:"results"`
}

// Search runs one query against POST /search. Zero hits come back as an
// empty slice with a nil error.
func (c *Client) Search(ctx context.Context, query string, opts Options) ([]Hit, error) {
	if opts.NumResults <= 0 {
		opts.NumResults = 8
	}

	body := searchRequest{
		Query:          query,
		Type:           "auto",
		NumResults:     opts.NumResults,
		IncludeDomains: opts.IncludeDomains,
		Text:           opts.WantText,
		Highlights:     opts.WantHighlights,
	}

	var resp searchResponse
	if err := c.post(ctx, "/search", body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		c.logger.Debug("search returned no results", "query", query)
	}
	return resp.Results, nil
}

type contentsRequest struct {
	URLs []string     `json:"urls"`
	Text contentsText `json:"text"`
}

type contentsText struct {
	MaxCharacters   int  `json:"maxCharacters"`
	IncludeHTMLTags bool `json:"includeHtmlTags"`
}

type contentsResponse struct {
	Results []ContentPage `json:"results"`
}

// FetchContents retrieves cleaned page text for a batch of URLs via
// POST /contents, capped at maxChars per page.
func (c *Client) FetchContents(ctx context.Context, urls []string, maxChars int) ([]ContentPage, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	if maxChars <= 0 {
		maxChars = 6000
	}

	body := contentsRequest{
		URLs: urls,
		Text: contentsText{MaxCharacters: maxChars},
	}

	var resp contentsResponse
	if err := c.post(ctx, "/contents", body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// post serializes one API call through the concurrency gate and retries
// rate-limit responses with exponential backoff. Any other non-2xx status
// propagates immediately.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if c.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	if err := c.gate.Acquire(ctx); err != nil {
		return fmt.Errorf("failed to acquire search permit: %w", err)
	}
	defer c.gate.Release()

	endpoint := path[1:]
	for attempt := 0; ; attempt++ {
		start := time.Now()
		status, data, err := c.doOnce(ctx, path, payload)
		if err != nil {
			metrics.RecordSearch(endpoint, "error", time.Since(start))
			return err
		}
		metrics.RecordSearch(endpoint, strconv.Itoa(status), time.Since(start))

		switch {
		case status == http.StatusTooManyRequests:
			if attempt >= c.cfg.MaxRetries {
				return &RateLimitError{Attempts: attempt + 1}
			}
			metrics.SearchRetriesTotal.Inc()
			c.logger.Warn("search API rate limited, backing off",
				"endpoint", endpoint, "attempt", attempt+1, "max", c.cfg.MaxRetries)
			if err := c.cfg.Backoff.Sleep(ctx, attempt); err != nil {
				return err
			}
			continue
		case status < 200 || status >= 300:
			return fmt.Errorf("search API returned status %d: %s", status, truncate(data, 200))
		}

		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

func (c *Client) doOnce(ctx context.Context, path string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(ctx, req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
