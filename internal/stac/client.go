package stac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/apperr"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/observability"
)

// Catalog runs one item search against a STAC API.
type Catalog interface {
	Search(ctx context.Context, p SearchPayload) (*ItemCollection, error)
}

// Client is the HTTP Catalog. It makes exactly one attempt per search.
type Client struct {
	logger    *slog.Logger
	http      *http.Client
	searchURL string
	clock     clockwork.Clock
}

// SearchEndpoint joins the catalog base URL and /search.
func SearchEndpoint(base string) string {
	return strings.TrimRight(base, "/") + "/search"
}

func NewClient(logger *slog.Logger, httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(SearchEndpoint(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse stac url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse stac url: unsupported scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		logger:    logger,
		http:      httpClient,
		searchURL: u.String(),
		clock:     clockwork.NewRealClock(),
	}, nil
}

// WithClock swaps the clock used to time upstream calls.
func (c *Client) WithClock(clk clockwork.Clock) *Client {
	c.clock = clk
	return c
}

func (c *Client) Search(ctx context.Context, p SearchPayload) (*ItemCollection, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/geo+json, application/json")

	start := c.clock.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(start, "error")
		return nil, &apperr.UpstreamError{Timeout: isTimeout(err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observe(start, "error")
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		c.logger.WarnContext(ctx, "stac search rejected",
			"status", resp.StatusCode,
			"url", c.searchURL)
		return nil, &apperr.UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var page ItemCollection
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		c.observe(start, "error")
		return nil, &apperr.UpstreamError{Timeout: isTimeout(err), Err: fmt.Errorf("decode response: %w", err)}
	}
	dur := c.observe(start, "ok")
	c.logger.DebugContext(ctx, "stac search done",
		"status", resp.StatusCode,
		"features", len(page.Features),
		"duration", dur.String())
	return &page, nil
}

func (c *Client) observe(start time.Time, outcome string) time.Duration {
	dur := c.clock.Since(start)
	observability.ObserveUpstreamLatency("stac", outcome, dur.Seconds())
	return dur
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
