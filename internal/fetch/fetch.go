// Package fetch provides the HTTP client used by the site adapters.
// Every request goes through a bounded retry loop with exponential
// backoff, and consecutive requests are spaced out by a configurable
// politeness delay.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnavailable indicates that a resource could not be retrieved after
// all retry attempts were exhausted.
var ErrUnavailable = errors.New("fetch: resource unavailable")

// Options configures a Client. A zero UserAgent, Timeout, Retries, or
// Backoff falls back to its DefaultOptions value; a zero Delay means no
// politeness delay between requests.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration
	Delay     time.Duration
	Logger    *slog.Logger
}

// DefaultOptions returns the client configuration used when no settings
// file is provided.
func DefaultOptions() Options {
	return Options{
		UserAgent: "Mozilla/5.0 (compatible; noveldl/1.0)",
		Timeout:   20 * time.Second,
		Retries:   3,
		Backoff:   time.Second,
		Delay:     500 * time.Millisecond,
	}
}

// Client is an HTTP client with retry, backoff, and rate limiting.
// It is safe for use from a single goroutine per the sequential
// download model; the rate limiter is still mutex-guarded so shared
// use does not corrupt its state.
type Client struct {
	http    *http.Client
	opts    Options
	log     *slog.Logger
	mu      sync.Mutex
	lastReq time.Time
}

// NewClient creates a Client from the given options.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Retries < 1 {
		opts.Retries = def.Retries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = def.Backoff
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		http: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		opts: opts,
		log:  log,
	}
}

// Get fetches the given URL and returns the response body.
func (c *Client) Get(ctx context.Context, target string) ([]byte, error) {
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}, target)
}

// PostForm sends a form-encoded POST request and returns the response
// body. Used for sites whose chapter lists hide behind AJAX endpoints.
func (c *Client) PostForm(ctx context.Context, target string, form url.Values) ([]byte, error) {
	encoded := form.Encode()
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, target)
}

// Document fetches the given URL and parses the body as an HTML
// document.
func (c *Client) Document(ctx context.Context, target string) (*goquery.Document, error) {
	body, err := c.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fetch: parse %s: %w", target, err)
	}
	return doc, nil
}

// do runs the request produced by build through the retry loop. The
// request is rebuilt on every attempt because request bodies cannot be
// replayed.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error), target string) ([]byte, error) {
	var lastErr error
	backoff := c.opts.Backoff

	for attempt := 1; attempt <= c.opts.Retries; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		c.waitTurn()
		c.log.Debug("request", "url", target, "attempt", attempt)

		body, err := c.attempt(build)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.log.Debug("request failed", "url", target, "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrUnavailable, target, c.opts.Retries, lastErr)
}

func (c *Client) attempt(build func() (*http.Request, error)) ([]byte, error) {
	req, err := build()
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// waitTurn enforces the politeness delay between consecutive requests.
func (c *Client) waitTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.Delay <= 0 {
		return
	}
	if elapsed := time.Since(c.lastReq); elapsed < c.opts.Delay {
		time.Sleep(c.opts.Delay - elapsed)
	}
	c.lastReq = time.Now()
}
