// Package fetch performs the HTTP retrieval of posting pages with bounded
// retries and per-host rate limiting. Callers only ever see a final outcome:
// body bytes or a classified failure.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindNotFound ErrorKind = "not_found"
	KindBlocked  ErrorKind = "blocked"
	KindHTTP     ErrorKind = "http_status"
)

// Error is the typed failure the extractor branches on. A fetch failure
// always means "no record", never a partial one.
type Error struct {
	Kind   ErrorKind
	Status int
	URL    string
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	UserAgent   string
	HostReqsSec float64
	HostBurst   int
}

type Client struct {
	hc      *http.Client
	cfg     Config
	limiter *HostLimiter
	log     *zap.SugaredLogger
}

func NewClient(cfg Config, log *zap.SugaredLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "ApplyFlow/1.0 (+local)"
	}
	if cfg.HostReqsSec <= 0 {
		cfg.HostReqsSec = 1
	}
	if cfg.HostBurst <= 0 {
		cfg.HostBurst = 2
	}
	return &Client{
		hc:      &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		limiter: NewHostLimiter(cfg.HostReqsSec, cfg.HostBurst),
		log:     log,
	}
}

// Get fetches the URL, retrying transient failures (429, 5xx, network
// errors) with capped exponential backoff. Non-retryable statuses fail
// fast with a classified error.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := c.cfg.MaxRetries + 1
	if attempts <= 0 {
		attempts = 1
	}
	const maxBackoff = 30 * time.Second

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.limiter.WaitURL(ctx, rawURL); err != nil {
			return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
		}

		body, retryable, err := c.getOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		if attempt < attempts-1 {
			delay := c.cfg.Backoff * time.Duration(1<<attempt)
			if delay > maxBackoff {
				delay = maxBackoff
			}
			c.log.Debugw("fetch retry", "url", rawURL, "attempt", attempt+1, "delay", delay)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: ctx.Err()}
			}
			timer.Stop()
		}
	}

	c.log.Warnw("fetch exhausted retries", "url", rawURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, rawURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, true, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		b, rerr := io.ReadAll(res.Body)
		if rerr != nil {
			return nil, true, &Error{Kind: KindNetwork, URL: rawURL, Err: rerr}
		}
		return b, false, nil
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusGone:
		return nil, false, &Error{Kind: KindNotFound, Status: res.StatusCode, URL: rawURL}
	case res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusUnauthorized:
		return nil, false, &Error{Kind: KindBlocked, Status: res.StatusCode, URL: rawURL}
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, true, &Error{Kind: KindHTTP, Status: res.StatusCode, URL: rawURL}
	default:
		return nil, false, &Error{Kind: KindHTTP, Status: res.StatusCode, URL: rawURL}
	}
}

// IsFetchError reports whether err is a classified fetch failure.
func IsFetchError(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
