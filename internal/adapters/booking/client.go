// internal/adapters/booking/client.go
package booking

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"flight_dashboard/internal/adapters/observability"
	"flight_dashboard/internal/domain"
)

const (
	service      = "booking"
	searchPath   = "/api/v1/flights/searchFlights"
	endpointName = "searchFlights"
)

// Options configure the search client. Zero values fall back to defaults.
type Options struct {
	BaseURL string
	Host    string // sent as x-rapidapi-host
	Key     string // sent as x-rapidapi-key
	Timeout time.Duration
	RPS     int
	Retries int // extra attempts on 429/5xx/network errors
}

type Client struct {
	base    string
	host    string
	key     string
	hc      *http.Client
	rl      *rate.Limiter
	retries int
}

func New(o Options) (*Client, error) {
	if o.Key == "" {
		return nil, fmt.Errorf("booking client: %w", domain.ErrMissingAPIKey)
	}
	if o.BaseURL == "" {
		o.BaseURL = "https://booking-com15.p.rapidapi.com"
	}
	if o.Host == "" {
		if u, err := url.Parse(o.BaseURL); err == nil {
			o.Host = u.Host
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	if o.RPS <= 0 {
		o.RPS = 2
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	return &Client{
		base:    strings.TrimRight(o.BaseURL, "/"),
		host:    o.Host,
		key:     o.Key,
		hc:      &http.Client{Timeout: o.Timeout},
		rl:      rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		retries: o.Retries,
	}, nil
}

// ProviderError is a non-2xx answer from the search endpoint.
type ProviderError struct {
	Status int
	Body   string // first 4KiB, trimmed
}

func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", service, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", service, e.Status, e.Body)
}

// Retryable reports whether another attempt may succeed.
func (e *ProviderError) Retryable() bool {
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Search performs the flight search and returns the provider document as-is.
// It waits on the client-side limiter and retries 429/5xx/network failures up
// to the configured number of times, honoring Retry-After when provided.
func (c *Client) Search(ctx context.Context, params map[string]string) (json.RawMessage, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	u := c.base + searchPath
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	var lastErr error
	for i := 0; i <= c.retries; i++ {
		body, wait, err := c.do(ctx, u)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if wait < 0 {
			// not retryable
			return nil, err
		}
		if i == c.retries {
			break
		}
		if wait == 0 {
			wait = backoff(i)
		}
		if !sleepCtx(ctx, wait) {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// do runs one attempt. wait is negative when the failure must not be retried,
// zero when no Retry-After was given.
func (c *Client) do(ctx context.Context, u string) (json.RawMessage, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, -1, err
	}
	req.Header.Set("x-rapidapi-key", c.key)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flight-dashboard/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpointName, 0, time.Since(start))
		return nil, 0, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpointName, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: read body: %w", service, err)
		}
		if !json.Valid(b) {
			return nil, -1, fmt.Errorf("%s: response is not valid JSON", service)
		}
		return json.RawMessage(b), 0, nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	perr := &ProviderError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	if !perr.Retryable() {
		return nil, -1, perr
	}
	return nil, retryAfter(resp), perr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
