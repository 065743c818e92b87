// internal/adapters/sparql/client.go
package sparql

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"estate_reco/internal/adapters/observability"
	"estate_reco/internal/domain"
)

const (
	maxAttempts      = 4
	breakerTrips     = 5
	breakerCoolDown  = 30 * time.Second
	resultsMediaType = "application/sparql-results+json"
)

var (
	ErrBadRequest  = errors.New("sparql: bad request")
	ErrNotFound    = errors.New("sparql: dataset not found")
	ErrUnavailable = errors.New("sparql: endpoint unavailable")
)

// Client queries a SPARQL 1.1 protocol endpoint.
type Client struct {
	endpoint string
	query    string
	hc       *http.Client
	rl       *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[]domain.RawRecord]
}

func New(endpoint, ontologyPrefix string, rps int, timeout time.Duration) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("sparql endpoint is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("sparql endpoint: %w", err)
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		query:    ListingsQuery(ontologyPrefix),
		hc:       &http.Client{Timeout: timeout},
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
		cb:       newBreaker(endpoint),
	}, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]domain.RawRecord] {
	return gobreaker.NewCircuitBreaker[[]domain.RawRecord](gobreaker.Settings{
		Name:    name,
		Timeout: breakerCoolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrips
		},
		// malformed queries and caller cancellations say nothing about endpoint health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrBadRequest) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("endpoint", name).Str("from", from.String()).Str("to", to.String()).
				Msg("sparql circuit breaker state changed")
			observability.ObserveBreaker("sparql", to.String())
		},
	})
}

// ---- Public API ----

// FetchListings runs the listings query.
func (c *Client) FetchListings(ctx context.Context) ([]domain.RawRecord, error) {
	return c.Select(ctx, c.query)
}

// Select runs a SELECT query and returns its result rows.
func (c *Client) Select(ctx context.Context, query string) ([]domain.RawRecord, error) {
	rows, err := c.cb.Execute(func() ([]domain.RawRecord, error) {
		return c.get(ctx, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return rows, err
}

// ---- Internals ----

// get performs the query with client-side rate limiting and retries.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, query string) ([]domain.RawRecord, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	u := c.endpoint + "?" + url.Values{"query": {query}}.Encode()

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", resultsMediaType)
		req.Header.Set("User-Agent", "estate-reco/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("sparql", "select", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %w", ErrUnavailable, err)
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("sparql", "select", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			rows, err := DecodeResults(resp.Body)
			resp.Body.Close()
			return rows, err

		case http.StatusBadRequest:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s", ErrBadRequest, strings.TrimSpace(string(b)))

		case http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrNotFound

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%w: remote %d", ErrUnavailable, resp.StatusCode)
			log.Debug().Int("status", resp.StatusCode).Int("attempt", i+1).Dur("wait", wait).
				Msg("sparql transient failure")
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
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
