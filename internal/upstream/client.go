// Package upstream is the resilient HTTP client from spec.md §4.1: every
// GET is wrapped outer-to-inner as retry ∘ circuit_breaker ∘ timeout. Each
// retry attempt passes through the circuit breaker; each breaker-admitted
// call is bounded by the per-attempt timeout; the breaker observes every
// attempt's outcome independently of the retry loop around it.
package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jnrpurin/jr-it-news/internal/apperr"
	"github.com/jnrpurin/jr-it-news/internal/logging"
	"github.com/jnrpurin/jr-it-news/internal/metrics"
)

// Client issues resilient GETs against the Hacker News item API.
type Client struct {
	transport         Transport
	breaker           *gobreaker.CircuitBreaker
	userAgent         string
	perAttemptTimeout time.Duration
	retries           int
	log               *logging.Logger
}

// Config is the subset of internal/config.Config the client needs; kept
// narrow so tests don't have to construct a full service Config.
type Config struct {
	UserAgent           string
	PerAttemptTimeout   time.Duration
	Retries             int
	BreakerThreshold    uint32
	BreakerOpenDuration time.Duration
}

// New builds a Client around transport (use http.DefaultClient in
// production, a fake in tests).
func New(cfg Config, transport Transport) *Client {
	c := &Client{
		transport:         transport,
		userAgent:         cfg.UserAgent,
		perAttemptTimeout: cfg.PerAttemptTimeout,
		retries:           cfg.Retries,
		log:               logging.Named("upstream"),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "hn-upstream",
		MaxRequests: 1, // exactly one probe admitted in half-open
		Timeout:     cfg.BreakerOpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		// Only transient/timeout outcomes count against the breaker; a
		// permanent (4xx) outcome is the upstream correctly rejecting the
		// request, not a sign the service is down, per spec.md §4.1.
		IsSuccessful: func(err error) bool {
			return !apperr.KindOf(err).Retryable()
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.BreakerState.Set(metrics.BreakerStateValue(to.String()))
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return c
}

// Fetch performs a resilient GET against url. The returned error, when
// non-nil, always classifies via apperr.KindOf.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doAttempt(ctx, url)
		})
		if err == nil {
			return result.([]byte), nil
		}
		err = classifyBreakerErr(err)
		lastErr = err

		kind := apperr.KindOf(err)
		if kind == apperr.KindCircuitOpen {
			// While open, zero transport attempts are made; don't retry.
			return nil, err
		}
		if !kind.Retryable() || attempt == c.retries {
			return nil, err
		}

		backoff := time.Duration(1<<uint(attempt+1)) * time.Second // 2s, 4s, 8s
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, apperr.Wrap(ctx.Err(), apperr.KindCancelled, "cancelled during retry backoff")
		}
	}
	return nil, lastErr
}

// doAttempt issues a single HTTP GET bounded by the per-attempt timeout.
func (c *Client) doAttempt(ctx context.Context, url string) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.perAttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindPermanent, "build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.transport.Do(req)
	if err != nil {
		switch {
		case errors.Is(attemptCtx.Err(), context.Canceled):
			return nil, apperr.Wrap(ctx.Err(), apperr.KindCancelled, "caller cancelled")
		case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
			return nil, apperr.Wrap(err, apperr.KindTimeout, "attempt deadline exceeded")
		default:
			return nil, apperr.Wrap(err, apperr.KindTransient, "transport error")
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindTransient, "read response body")
	}

	if resp.StatusCode/100 == 2 {
		return body, nil
	}
	if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode/100 == 5 {
		return nil, apperr.Newf(apperr.KindTransient, "upstream status %d", resp.StatusCode)
	}
	return nil, apperr.Newf(apperr.KindPermanent, "upstream status %d", resp.StatusCode)
}

func classifyBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperr.Wrap(err, apperr.KindCircuitOpen, "breaker refused call")
	}
	return err
}
