// Package upstream issues JSON requests to third-party content APIs through
// retry with backoff and a per-provider circuit breaker.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oe/sunrain-sub002/infrastructure/circuitbreaker"
	infraerrors "github.com/oe/sunrain-sub002/infrastructure/errors"
	infrahttp "github.com/oe/sunrain-sub002/infrastructure/http"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/infrastructure/retry"
)

// ErrNotConfigured is returned by providers that lack credentials.
var ErrNotConfigured = errors.New("provider not configured")

const maxBody = 8 << 20

// Client is safe for concurrent use.
type Client struct {
	name    string
	http    *http.Client
	breaker *circuitbreaker.Breaker
	retry   retry.Config
	logger  infralogger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithRetry replaces the retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithBreaker replaces the circuit breaker. Its config should use
// CountsAsFailure so client errors leave the circuit closed.
func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// New builds a client for the provider called name.
func New(name string, httpClient *http.Client, log infralogger.Logger, opts ...Option) *Client {
	c := &Client{
		name:   name,
		http:   httpClient,
		retry:  retry.DefaultConfig(),
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		breakerCfg := circuitbreaker.DefaultConfig(name)
		breakerCfg.IsFailure = CountsAsFailure
		breakerCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
			log.Warn("Circuit breaker state changed",
				infralogger.String("provider", name),
				infralogger.String("from", from.String()),
				infralogger.String("to", to.String()),
			)
		}
		c.breaker = circuitbreaker.New(breakerCfg)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
			log.Debug("Retrying upstream request",
				infralogger.String("provider", name),
				infralogger.Int("attempt", attempt),
				infralogger.Duration("delay", delay),
				infralogger.Error(err),
			)
		}
	}
	return c
}

// CountsAsFailure reports whether err says the provider is unhealthy. HTTP
// responses that are not temporary, such as 404 for one id, do not count.
func CountsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *infraerrors.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	return true
}

// Name is the provider name.
func (c *Client) Name() string {
	return c.name
}

// HTTP exposes the underlying client.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// GetJSON fetches rawURL and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	return retry.Do(ctx, c.retry, func(ctx context.Context) error {
		return c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.get(ctx, rawURL, header, out)
		})
	})
}

func (c *Client) get(ctx context.Context, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := infrahttp.Do(ctx, c.http, req)
	if err != nil {
		return fmt.Errorf("%s request: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		return httpErr
	}
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", c.name, err)
	}
	return nil
}
