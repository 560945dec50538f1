package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ReadLaterSync/internal/domain"
	"github.com/ReadLaterSync/internal/infra/metrics"
	"github.com/ReadLaterSync/pkg/logging"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodySize = 10 << 20

// StatusError is returned when the API answers with a non-retryable status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client executes requests against the read-later API behind a circuit breaker.
type Client struct {
	baseURL      *url.URL
	userAgent    string
	client       *http.Client
	cb           *gobreaker.CircuitBreaker
	maxRetries   int
	retryBackoff time.Duration
	sampler      *logging.ErrorSampler
}

var _ domain.Requester = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("API base URL must be absolute: %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}

	cbSettings := gobreaker.Settings{
		Name:        base.Host,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// 4xx answers mean the API is up, and a cancelled caller says nothing
		// about it; only transport and 5xx failures trip.
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("CircuitBreaker state changed", "name", name, "from", from, "to", to)
		},
	}

	return &Client{
		baseURL:   base,
		userAgent: opts.UserAgent,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cb:           gobreaker.NewCircuitBreaker(cbSettings),
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		sampler:      logging.NewErrorSampler(10),
	}, nil
}

// Execute performs method on path. Params go in the query string for GET and
// DELETE and in a form body otherwise.
func (c *Client) Execute(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	start := time.Now()
	status := "error"
	defer func() {
		metrics.APIRequests.WithLabelValues(method, status).Inc()
		metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	target := c.baseURL.JoinPath(path)

	result, err := c.cb.Execute(func() (interface{}, error) {
		backoff := c.retryBackoff
		var lastErr error
		for i := 0; i <= c.maxRetries; i++ {
			if i > 0 {
				slog.Info("Retrying request", "method", method, "path", path, "attempt", i, "max_retries", c.maxRetries)
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(backoff):
					backoff *= 2
				}
			}

			req, reqErr := c.newRequest(ctx, method, *target, params)
			if reqErr != nil {
				return nil, reqErr
			}

			body, code, doErr := c.do(req)
			if code != 0 {
				status = strconv.Itoa(code)
			}
			if doErr != nil {
				lastErr = doErr
				c.sampler.Warn(ctx, "request:"+path, "Request failed", "method", method, "path", path, "error", doErr)
				continue
			}

			if code >= http.StatusInternalServerError {
				lastErr = fmt.Errorf("api returned status %d", code)
				slog.Warn("Server error", "method", method, "path", path, "status_code", code)
				continue
			}

			if code < 200 || code >= 300 {
				return nil, &StatusError{StatusCode: code, Body: truncate(string(body), 256)}
			}

			c.sampler.Reset("request:" + path)
			return body, nil
		}
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) newRequest(ctx context.Context, method string, target url.URL, params url.Values) (*http.Request, error) {
	var body io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete, http.MethodHead:
		if len(params) > 0 {
			target.RawQuery = params.Encode()
		}
	default:
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
