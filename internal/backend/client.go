// Package backend calls the external food-delivery API deployments over
// REST and GraphQL.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dominic-source/kadabite-app/internal/logger"
	"github.com/dominic-source/kadabite-app/internal/metrics"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// HTTPError is a non-2xx response from a backend.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration // per attempt
	Retries    uint          // attempts for idempotent calls
	RetryDelay time.Duration
}

// Client sends requests to whichever base URL the caller resolved.
type Client struct {
	http       *resty.Client
	retries    uint
	retryDelay time.Duration
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries == 0 {
		opts.Retries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}

	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout)

	return &Client{
		http:       c,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
	}
}

type request struct {
	operation  string
	baseURL    string
	path       string
	body       any
	bearer     string
	idempotent bool
}

// post sends the request and returns the raw body of a 2xx response. Only
// idempotent requests are retried, and only on transport errors and 5xx.
func (c *Client) post(ctx context.Context, req request) ([]byte, error) {
	attempts := uint(1)
	if req.idempotent {
		attempts = c.retries
	}

	url := strings.TrimRight(req.baseURL, "/") + req.path
	start := time.Now()

	var body []byte
	err := retry.Do(func() error {
		r := c.http.R().
			SetContext(ctx).
			SetBody(req.body)
		if req.bearer != "" {
			r.SetAuthToken(req.bearer)
		}

		resp, err := r.Post(url)
		if err != nil {
			return errors.Wrapf(err, "%s request", req.operation)
		}

		if resp.StatusCode() >= http.StatusBadRequest {
			return newHTTPError(resp)
		}

		body = resp.Body()
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("retrying backend call", map[string]any{
				"operation": req.operation,
				"attempt":   n + 1,
				"error":     err.Error(),
			})
		}),
	)

	metrics.RecordBackendCall(req.operation, time.Since(start), err == nil)
	return body, err
}

func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}

func newHTTPError(resp *resty.Response) *HTTPError {
	raw := resp.Body()

	msg := gjson.GetBytes(raw, "message").String()
	if msg == "" {
		msg = gjson.GetBytes(raw, "error").String()
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	return &HTTPError{
		StatusCode: resp.StatusCode(),
		Message:    msg,
		Body:       raw,
	}
}
