// Package recordstore is the HTTP client for the external candidate record
// store: existing candidates, job records, bot configuration and the writes
// that import candidates and attach scoring results.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/go-resty/resty/v2"
	"github.com/jonathan/talent-sourcing/internal/logging"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the record store used when none is configured.
	DefaultBaseURL = "http://localhost:3001"
	// DefaultActor is recorded as the author of every write.
	DefaultActor = "AIBot-pipeline"
	// DefaultListLimit bounds candidate listings.
	DefaultListLimit = 2000

	readTimeout  = 15 * time.Second
	writeTimeout = 20 * time.Second

	maxErrorBodyRunes = 200
)

// APIError is a non-success response from the record store.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// Retryable reports whether the failure is transient.
func (e *APIError) Retryable() bool {
	switch e.Status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Actor   string
	// RetryDelay is the pause before a write is retried.
	RetryDelay time.Duration
}

// Client talks to the record store.
type Client struct {
	http       *resty.Client
	actor      string
	retryDelay time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// New creates a record store client.
func New(opts Options, logger *zap.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Actor == "" {
		opts.Actor = DefaultActor
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &Client{http: r, actor: opts.Actor, retryDelay: opts.RetryDelay, now: time.Now, logger: logger}
}

// Actor returns the name recorded on writes.
func (c *Client) Actor() string { return c.actor }

// envelope checks the {success, data} wrapper and returns the parsed body.
func envelope(method, path string, resp *resty.Response) (gjson.Result, error) {
	body := gjson.ParseBytes(resp.Body())
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		msg := body.Get("error").String()
		if msg == "" {
			// proxies in front of the store answer with HTML pages
			msg = logging.TruncateForLog(string(resp.Body()), maxErrorBodyRunes)
		}
		return gjson.Result{}, &APIError{Method: method, Path: path, Status: resp.StatusCode(), Message: msg}
	}
	if !body.IsObject() || !body.Get("success").Bool() {
		msg := body.Get("error").String()
		if msg == "" {
			msg = "response not marked successful"
		}
		return gjson.Result{}, &APIError{Method: method, Path: path, Status: resp.StatusCode(), Message: msg}
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) (gjson.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).SetQueryParams(query).Get(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("GET %s failed: %w", path, err)
	}
	return envelope(http.MethodGet, path, resp)
}

// write sends a JSON body, retrying once on transient failures.
func (c *Client) write(ctx context.Context, method, path string, body any) (gjson.Result, error) {
	return retry.DoWithData(
		func() (gjson.Result, error) {
			ctx, cancel := context.WithTimeout(ctx, writeTimeout)
			defer cancel()

			resp, err := c.http.R().SetContext(ctx).SetBody(body).Execute(method, path)
			if err != nil {
				return gjson.Result{}, fmt.Errorf("%s %s failed: %w", method, path, err)
			}
			return envelope(method, path, resp)
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(c.retryDelay),
		retry.MaxJitter(c.retryDelay/2),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying record store write", zap.String("path", path), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}
