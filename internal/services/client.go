package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 4096
	requestIDHeader  = "X-Request-ID"
)

var (
	ErrBaseURLRequired = errors.New("task service base url is required")
	ErrMissingToken    = errors.New("authorization token is required")
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds each request; zero means the default, negative disables it.
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *Metrics
	Limiter *RateLimiter
}

type client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
	metrics *Metrics
	limiter *RateLimiter
}

func newClient(opts Options) (*client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURLRequired
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid task service url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &client{
		baseURL: base,
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
		metrics: opts.Metrics,
		limiter: opts.Limiter,
	}, nil
}

type request struct {
	op          string // metric/log label
	failure     string // error text shown to the user, e.g. "failed to fetch tasks"
	fallback    string // message when the error body has none
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

// do performs the request and returns the raw response body of a
// successful (< 400) response.
func (c *client) do(ctx context.Context, req request) ([]byte, error) {
	if !c.limiter.Allow(req.op) {
		c.logger.Warn("task_service_request throttled", zap.String("op", req.op))
		return nil, fmt.Errorf("%s: %w", req.failure, ErrRateLimited)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.failure, err)
	}

	contentType := req.contentType
	if contentType == "" {
		contentType = "application/json"
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start)

	fields := []zap.Field{
		zap.String("op", req.op),
		zap.String("method", req.method),
		zap.String("url", target),
		zap.String("request_id", requestID),
		zap.Duration("latency", latency),
	}
	if err != nil {
		c.metrics.observe(req.op, 0, latency)
		c.logger.Error("task_service_request", append(fields, zap.Error(err))...)
		return nil, fmt.Errorf("%s: %w", req.failure, err)
	}
	defer resp.Body.Close()

	c.metrics.observe(req.op, resp.StatusCode, latency)
	c.logger.Debug("task_service_request", append(fields, zap.Int("status", resp.StatusCode))...)

	if resp.StatusCode >= http.StatusBadRequest {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		msg := errorMessage(slurp)
		if msg == "" {
			msg = req.fallback
		}
		return nil, &StatusError{
			Op:         req.failure,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", req.failure, err)
	}
	return body, nil
}

func decodeJSON(body []byte, failure string, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", failure, err)
	}
	return nil
}

func (c *client) close() {
	if c != nil && c.http != nil {
		c.http.CloseIdleConnections()
	}
}
