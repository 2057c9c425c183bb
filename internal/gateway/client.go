// Package gateway is the typed HTTP client for the platform backend that owns
// DNS resolution, reputation scoring and DKIM key generation. The dashboard
// only reads snapshots and triggers actions through it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sendwatch/mailauth/internal/metrics"
)

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	CheckNowTimeout   time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client holds the transport-level configuration. Credentials are never read
// from ambient state; ForUser binds them explicitly per user.
//
// Deadlines are applied per request through the context, never through
// http.Client.Timeout: a transport-level timeout would cap every call at the
// general timeout and silently override the longer check-now deadline.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	timeout         time.Duration
	checkNowTimeout time.Duration
	limiter         *rate.Limiter
	logger          *zap.Logger
	metrics         *metrics.Collector
}

func NewClient(cfg Config, logger *zap.Logger, collector *metrics.Collector) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	checkNowTimeout := cfg.CheckNowTimeout
	if checkNowTimeout == 0 {
		checkNowTimeout = 60 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 20
	}
	burst := cfg.Burst
	if burst == 0 {
		burst = 40
	}

	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:      &http.Client{},
		timeout:         timeout,
		checkNowTimeout: checkNowTimeout,
		limiter:         rate.NewLimiter(rate.Limit(rps), burst),
		logger:          logger,
		metrics:         collector,
	}
}

// ForUser binds a user credential to the client. The backend authenticates
// dashboard users by email bearer token.
func (c *Client) ForUser(email string) *UserClient {
	return &UserClient{client: c, email: email}
}

type UserClient struct {
	client *Client
	email  string
}

func (c *Client) do(ctx context.Context, operation, email, method, path string, body, out interface{}) error {
	return c.doWithTimeout(ctx, c.timeout, operation, email, method, path, body, out)
}

func (c *Client) doWithTimeout(ctx context.Context, timeout time.Duration, operation, email, method, path string, body, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, timeout, email, method, path, body, out)

	if c.metrics != nil {
		c.metrics.RecordGatewayRequest(operation, err, Kind(err), time.Since(start))
	}
	if err != nil {
		c.logger.Warn("Gateway request failed",
			zap.String("operation", operation),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
	}

	return err
}

func (c *Client) roundTrip(ctx context.Context, timeout time.Duration, email, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+email)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}

	return nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
