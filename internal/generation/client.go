package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"productshot/config"

	"github.com/charmbracelet/log"
)

const (
	generatePath = "/generate"

	// error bodies are kept for diagnostics only
	maxSnippet = 8 << 10
)

// Client talks to the generation service over HTTP. One call is exactly one
// round trip; retries belong to WithRetry.
type Client struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
	log        *log.Logger
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client. Its own Timeout, if any,
// still applies on top of the configured generation timeout.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func NewClient(cfg config.GenerationConfig, opts ...ClientOption) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = config.DefaultTimeoutMs * time.Millisecond
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseUrl), "/")
	if base == "" {
		base = config.DefaultBaseUrl
	}

	c := &Client{
		httpClient: &http.Client{},
		endpoint:   base + generatePath,
		timeout:    timeout,
		log:        log.With("component", "generation"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Generate POSTs req and returns the decoded response or a *Error.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, unknownError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, unknownError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.log.Debug("generation started", "endpoint", c.endpoint, "category", req.Category, "style", req.Style)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		gerr := classifyTransport(ctx, err)
		c.log.Warn("generation failed", "code", gerr.Code(), "dur", time.Since(start).String(), "err", err)
		return nil, gerr
	}
	defer resp.Body.Close()

	responseBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil && timedOut(ctx, readErr) {
		c.log.Warn("generation failed", "code", KindTimeout, "dur", time.Since(start).String(), "err", readErr)
		return nil, timeoutError(readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gerr := httpError(resp.StatusCode, errorMessage(responseBytes), snippet(responseBytes))
		c.log.Warn("generation rejected", "code", gerr.Code(), "status", resp.Status, "dur", time.Since(start).String())
		return nil, gerr
	}

	if readErr != nil {
		return nil, unknownError(readErr)
	}

	var out Response
	if err := json.Unmarshal(responseBytes, &out); err != nil {
		c.log.Warn("generation response malformed", "err", err, "body", snippet(responseBytes))
		return nil, unknownError(err)
	}

	c.log.Info("generation completed", "images", len(out.Images), "success", out.Success, "dur", time.Since(start).String())
	return &out, nil
}

func timedOut(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func classifyTransport(ctx context.Context, err error) *Error {
	if timedOut(ctx, err) {
		return timeoutError(err)
	}
	if errors.Is(err, context.Canceled) {
		return unknownError(err)
	}
	return networkError(err)
}

// errorMessage pulls the "error" field out of a failed response, if any.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippet {
		s = s[:maxSnippet]
	}
	return s
}
