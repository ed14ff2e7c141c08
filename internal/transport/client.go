package transport

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aiservice/poseul/internal/logging"
)

const (
	// DefaultTimeout is used when a caller passes a zero timeout
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies the client to the backend
	DefaultUserAgent = "poseul-client"

	// RequestIDHeader carries the per-exchange correlation id
	RequestIDHeader = "X-Request-ID"
)

// Response is the raw outcome of one HTTP exchange. Non-2xx responses are
// returned as responses, not errors.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// OK reports whether the status code is 2xx
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Executor performs a single request/response exchange.
// Gateways depend on this interface so tests can substitute a Recorder.
type Executor interface {
	Execute(ctx context.Context, method, path string, body []byte, timeout time.Duration) (*Response, error)
}

// Client is an HTTP Executor bound to one backend base URL
type Client struct {
	// BaseURL is the backend root (e.g., "http://10.0.2.2:5000")
	BaseURL string

	// UserAgent is sent on every request
	UserAgent string

	// HTTPClient is the underlying HTTP client. Its own Timeout is left at
	// zero; each Execute call bounds the exchange with a context deadline.
	HTTPClient *http.Client
}

// NewClient creates a client for the given base URL. Connections are never
// reused: keep-alives are disabled and every request asks the server to close.
func NewClient(baseURL string) *Client {
	dialer := &net.Dialer{KeepAlive: -1}
	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialContext:       dialer.DialContext,
		DisableKeepAlives: true,
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  DefaultUserAgent,
		HTTPClient: &http.Client{Transport: tr},
	}
}

// Execute sends one request and reads the full response body.
// timeout bounds connection establishment and the body read together.
// No retries are attempted.
func (c *Client) Execute(ctx context.Context, method, path string, body []byte, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	requestID := uuid.NewString()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindOther, Method: method, Path: path, Detail: "failed to create request", Err: err}
	}

	req.Close = true
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	logging.LogRequest(requestID, method, path, len(body))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		terr := classify(method, path, err, ctx.Err())
		logging.LogTransportFailure(requestID, method, path, terr, time.Since(start))
		return nil, terr
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := classify(method, path, err, ctx.Err())
		terr.Detail = "failed to read response body: " + terr.Detail
		logging.LogTransportFailure(requestID, method, path, terr, time.Since(start))
		return nil, terr
	}

	logging.LogResponse(requestID, resp.StatusCode, data, time.Since(start))

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		RequestID:  requestID,
	}, nil
}
