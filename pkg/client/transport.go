package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxBodySize = 4 << 20 // 4 MB

// Config holds the backend connection settings.
type Config struct {
	BackendURL string
	Timeout    time.Duration
}

// HTTPClient is the part of *http.Client the API clients use.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Recorder observes every completed API call. Outcome is "ok" or a Kind.
type Recorder interface {
	ObserveRequest(method, outcome string, d time.Duration)
}

// Option configures a Client or AuthClient.
type Option func(*transport)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(h HTTPClient) Option {
	return func(t *transport) { t.http = h }
}

// WithLogger sets the logger failed calls are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(t *transport) { t.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(t *transport) { t.recorder = r }
}

type transport struct {
	baseURL  string
	http     HTTPClient
	logger   *slog.Logger
	recorder Recorder
}

type response struct {
	status int
	body   []byte
}

func newTransport(cfg Config, opts []Option) transport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	t := transport{
		baseURL: strings.TrimRight(cfg.BackendURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: timeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func (t *transport) url(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return t.baseURL + endpoint
}

// send performs one request. Any non-2xx status is returned as a
// KindRequestFailed error; the body of such a response is only inspected
// for a backend message and code.
func (t *transport) send(ctx context.Context, method, endpoint, token string, body any) (*response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf("encode body: %v", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.url(endpoint), reqBody)
	if err != nil {
		return nil, transportError(method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, transportError(method, endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

// finish logs and records the outcome of a call started at start.
func (t *transport) finish(method, endpoint string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		attrs := []any{"method", method, "endpoint", endpoint, "kind", outcome}
		if status := statusOf(err); status != 0 {
			attrs = append(attrs, "status", status)
		}
		t.logger.Warn("api request failed", append(attrs, "error", err)...)
	}
	if t.recorder != nil {
		t.recorder.ObserveRequest(method, outcome, time.Since(start))
	}
}

func transportError(method, endpoint string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: fmt.Sprintf("%s %s failed: %v", method, endpoint, err),
	}
}

func statusError(status int, body []byte) *Error {
	e := &Error{Kind: KindRequestFailed, Message: "API request failed", Status: status}
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		switch {
		case apiErr.Message != "":
			e.Message = apiErr.Message
		case apiErr.Error != "":
			e.Message = apiErr.Error
		}
		e.Code = apiErr.Code
	}
	return e
}

func statusOf(err error) int {
	if cerr, ok := err.(*Error); ok {
		return cerr.Status
	}
	return 0
}
