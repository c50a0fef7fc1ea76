// Package client is the typed HackSpark backend API client. Every response
// is checked against a schema.Shape before it reaches the caller.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hackspark/hackspark/pkg/domain"
	"github.com/hackspark/hackspark/pkg/schema"
)

// Client makes authenticated calls on behalf of one session.
type Client struct {
	transport
	sessionID string
}

// New creates a client bound to sessionID. A client with an empty
// sessionID fails every call with KindUnauthenticated.
func New(cfg Config, sessionID string, opts ...Option) *Client {
	return &Client{transport: newTransport(cfg, opts), sessionID: sessionID}
}

// SessionID returns the credential the client sends.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Get fetches endpoint and returns the envelope data matching shape.
func Get[T any](ctx context.Context, c *Client, endpoint string, shape schema.Shape[T]) (T, error) {
	return do(ctx, c, http.MethodGet, endpoint, shape, nil)
}

// Post sends body to endpoint and returns the envelope data matching shape.
func Post[T any](ctx context.Context, c *Client, endpoint string, shape schema.Shape[T], body any) (T, error) {
	return do(ctx, c, http.MethodPost, endpoint, shape, body)
}

// Put sends body to endpoint and returns the envelope data matching shape.
func Put[T any](ctx context.Context, c *Client, endpoint string, shape schema.Shape[T], body any) (T, error) {
	return do(ctx, c, http.MethodPut, endpoint, shape, body)
}

// Delete calls endpoint with DELETE. The response body is not read as an
// envelope; any 2xx status is success.
func Delete(ctx context.Context, c *Client, endpoint string) (err error) {
	if c.sessionID == "" {
		return errNoCredential()
	}
	start := time.Now()
	defer func() { c.finish(http.MethodDelete, endpoint, start, err) }()

	_, err = c.send(ctx, http.MethodDelete, endpoint, c.sessionID, nil)
	return err
}

func do[T any](ctx context.Context, c *Client, method, endpoint string, shape schema.Shape[T], body any) (out T, err error) {
	if c.sessionID == "" {
		return out, errNoCredential()
	}
	start := time.Now()
	defer func() { c.finish(method, endpoint, start, err) }()

	resp, err := c.send(ctx, method, endpoint, c.sessionID, body)
	if err != nil {
		return out, err
	}
	return unwrap(schema.EnvelopeOf(shape), resp)
}

// unwrap validates the envelope and returns its data, or the envelope's
// failure as a KindRequestFailed error.
func unwrap[T any](shape schema.EnvelopeShape[T], resp *response) (T, error) {
	var zero T
	env, err := shape.Parse(resp.body)
	if err != nil {
		return zero, &Error{
			Kind:    KindInvalidResponse,
			Message: "invalid API response shape",
			Status:  resp.status,
			cause:   err,
		}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "API request failed"
		}
		return zero, &Error{Kind: KindRequestFailed, Message: msg, Status: resp.status}
	}
	return env.Data, nil
}

func errNoCredential() *Error {
	return &Error{
		Kind:    KindUnauthenticated,
		Message: "authentication required to make this request",
		Status:  http.StatusUnauthorized,
	}
}

// UserDetails returns the authenticated user's profile.
func (c *Client) UserDetails(ctx context.Context) (domain.UserDetails, error) {
	d, err := Get(ctx, c, "/users/me", domain.UserDetailsShape)
	if err != nil {
		return domain.UserDetails{}, fmt.Errorf("client.UserDetails: %w", err)
	}
	return d, nil
}

// AddTechnology adds a technology to the authenticated user's profile.
// An invalid request is rejected before any network activity.
func (c *Client) AddTechnology(ctx context.Context, req domain.AddTechnologyRequest) (domain.Technology, error) {
	if err := req.Validate(); err != nil {
		return domain.Technology{}, fmt.Errorf("client.AddTechnology: %w", &Error{
			Kind:    KindInvalidRequest,
			Message: err.Error(),
			cause:   err,
		})
	}
	tech, err := Post(ctx, c, "/users/me/technologies", domain.TechnologyShape, req)
	if err != nil {
		return domain.Technology{}, fmt.Errorf("client.AddTechnology: %w", err)
	}
	return tech, nil
}
