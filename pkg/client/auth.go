package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hackspark/hackspark/pkg/domain"
	"github.com/hackspark/hackspark/pkg/schema"
)

var loginShape = schema.EnvelopeOf(domain.AuthenticatedUserShape)

// AuthClient calls the unauthenticated login and the logout endpoints.
type AuthClient struct {
	transport
}

// NewAuth creates an AuthClient.
func NewAuth(cfg Config, opts ...Option) *AuthClient {
	return &AuthClient{transport: newTransport(cfg, opts)}
}

// Login exchanges credentials for an AuthenticatedUser carrying a session id.
func (a *AuthClient) Login(ctx context.Context, req domain.LoginRequest) (_ *domain.AuthenticatedUser, err error) {
	if verr := req.Validate(); verr != nil {
		return nil, fmt.Errorf("client.Login: %w", &Error{
			Kind:    KindInvalidRequest,
			Message: verr.Error(),
			cause:   verr,
		})
	}

	start := time.Now()
	defer func() { a.finish(http.MethodPost, "/auth/login", start, err) }()

	resp, err := a.send(ctx, http.MethodPost, "/auth/login", "", req)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	user, err := unwrap(loginShape, resp)
	if err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &user, nil
}

// Logout ends sessionID on the backend. It is best effort: malformed ids
// are not sent, and every failure is logged and reported as false.
func (a *AuthClient) Logout(ctx context.Context, sessionID string) bool {
	if !domain.ValidSessionID(sessionID) {
		return false
	}

	start := time.Now()
	resp, err := a.send(ctx, http.MethodDelete, "/auth/logout", sessionID, nil)
	if err != nil {
		a.finish(http.MethodDelete, "/auth/logout", start, err)
		return false
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(resp.body, &result); err != nil {
		a.finish(http.MethodDelete, "/auth/logout", start, &Error{
			Kind:    KindInvalidResponse,
			Message: "invalid logout response",
			Status:  resp.status,
		})
		return false
	}
	a.finish(http.MethodDelete, "/auth/logout", start, nil)
	return result.Success
}
