package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hackspark/hackspark/pkg/client"
	"github.com/hackspark/hackspark/pkg/domain"
)

// Resolver maps the current session to API clients.
type Resolver struct {
	store  *Store
	cfg    client.Config
	opts   []client.Option
	auth   *client.AuthClient
	logger *slog.Logger
}

// NewResolver creates a Resolver. opts are applied to every client it builds.
func NewResolver(store *Store, cfg client.Config, logger *slog.Logger, opts ...client.Option) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		store:  store,
		cfg:    cfg,
		opts:   opts,
		auth:   client.NewAuth(cfg, opts...),
		logger: logger,
	}
}

// Current returns the user of the session in ctx, or of the Store when ctx
// carries no token.
func (r *Resolver) Current(ctx context.Context) (*domain.AuthenticatedUser, error) {
	if tok, ok := TokenFromContext(ctx); ok {
		return r.store.Verify(tok)
	}
	return r.store.Load()
}

// CreateAuthenticatedClient returns a client bound to the current session's
// credential. Without one it fails with a 401 client.KindUnauthenticated error.
func (r *Resolver) CreateAuthenticatedClient(ctx context.Context) (*client.Client, error) {
	user, err := r.Current(ctx)
	if err != nil || user.SessionID == "" {
		if err != nil {
			r.logger.Debug("no session", "error", err)
		}
		return nil, &client.Error{
			Kind:    client.KindUnauthenticated,
			Message: ErrNoSession.Error(),
			Status:  http.StatusUnauthorized,
		}
	}
	return client.New(r.cfg, user.SessionID, r.opts...), nil
}

// SignIn logs in against the backend and returns the user with a signed
// token, without saving anything.
func (r *Resolver) SignIn(ctx context.Context, req domain.LoginRequest) (*domain.AuthenticatedUser, string, error) {
	user, err := r.auth.Login(ctx, req)
	if err != nil {
		return nil, "", fmt.Errorf("session.SignIn: %w", err)
	}
	token, _, err := r.store.Issue(*user, req.Remember)
	if err != nil {
		return nil, "", fmt.Errorf("session.SignIn: %w", err)
	}
	return user, token, nil
}

// Login logs in against the backend and saves the session. It fails with
// ErrPinned when the Store's token overrides the session file.
func (r *Resolver) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthenticatedUser, error) {
	if r.store.Pinned() {
		return nil, fmt.Errorf("session.Login: %w", ErrPinned)
	}
	user, err := r.auth.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("session.Login: %w", err)
	}
	if err := r.store.Save(*user, req.Remember); err != nil {
		return nil, fmt.Errorf("session.Login: %w", err)
	}
	r.logger.Info("logged in", "user_id", user.ID)
	return user, nil
}

// Logout ends the backend session on a best-effort basis. When ctx carries
// no per-request token the saved session is then always cleared, unless the
// Store is pinned, in which case nothing happens and ErrPinned is returned.
func (r *Resolver) Logout(ctx context.Context) error {
	_, perRequest := TokenFromContext(ctx)
	if !perRequest && r.store.Pinned() {
		return fmt.Errorf("session.Logout: %w", ErrPinned)
	}
	if user, err := r.Current(ctx); err == nil {
		if !r.auth.Logout(ctx, user.SessionID) {
			r.logger.Warn("backend logout failed", "user_id", user.ID)
		}
	}
	if perRequest {
		return nil
	}
	return r.store.Clear()
}
