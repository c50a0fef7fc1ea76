package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hackspark/hackspark/pkg/client"
	"github.com/hackspark/hackspark/pkg/domain"
)

type fakeBackend struct {
	logouts atomic.Int32
	srv     *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if req.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok", "data": testUser}) //nolint:errcheck
	})
	mux.HandleFunc("DELETE /api/v1/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		b.logouts.Add(1)
		w.Write([]byte(`{"success":true,"message":"bye"}`)) //nolint:errcheck
	})
	mux.HandleFunc("GET /api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testSessionID {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"success":true,"message":"ok","data":{"firstName":"Jo","lastName":"Do","username":"jodo","email":"jo@do.io"}}`)) //nolint:errcheck
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func newTestResolver(t *testing.T, b *fakeBackend) (*Resolver, *Store) {
	t.Helper()
	s := newTestStore(t, &clock{now: time.Now()})
	return NewResolver(s, client.Config{BackendURL: b.srv.URL}, nil), s
}

func TestCreateAuthenticatedClient_NoSession(t *testing.T) {
	b := newFakeBackend(t)
	r, _ := newTestResolver(t, b)

	c, err := r.CreateAuthenticatedClient(context.Background())
	if c != nil {
		t.Error("client returned without a session")
	}
	if !client.IsKind(err, client.KindUnauthenticated) || !client.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("error = %v, want unauthenticated 401", err)
	}
}

func TestLoginThenClient(t *testing.T) {
	b := newFakeBackend(t)
	r, _ := newTestResolver(t, b)
	ctx := context.Background()

	user, err := r.Login(ctx, domain.LoginRequest{Email: "jo@do.io", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if user.SessionID != testSessionID {
		t.Errorf("SessionID = %q", user.SessionID)
	}

	c, err := r.CreateAuthenticatedClient(ctx)
	if err != nil {
		t.Fatalf("CreateAuthenticatedClient() error: %v", err)
	}
	if c.SessionID() != testSessionID {
		t.Errorf("client SessionID = %q", c.SessionID())
	}
	d, err := c.UserDetails(ctx)
	if err != nil {
		t.Fatalf("UserDetails() error: %v", err)
	}
	if d.Username != "jodo" {
		t.Errorf("Username = %q", d.Username)
	}
}

func TestLogin_BadCredentialsSavesNothing(t *testing.T) {
	b := newFakeBackend(t)
	r, s := newTestResolver(t, b)

	if _, err := r.Login(context.Background(), domain.LoginRequest{Email: "jo@do.io", Password: "wrong-pass"}); err == nil {
		t.Fatal("Login() expected error")
	}
	if _, err := s.Load(); err == nil {
		t.Error("session saved after failed login")
	}
}

func TestLogout_ClearsAndCallsBackend(t *testing.T) {
	b := newFakeBackend(t)
	r, s := newTestResolver(t, b)
	ctx := context.Background()
	if err := s.Save(testUser, false); err != nil {
		t.Fatal(err)
	}

	if err := r.Logout(ctx); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if got := b.logouts.Load(); got != 1 {
		t.Errorf("backend logouts = %d, want 1", got)
	}
	if _, err := s.Load(); err == nil {
		t.Error("session still present after Logout()")
	}
}

func TestLogout_BackendDownStillClears(t *testing.T) {
	b := newFakeBackend(t)
	r, s := newTestResolver(t, b)
	if err := s.Save(testUser, false); err != nil {
		t.Fatal(err)
	}
	b.srv.Close()

	if err := r.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if _, err := s.Load(); err == nil {
		t.Error("session still present after Logout()")
	}
}

func TestContextTokenTakesPrecedence(t *testing.T) {
	b := newFakeBackend(t)
	r, s := newTestResolver(t, b)

	token, _, err := s.Issue(testUser, false)
	if err != nil {
		t.Fatal(err)
	}
	ctx := ContextWithToken(context.Background(), token)
	if _, err := r.CreateAuthenticatedClient(ctx); err != nil {
		t.Fatalf("CreateAuthenticatedClient() error: %v", err)
	}

	bad := ContextWithToken(context.Background(), "garbage")
	if err := s.Save(testUser, false); err != nil {
		t.Fatal(err)
	}
	if _, err := r.CreateAuthenticatedClient(bad); !client.IsKind(err, client.KindUnauthenticated) {
		t.Errorf("error = %v, want unauthenticated even with a saved session", err)
	}
}

func TestSignInDoesNotSave(t *testing.T) {
	b := newFakeBackend(t)
	r, s := newTestResolver(t, b)

	user, token, err := r.SignIn(context.Background(), domain.LoginRequest{Email: "jo@do.io", Password: "hunter22"})
	if err != nil {
		t.Fatalf("SignIn() error: %v", err)
	}
	if got, err := s.Verify(token); err != nil || got.ID != user.ID {
		t.Errorf("Verify(token) = %v, %v", got, err)
	}
	if _, err := s.Load(); err == nil {
		t.Error("SignIn() saved a session")
	}
}

func TestPinnedStoreRefusesLoginAndLogout(t *testing.T) {
	b := newFakeBackend(t)
	c := &clock{now: time.Now()}
	base := newTestStore(t, c)
	token, _, err := base.Issue(testUser, false)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(Options{Path: base.opts.Path, Secret: "test-secret", Token: token, Now: c.Now})
	r := NewResolver(s, client.Config{BackendURL: b.srv.URL}, nil)
	ctx := context.Background()

	if _, err := r.Login(ctx, domain.LoginRequest{Email: "jo@do.io", Password: "hunter22"}); !errors.Is(err, ErrPinned) {
		t.Errorf("Login() error = %v, want ErrPinned", err)
	}
	if _, err := os.Stat(base.opts.Path); !os.IsNotExist(err) {
		t.Error("session file written while pinned")
	}
	if err := r.Logout(ctx); !errors.Is(err, ErrPinned) {
		t.Errorf("Logout() error = %v, want ErrPinned", err)
	}
	if got := b.logouts.Load(); got != 0 {
		t.Errorf("backend logouts = %d, want 0", got)
	}
	if _, err := r.Current(ctx); err != nil {
		t.Errorf("Current() error = %v, pinned session should stay active", err)
	}

	// A per-request token still logs out normally.
	if err := r.Logout(ContextWithToken(ctx, token)); err != nil {
		t.Errorf("Logout() with request token error: %v", err)
	}
}
