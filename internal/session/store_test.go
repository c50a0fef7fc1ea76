package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hackspark/hackspark/pkg/domain"
)

const testSessionID = "sess_abcdefghijklmnopqrstuvwxyz"

var testUser = domain.AuthenticatedUser{
	ID:        "u1",
	Email:     "jo@do.io",
	FirstName: "Jo",
	LastName:  "Do",
	Username:  "jodo",
	SessionID: testSessionID,
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestStore(t *testing.T, c *clock) *Store {
	t.Helper()
	return NewStore(Options{
		Path:   filepath.Join(t.TempDir(), "hackspark", "session"),
		Secret: "test-secret",
		Now:    c.Now,
	})
}

func TestSaveLoad(t *testing.T) {
	c := &clock{now: time.Now()}
	s := newTestStore(t, c)

	if err := s.Save(testUser, false); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	info, err := os.Stat(s.opts.Path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if *got != testUser {
		t.Errorf("Load() = %+v, want %+v", *got, testUser)
	}
}

func TestLoad_NoSession(t *testing.T) {
	s := newTestStore(t, &clock{now: time.Now()})
	if _, err := s.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() error = %v, want ErrNoSession", err)
	}
}

func TestLoad_Expiry(t *testing.T) {
	tests := []struct {
		name     string
		remember bool
		after    time.Duration
		wantErr  bool
	}{
		{"fresh", false, time.Hour, false},
		{"day old", false, 25 * time.Hour, true},
		{"remembered day old", true, 25 * time.Hour, false},
		{"remembered month old", true, 31 * 24 * time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clock{now: time.Now()}
			s := newTestStore(t, c)
			if err := s.Save(testUser, tt.remember); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			c.now = c.now.Add(tt.after)
			_, err := s.Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNoSession) {
				t.Errorf("Load() error = %v, want ErrNoSession", err)
			}
		})
	}
}

func TestVerify_Tampered(t *testing.T) {
	c := &clock{now: time.Now()}
	s := newTestStore(t, c)
	token, _, err := s.Issue(testUser, false)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	other := NewStore(Options{Secret: "another-secret", Now: c.Now})
	if _, err := other.Verify(token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Verify() with wrong secret error = %v, want ErrNoSession", err)
	}
	if _, err := s.Verify(token + "x"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Verify() of altered token error = %v, want ErrNoSession", err)
	}
	if _, err := s.Verify("not-a-token"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Verify() of garbage error = %v, want ErrNoSession", err)
	}
}

func TestVerify_RejectsInvalidUser(t *testing.T) {
	c := &clock{now: time.Now()}
	s := newTestStore(t, c)

	noSession := testUser
	noSession.SessionID = ""
	token, _, err := s.Issue(noSession, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Verify(token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Verify() without session id error = %v, want ErrNoSession", err)
	}

	badEmail := testUser
	badEmail.Email = "nope"
	token, _, err = s.Issue(badEmail, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Verify(token); !errors.Is(err, ErrNoSession) {
		t.Errorf("Verify() with bad email error = %v, want ErrNoSession", err)
	}
}

func TestLoad_TokenOptionWins(t *testing.T) {
	c := &clock{now: time.Now()}
	s := newTestStore(t, c)
	other := testUser
	other.Username = "from-env"
	token, _, err := s.Issue(other, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(testUser, false); err != nil {
		t.Fatal(err)
	}

	withToken := NewStore(Options{Path: s.opts.Path, Secret: "test-secret", Token: token, Now: c.Now})
	got, err := withToken.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Username != "from-env" {
		t.Errorf("Username = %q, want %q", got.Username, "from-env")
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t, &clock{now: time.Now()})
	if err := s.Clear(); err != nil {
		t.Errorf("Clear() of absent session error: %v", err)
	}
	if err := s.Save(testUser, false); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load() after Clear() error = %v, want ErrNoSession", err)
	}
}
