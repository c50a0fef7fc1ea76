// Package session persists the signed login session and turns it into
// authenticated API clients.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hackspark/hackspark/pkg/domain"
)

const (
	DefaultMaxAge         = 24 * time.Hour
	DefaultRememberMaxAge = 30 * 24 * time.Hour

	issuer = "hackspark"
)

// ErrNoSession is returned when there is no usable session: none saved,
// expired, signed with another secret, or carrying an invalid user.
var ErrNoSession = errors.New("no valid session found")

// ErrPinned is returned by Resolver.Login and Resolver.Logout while the
// Token option overrides the session file.
var ErrPinned = errors.New("session is set by HACKSPARK_SESSION; unset it to sign in or out")

// Claims is the signed session token payload. The user fields sit at the
// top level next to the registered claims.
type Claims struct {
	domain.AuthenticatedUser
	Remember bool `json:"remember,omitempty"`
	jwt.RegisteredClaims
}

// Options configures a Store.
type Options struct {
	Path           string // session file, written with mode 0600
	Secret         string // HS256 signing key
	MaxAge         time.Duration
	RememberMaxAge time.Duration
	Token          string           // raw token that takes precedence over Path
	Now            func() time.Time // for tests
}

// Store signs, saves and verifies session tokens.
type Store struct {
	opts Options
}

// NewStore creates a Store, filling in default lifetimes.
func NewStore(opts Options) *Store {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.RememberMaxAge <= 0 {
		opts.RememberMaxAge = DefaultRememberMaxAge
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{opts: opts}
}

// Issue signs a token for user. remember extends its lifetime.
func (s *Store) Issue(user domain.AuthenticatedUser, remember bool) (token string, expires time.Time, err error) {
	now := s.opts.Now()
	maxAge := s.opts.MaxAge
	if remember {
		maxAge = s.opts.RememberMaxAge
	}
	expires = now.Add(maxAge)

	claims := &Claims{
		AuthenticatedUser: user,
		Remember:          remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("session.Issue: %w", err)
	}
	return token, expires, nil
}

// Save signs a token for user and writes it to the session file.
func (s *Store) Save(user domain.AuthenticatedUser, remember bool) error {
	if s.opts.Path == "" {
		return errors.New("session.Save: no session file configured")
	}
	token, _, err := s.Issue(user, remember)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.opts.Path), 0o700); err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	if err := os.WriteFile(s.opts.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("session.Save: %w", err)
	}
	return nil
}

// Pinned reports whether the Token option overrides the session file.
func (s *Store) Pinned() bool {
	return s.opts.Token != ""
}

// Load returns the user of the current session. The Token option wins over
// the session file.
func (s *Store) Load() (*domain.AuthenticatedUser, error) {
	token := s.opts.Token
	if token == "" && s.opts.Path != "" {
		data, err := os.ReadFile(s.opts.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSession
		}
		if err != nil {
			return nil, fmt.Errorf("session.Load: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	return s.Verify(token)
}

// Verify checks token's signature and lifetime and re-validates the user
// it carries.
func (s *Store) Verify(token string) (*domain.AuthenticatedUser, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.opts.Now),
	)
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.opts.Secret), nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	user := claims.AuthenticatedUser
	if user.SessionID == "" {
		return nil, fmt.Errorf("%w: token carries no session id", ErrNoSession)
	}
	if err := domain.AuthenticatedUserShape.Validate(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	return &user, nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	if s.opts.Path == "" {
		return nil
	}
	if err := os.Remove(s.opts.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return nil
}
