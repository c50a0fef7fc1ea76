package tui

import (
	"context"
	"errors"
	"net/http"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hackspark/hackspark/pkg/client"
	"github.com/hackspark/hackspark/pkg/domain"
)

const testSession = "sess_abcdefghijklmnopqrstuvwxyz"

var testUser = domain.AuthenticatedUser{
	ID:        "u_1",
	Email:     "ada@example.com",
	FirstName: "Ada",
	LastName:  "Lovelace",
	Username:  "ada",
	SessionID: testSession,
}

// fakeSessions is an in-memory Sessions. client, when set, is handed out
// to authenticated callers.
type fakeSessions struct {
	mu        sync.Mutex
	user      *domain.AuthenticatedUser
	loginErr  error
	client    *client.Client
	logins    []domain.LoginRequest
	logouts   int
	logoutErr error
	clientErr error
}

func (f *fakeSessions) Current(context.Context) (*domain.AuthenticatedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, errors.New("no valid session found")
	}
	u := *f.user
	return &u, nil
}

func (f *fakeSessions) CreateAuthenticatedClient(context.Context) (*client.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clientErr != nil {
		return nil, f.clientErr
	}
	if f.user == nil || f.client == nil {
		return nil, &client.Error{Kind: client.KindUnauthenticated, Message: "no valid session found", Status: http.StatusUnauthorized}
	}
	return f.client, nil
}

func (f *fakeSessions) Login(_ context.Context, req domain.LoginRequest) (*domain.AuthenticatedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, req)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	u := testUser
	u.Email = req.Email
	f.user = &u
	return &u, nil
}

func (f *fakeSessions) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.user = nil
	return nil
}

// key builds the KeyMsg bubbletea delivers for s.
func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
