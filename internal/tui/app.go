package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hackspark/hackspark/internal/browser"
	"github.com/hackspark/hackspark/internal/guard"
	"github.com/hackspark/hackspark/internal/sanitize"
	"github.com/hackspark/hackspark/internal/session"
	"github.com/hackspark/hackspark/pkg/client"
	"github.com/hackspark/hackspark/pkg/domain"
)

const (
	pathHome      = "/"
	pathLogin     = "/login"
	pathDashboard = "/dashboard"
	pathCreate    = "/create"

	// maxRedirects bounds how many guard redirects one navigation may follow.
	maxRedirects = 3
)

// Sessions is what the TUI needs from session.Resolver.
type Sessions interface {
	Current(ctx context.Context) (*domain.AuthenticatedUser, error)
	CreateAuthenticatedClient(ctx context.Context) (*client.Client, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthenticatedUser, error)
	Logout(ctx context.Context) error
}

// Options configures the App.
type Options struct {
	FrontendURL string
	StartPath   string
}

// navigator collects the guard's Replace calls for the App to apply.
type navigator struct {
	next    string
	pending bool
}

func (n *navigator) Replace(path string) {
	n.next = path
	n.pending = true
}

func (n *navigator) take() (string, bool) {
	if !n.pending {
		return "", false
	}
	n.pending = false
	return n.next, true
}

// sessionLoadedMsg carries the saved session, nil when there is none.
type sessionLoadedMsg struct {
	user *domain.AuthenticatedUser
}

// navigateMsg asks the App to move to path.
type navigateMsg struct {
	path string
}

func navigateCmd(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

type loggedInMsg struct {
	user *domain.AuthenticatedUser
	err  error
}

type loggedOutMsg struct {
	err error
}

// App is the root Bubbletea model. Every path change goes through the
// route guard.
type App struct {
	sessions   Sessions
	guard      *guard.Guard
	nav        *navigator
	status     guard.Status
	path       string
	user       *domain.AuthenticatedUser
	home       homeModel
	login      loginModel
	dashboard  dashboardModel
	create     createModel
	links      []helpItem
	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates a new TUI application. The session status starts as
// loading until Init's session check completes.
func NewApp(s Sessions, opts Options) App {
	nav := &navigator{}
	start := opts.StartPath
	if start == "" {
		start = pathHome
	}
	return App{
		sessions:  s,
		guard:     guard.New(guard.DefaultRules(), nav),
		nav:       nav,
		status:    guard.Loading,
		path:      start,
		home:      newHomeModel(),
		login:     newLoginModel(s),
		dashboard: newDashboardModel(s),
		create:    newCreateModel(),
		links:     helpItems(opts.FrontendURL),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.loadSession())
}

func (a App) loadSession() tea.Cmd {
	s := a.sessions
	return func() tea.Msg {
		user, err := s.Current(context.Background())
		if err != nil {
			return sessionLoadedMsg{}
		}
		return sessionLoadedMsg{user: user}
	}
}

func (a App) logout() tea.Cmd {
	s := a.sessions
	return func() tea.Msg {
		return loggedOutMsg{err: s.Logout(context.Background())}
	}
}

// setStatus records a session change and re-runs the guard on the current path.
func (a App) setStatus(status guard.Status, user *domain.AuthenticatedUser) (App, tea.Cmd) {
	a.status = status
	a.user = user
	if status != guard.Authenticated {
		a.dashboard = newDashboardModel(a.sessions)
	}
	return a.navigate(a.path)
}

// navigate moves to path, then follows guard redirects until the guard
// lets a view render.
func (a App) navigate(path string) (App, tea.Cmd) {
	prev := a.path
	a.path = path
	for i := 0; i < maxRedirects; i++ {
		a.guard.Observe(a.status, a.path)
		next, ok := a.nav.take()
		if !ok {
			break
		}
		a.path = next
	}

	if prev != a.path {
		switch prev {
		case pathDashboard:
			a.dashboard = a.dashboard.leave()
		case pathLogin:
			a.login = newLoginModel(a.sessions)
		case pathCreate:
			a.create = newCreateModel()
		}
	}

	d := guard.Decide(a.guard.Rules(), a.status, a.path)
	if d.Render && a.path == pathDashboard && a.status == guard.Authenticated && !a.dashboard.active() {
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.load()
		return a, cmd
	}
	return a, nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.home, _ = a.home.Update(bodyMsg)
		a.login, _ = a.login.Update(bodyMsg)
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.create, _ = a.create.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionLoadedMsg:
		if msg.user != nil {
			return a.setStatus(guard.Authenticated, msg.user)
		}
		return a.setStatus(guard.Unauthenticated, nil)

	case navigateMsg:
		return a.navigate(msg.path)

	case loggedInMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		return a.setStatus(guard.Authenticated, msg.user)

	case loggedOutMsg:
		if errors.Is(msg.err, session.ErrPinned) {
			a.dashboard.status = "signed in by HACKSPARK_SESSION; unset it to sign out"
			return a, nil
		}
		return a.setStatus(guard.Unauthenticated, nil)

	case detailsLoadedMsg:
		if msg.gen == a.dashboard.gen && sessionLost(msg.err) {
			return a.setStatus(guard.Unauthenticated, nil)
		}
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		return a, cmd

	case techAddedMsg:
		if msg.gen == a.dashboard.gen && sessionLost(msg.err) {
			return a.setStatus(guard.Unauthenticated, nil)
		}
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		return a, cmd

	case logoutRequestMsg:
		return a, a.logout()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(a.links)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				if a.helpCursor < len(a.links) {
					browser.Open(a.links[a.helpCursor].url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				return a.navigate(pathHome)
			case "2":
				return a.navigate(pathLogin)
			case "3":
				return a.navigate(pathDashboard)
			case "4":
				return a.navigate(pathCreate)
			}
		}
	}

	d := guard.Decide(a.guard.Rules(), a.status, a.path)
	if !d.Render {
		return a, nil
	}

	var cmd tea.Cmd
	switch a.path {
	case pathHome:
		a.home, cmd = a.home.Update(msg)
	case pathLogin:
		a.login, cmd = a.login.Update(msg)
	case pathDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case pathCreate:
		a.create, cmd = a.create.Update(msg)
	}
	return a, cmd
}

// sessionLost reports whether err means the saved session no longer works.
func sessionLost(err error) bool {
	return client.IsKind(err, client.KindUnauthenticated) || client.IsStatus(err, http.StatusUnauthorized)
}

func (a App) isEditing() bool {
	if guard.Decide(a.guard.Rules(), a.status, a.path).Placeholder {
		return false
	}
	switch a.path {
	case pathLogin:
		return true
	case pathDashboard:
		return a.dashboard.form.open
	case pathCreate:
		return a.create.editing()
	}
	return false
}

type tabEntry struct {
	key  string
	name string
	path string
}

var tabs = []tabEntry{
	{"1", "Home", pathHome},
	{"2", "Sign in", pathLogin},
	{"3", "Dashboard", pathDashboard},
	{"4", "Create", pathCreate},
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := centerLine(logo, lipgloss.Width(logo), a.width) + "\n"
	if a.user != nil {
		who := metaStyle.Render("signed in as ") + dimStyle.Render(sanitize.Text(a.user.Username))
		header += centerLine(who, lipgloss.Width(who), a.width)
	}

	// Tab bar: equal-width columns spread across the terminal
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.path == a.path {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	d := guard.Decide(a.guard.Rules(), a.status, a.path)
	switch {
	case d.Placeholder:
		spinner := []string{"◐", "◓", "◑", "◒"}[a.frame/3%4]
		body = "\n " + accentStyle.Render(spinner) + " " + dimStyle.Render("checking your session...")
		help = helpBar("q", "quit")
	case !d.Render:
		body = ""
		help = ""
	default:
		body, help = a.viewBody()
	}

	if a.helpOpen {
		body = helpView(a.links, a.helpCursor)
		help = helpBar("j/k", "nav", "enter", "open", "esc", "close")
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}

func (a App) viewBody() (body, help string) {
	switch a.path {
	case pathHome:
		return a.home.View(), helpBar("1-4", "tabs", "l", "sign in", "c", "create", "h", "help", "q", "quit")
	case pathLogin:
		return a.login.View(), helpBar("tab", "next", "space", "remember", "enter", "sign in", "esc", "home")
	case pathDashboard:
		return a.dashboard.View(), a.dashboard.helpKeys()
	case pathCreate:
		return a.create.View(), a.create.helpKeys()
	}
	return " " + dimStyle.Render("page not found"), helpBar("1", "home")
}
