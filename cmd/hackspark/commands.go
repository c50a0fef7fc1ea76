package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/pflag"

	"github.com/hackspark/hackspark/internal/browser"
	"github.com/hackspark/hackspark/internal/sanitize"
	"github.com/hackspark/hackspark/internal/server"
	"github.com/hackspark/hackspark/internal/session"
	"github.com/hackspark/hackspark/internal/tui"
	"github.com/hackspark/hackspark/pkg/client"
	"github.com/hackspark/hackspark/pkg/domain"
)

var errNotSignedIn = errors.New("not signed in; run hackspark login")

// authenticated returns a client for the saved session.
func (rt *runtime) authenticated(ctx context.Context) (*client.Client, error) {
	c, err := rt.resolver.CreateAuthenticatedClient(ctx)
	if client.IsKind(err, client.KindUnauthenticated) {
		return nil, errNotSignedIn
	}
	return c, err
}

func tuiCommand(fs *pflag.FlagSet) func(*runtime, []string) error {
	start := fs.String("start", "/", "view to open: /, /login, /dashboard or /create")
	return func(rt *runtime, args []string) error {
		if len(args) > 0 {
			return fmt.Errorf("unexpected argument: %s", args[0])
		}
		app := tui.NewApp(rt.resolver, tui.Options{
			FrontendURL: rt.cfg.FrontendURL,
			StartPath:   *start,
		})
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("tui error: %w", err)
		}
		return nil
	}
}

func loginCommand(fs *pflag.FlagSet) func(*runtime, []string) error {
	email := fs.String("email", "", "account email (prompted when empty)")
	remember := fs.Bool("remember", false, "keep the session for 30 days instead of 24 hours")
	return func(rt *runtime, _ []string) error {
		if rt.store.Pinned() {
			return session.ErrPinned
		}
		in := bufio.NewReader(rt.std.in)
		addr := strings.TrimSpace(*email)
		if addr == "" {
			fmt.Fprint(rt.std.err, "Email: ")
			line, err := readLine(in)
			if err != nil {
				return fmt.Errorf("read email: %w", err)
			}
			addr = line
		}
		fmt.Fprint(rt.std.err, "Password: ")
		password, err := readPassword(rt.std.in, in)
		fmt.Fprintln(rt.std.err)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		req := domain.LoginRequest{Email: addr, Password: password, Remember: *remember}
		user, err := rt.resolver.Login(context.Background(), req)
		if err != nil {
			if client.IsKind(err, client.KindInvalidRequest) || client.IsStatus(err, 401) {
				return errors.New("invalid email or password")
			}
			return err
		}
		fmt.Fprintf(rt.std.out, "Signed in as @%s\n", sanitize.Text(user.Username))
		return nil
	}
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(stdin io.Reader, buffered *bufio.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(f.Fd()) {
		b, err := term.ReadPassword(f.Fd())
		return string(b), err
	}
	return readLine(buffered)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func logoutCommand(*pflag.FlagSet) func(*runtime, []string) error {
	return func(rt *runtime, _ []string) error {
		if rt.store.Pinned() {
			return session.ErrPinned
		}
		if _, err := rt.resolver.Current(context.Background()); err != nil {
			fmt.Fprintln(rt.std.out, "Already signed out.")
			return nil
		}
		if err := rt.resolver.Logout(context.Background()); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Fprintln(rt.std.out, "Signed out.")
		return nil
	}
}

func meCommand(fs *pflag.FlagSet) func(*runtime, []string) error {
	asJSON := fs.Bool("json", false, "print the raw profile as JSON")
	return func(rt *runtime, _ []string) error {
		ctx := context.Background()
		c, err := rt.authenticated(ctx)
		if err != nil {
			return err
		}
		details, err := c.UserDetails(ctx)
		if err != nil {
			return err
		}
		if *asJSON {
			enc := json.NewEncoder(rt.std.out)
			enc.SetIndent("", "  ")
			return enc.Encode(details)
		}
		printDetails(rt.std.out, details)
		return nil
	}
}

func printDetails(w io.Writer, d domain.UserDetails) {
	fmt.Fprintf(w, "%s %s (@%s) <%s>\n",
		sanitize.Text(d.FirstName), sanitize.Text(d.LastName), sanitize.Text(d.Username), sanitize.Text(d.Email))
	fmt.Fprintf(w, "\nTechnologies (%d)\n", len(d.Technologies))
	for _, t := range d.Technologies {
		line := fmt.Sprintf("  %-20s %s", sanitize.Text(t.Name), t.SkillLevel)
		if t.YearsExperience != nil {
			line += fmt.Sprintf(", %g years", *t.YearsExperience)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nProjects (%d)\n", len(d.Projects))
	for _, p := range d.Projects {
		fmt.Fprintf(w, "  %s  %s  (%d likes, %d stars)\n", sanitize.Text(p.ID), sanitize.Text(p.Name), p.LikeCount, p.StarCount)
		if desc := strings.Join(strings.Fields(sanitize.Text(p.Description)), " "); desc != "" {
			fmt.Fprintf(w, "    %s\n", desc)
		}
	}
}

func addTechCommand(fs *pflag.FlagSet) func(*runtime, []string) error {
	slug := fs.String("slug", "", "technology tag slug, e.g. golang")
	level := fs.String("level", string(domain.SkillBeginner), "beginner, intermediate or expert")
	years := fs.Float64("years", 0, "years of experience")
	return func(rt *runtime, args []string) error {
		if *slug == "" && len(args) > 0 {
			*slug = args[0]
		}
		req := domain.AddTechnologyRequest{
			TagSlug:         strings.TrimSpace(*slug),
			SkillLevel:      domain.SkillLevel(*level),
			YearsExperience: *years,
		}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("add-tech: %w", err)
		}
		ctx := context.Background()
		c, err := rt.authenticated(ctx)
		if err != nil {
			return err
		}
		tech, err := c.AddTechnology(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(rt.std.out, "Added %s (%s)\n", sanitize.Text(tech.Name), tech.SkillLevel)
		return nil
	}
}

func serveCommand(fs *pflag.FlagSet) func(*runtime, []string) error {
	listen := fs.String("listen", "", "address to listen on (overrides HACKSPARK_LISTEN)")
	secure := fs.Bool("secure-cookies", false, "mark session cookies Secure (use behind HTTPS)")
	return func(rt *runtime, _ []string) error {
		addr := rt.cfg.Listen
		if *listen != "" {
			addr = *listen
		}
		h := server.NewRouter(server.Deps{
			Resolver:      rt.resolver,
			Logger:        rt.logger,
			Gatherer:      rt.registry,
			FrontendURL:   rt.cfg.FrontendURL,
			RateLimit:     rt.cfg.RateLimit,
			SecureCookies: *secure,
		})
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, addr, h, rt.logger)
	}
}

// openTargets maps "hackspark open" arguments to frontend paths.
var openTargets = map[string]string{
	"":          "/",
	"home":      "/",
	"dashboard": "/dashboard",
	"create":    "/create",
	"login":     "/login",
}

func openCommand(*pflag.FlagSet) func(*runtime, []string) error {
	return func(rt *runtime, args []string) error {
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		path, ok := openTargets[target]
		if !ok {
			return fmt.Errorf("unknown page %q (want dashboard, create or login)", target)
		}
		u := strings.TrimRight(rt.cfg.FrontendURL, "/") + path
		if err := browser.Open(u); err != nil {
			fmt.Fprintf(rt.std.out, "Could not open browser. Visit this URL manually:\n  %s\n", u)
		}
		return nil
	}
}
