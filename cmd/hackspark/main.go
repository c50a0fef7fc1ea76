package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/hackspark/hackspark/internal/config"
	"github.com/hackspark/hackspark/internal/logger"
	"github.com/hackspark/hackspark/internal/metrics"
	"github.com/hackspark/hackspark/internal/session"
	"github.com/hackspark/hackspark/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], stdio{in: os.Stdin, out: os.Stdout, err: os.Stderr}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// globalFlags are accepted by every command.
type globalFlags struct {
	apiURL    string
	logLevel  string
	logOutput string
}

func (g *globalFlags) addFlags(fs *pflag.FlagSet, logOutput string) {
	fs.StringVar(&g.apiURL, "api-url", "", "backend base URL (overrides API_URL)")
	fs.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides HACKSPARK_LOG_LEVEL)")
	fs.StringVar(&g.logOutput, "log-output", logOutput, `where JSON logs go: "stderr", "stdout", a file path, or "" to discard`)
}

// command is one hackspark subcommand.
type command struct {
	name      string
	summary   string
	logOutput string // default --log-output
	flags     func(fs *pflag.FlagSet) func(rt *runtime, args []string) error
}

func commands() []command {
	return []command{
		{name: "", summary: "Open the terminal app", flags: tuiCommand},
		{name: "login", summary: "Sign in with email and password", logOutput: "stderr", flags: loginCommand},
		{name: "logout", summary: "End your session", logOutput: "stderr", flags: logoutCommand},
		{name: "me", summary: "Print your profile", logOutput: "stderr", flags: meCommand},
		{name: "add-tech", summary: "Add a technology to your profile", logOutput: "stderr", flags: addTechCommand},
		{name: "serve", summary: "Run the local web API", logOutput: "stderr", flags: serveCommand},
		{name: "open", summary: "Open HackSpark in your browser", logOutput: "stderr", flags: openCommand},
	}
}

func lookup(name string) (command, bool) {
	for _, c := range commands() {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func run(args []string, std stdio) error {
	name := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}

	switch name {
	case "version":
		fmt.Fprintln(std.out, "hackspark "+version)
		return nil
	case "help":
		printHelp(std.out)
		return nil
	}
	if len(args) > 0 && (args[0] == "--version" || args[0] == "-v") && name == "" {
		fmt.Fprintln(std.out, "hackspark "+version)
		return nil
	}

	cmd, ok := lookup(name)
	if !ok {
		return fmt.Errorf("unknown command %q (see hackspark help)", name)
	}

	var global globalFlags
	fs := pflag.NewFlagSet(strings.TrimSpace("hackspark "+name), pflag.ContinueOnError)
	fs.SetOutput(std.err)
	global.addFlags(fs, cmd.logOutput)
	action := cmd.flags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	rt, err := newRuntime(global, std)
	if err != nil {
		return err
	}
	defer rt.close() //nolint:errcheck // log file close on exit

	return action(rt, fs.Args())
}

// runtime holds what every command is built from.
type runtime struct {
	std      stdio
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	store    *session.Store
	resolver *session.Resolver
	close    func() error
}

func newRuntime(g globalFlags, std stdio) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.apiURL != "" {
		cfg.BackendURL = g.apiURL
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	w, closeLog, err := logger.Open(g.logOutput)
	if err != nil {
		return nil, err
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(std.err, "warning: %v, using info\n", err)
	}
	log := logger.Setup(w, level)
	if cfg.UsesDefaultSecret() {
		log.Warn("SESSION_SECRET is not set; sessions are signed with the development default")
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	store := session.NewStore(session.Options{
		Path:   cfg.SessionFile,
		Secret: cfg.SessionSecret,
		Token:  cfg.SessionToken,
	})
	resolver := session.NewResolver(store, cfg.Client(), log,
		client.WithLogger(log),
		client.WithRecorder(collector),
	)

	return &runtime{
		std:      std,
		cfg:      cfg,
		logger:   log,
		registry: registry,
		store:    store,
		resolver: resolver,
		close:    closeLog,
	}, nil
}
