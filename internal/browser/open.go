// Package browser hands HackSpark web links to the desktop browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// command builds the launcher for goos.
var command = func(goos, target string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// Open opens an http or https URL in the user's default browser.
func Open(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser.Open: refusing to open %q", target)
	}
	cmd, err := command(runtime.GOOS, u.String())
	if err != nil {
		return err
	}
	return cmd.Start()
}
