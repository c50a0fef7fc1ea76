package browser

import (
	"os/exec"
	"testing"
)

func TestOpenRejectsNonWebURLs(t *testing.T) {
	called := false
	orig := command
	command = func(goos, target string) (*exec.Cmd, error) {
		called = true
		return exec.Command("true"), nil
	}
	t.Cleanup(func() { command = orig })

	for _, target := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "localhost:3000", "http://", "ftp://example.com"} {
		if err := Open(target); err == nil {
			t.Errorf("Open(%q) expected error", target)
		}
	}
	if called {
		t.Error("launcher ran for a rejected URL")
	}
}

func TestOpenLaunchesBrowser(t *testing.T) {
	var got string
	orig := command
	command = func(goos, target string) (*exec.Cmd, error) {
		got = target
		return exec.Command("true"), nil
	}
	t.Cleanup(func() { command = orig })

	if err := Open("https://hackspark.dev/dashboard"); err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if got != "https://hackspark.dev/dashboard" {
		t.Errorf("target = %q", got)
	}
}

func TestCommandPerOS(t *testing.T) {
	tests := []struct {
		goos string
		name string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		cmd, err := command(tt.goos, "https://hackspark.dev")
		if err != nil {
			t.Fatalf("command(%s) error: %v", tt.goos, err)
		}
		if cmd.Args[0] != tt.name {
			t.Errorf("command(%s) = %v, want %s", tt.goos, cmd.Args, tt.name)
		}
	}
	if _, err := command("plan9", "https://hackspark.dev"); err == nil {
		t.Error("expected error for unsupported OS")
	}
}
