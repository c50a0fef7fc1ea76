package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f59e0b")).
		Bold(true).
		Render("H A C K S P A R K")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Discover, build, and share side projects.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	fmt.Fprintf(w, "\n  %s\n  %s\n\n", title, tagline)
	fmt.Fprintf(w, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands() {
		name := "hackspark"
		if c.name != "" {
			name += " " + c.name
		}
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", name)), descStyle.Render(c.summary))
	}
	fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", "hackspark version")), descStyle.Render("Show version"))
	fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", "hackspark help")), descStyle.Render("You are here"))

	fmt.Fprintf(w, "\n  %s\n", sectionStyle.Render("Environment"))
	env := []struct{ name, desc string }{
		{"API_URL", "backend base URL (default http://localhost:8080)"},
		{"FRONTEND_URL", "web app URL for links and CORS"},
		{"SESSION_SECRET", "key that signs saved sessions"},
		{"HACKSPARK_SESSION", "use this signed session instead of the saved one"},
		{"HACKSPARK_CONFIG", "config file (default ~/.hackspark/config.yaml)"},
	}
	for _, e := range env {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", e.name)), descStyle.Render(e.desc))
	}
	fmt.Fprintf(w, "\n  Run %s for a command's flags.\n\n", cmdStyle.Render("hackspark <command> --help"))
}
