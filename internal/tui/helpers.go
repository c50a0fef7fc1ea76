package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// formatTime renders a relative timestamp.
func formatTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// mask hides a secret, one bullet per rune.
func mask(s string) string {
	return strings.Repeat("•", utf8.RuneCountInString(s))
}

// centerLine left-pads s so it sits in the middle of width columns.
func centerLine(s string, visible, width int) string {
	pad := (width - visible) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
