package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the HACKSPARK logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "HACKSPARK" as a spark travelling through
// the letters: deep ember (#5a1e0a) to bright amber (#fbbf24).
func renderShimmerLogo(frame int) string {
	const text = "HACKSPARK"
	n := len(text)

	var out strings.Builder
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.12 - x*3.5
		phase += math.Sin(t*0.021) * 1.5

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.6)
		b = b*0.8 + math.Sin(t*0.04)*0.1 + 0.15
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(90 + b*(251-90))
		g := clampByte(30 + b*(191-30))
		bl := clampByte(10 + b*(36-10))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f59e0b")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	skillColors = map[string]lipgloss.Color{
		"beginner":     lipgloss.Color("#60a0e0"),
		"intermediate": lipgloss.Color("#d4a844"),
		"expert":       lipgloss.Color("#4ade80"),
	}
)

// SkillStyle returns a bold style colored for the given skill level.
func SkillStyle(level string) lipgloss.Style {
	if c, ok := skillColors[level]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs into one help line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

func helpItems(frontendURL string) []helpItem {
	base := strings.TrimRight(frontendURL, "/")
	return []helpItem{
		{"Website", base, base},
		{"Dashboard", base + "/dashboard", base + "/dashboard"},
		{"Create a project", base + "/create", base + "/create"},
	}
}

// helpView renders the interactive help overlay with a cursor.
func helpView(items []helpItem, cursor int) string {
	title := titleStyle.Render("H A C K S P A R K")
	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Discover, build, and share side projects.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"hackspark", "Open the terminal app"},
		{"hackspark login", "Sign in with email and password"},
		{"hackspark logout", "End your session"},
		{"hackspark me", "Print your profile"},
		{"hackspark add-tech", "Add a technology to your profile"},
		{"hackspark serve", "Run the local web API"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, tagline)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range items {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
