package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hackspark/hackspark/internal/sanitize"
	"github.com/hackspark/hackspark/pkg/domain"
	"github.com/hackspark/hackspark/pkg/schema"
)

// detailsLoadedMsg carries a profile fetch. gen ties it to the load that
// started it so late results are dropped.
type detailsLoadedMsg struct {
	gen     int
	details domain.UserDetails
	err     error
}

type techAddedMsg struct {
	gen  int
	tech domain.Technology
	err  error
}

type copyMsg struct{ err error }

type logoutRequestMsg struct{}

const (
	techFocusSlug = iota
	techFocusLevel
	techFocusYears
	techFieldCount
)

// techForm is the inline "add technology" form.
type techForm struct {
	open       bool
	slug       string
	level      int // index into domain.SkillLevels
	years      string
	focus      int
	fieldErrs  map[string]string
	formErr    string
	submitting bool
}

func (f techForm) request() (domain.AddTechnologyRequest, map[string]string) {
	errs := map[string]string{}
	req := domain.AddTechnologyRequest{
		TagSlug:    strings.TrimSpace(f.slug),
		SkillLevel: domain.SkillLevels[f.level],
	}
	if y := strings.TrimSpace(f.years); y != "" {
		v, err := strconv.ParseFloat(y, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			errs["years_experience"] = "Years must be a number"
		} else {
			req.YearsExperience = v
		}
	}
	var verr *schema.ValidationError
	if err := req.Validate(); errors.As(err, &verr) {
		for _, fe := range verr.Fields {
			switch fe.Path {
			case "tag_slug":
				errs["tag_slug"] = "Technology is required"
			case "years_experience":
				errs["years_experience"] = "Years cannot be negative"
			default:
				errs[fe.Path] = fe.Reason
			}
		}
	}
	return req, errs
}

type dashboardModel struct {
	sessions Sessions
	gen      int
	loading  bool
	details  *domain.UserDetails
	err      string
	cursor   int
	status   string
	form     techForm
	width    int
	height   int
}

func newDashboardModel(s Sessions) dashboardModel {
	return dashboardModel{sessions: s}
}

// active reports whether the dashboard has data or a fetch in flight.
func (m dashboardModel) active() bool {
	return m.loading || m.details != nil || m.err != ""
}

// leave drops the current data and invalidates any in-flight fetch.
func (m dashboardModel) leave() dashboardModel {
	return dashboardModel{sessions: m.sessions, gen: m.gen + 1, width: m.width, height: m.height}
}

func (m dashboardModel) load() (dashboardModel, tea.Cmd) {
	m.gen++
	m.loading = true
	m.err = ""
	gen := m.gen
	s := m.sessions
	return m, func() tea.Msg {
		ctx := context.Background()
		c, err := s.CreateAuthenticatedClient(ctx)
		if err != nil {
			return detailsLoadedMsg{gen: gen, err: err}
		}
		details, err := c.UserDetails(ctx)
		return detailsLoadedMsg{gen: gen, details: details, err: err}
	}
}

func (m dashboardModel) addTechnology(req domain.AddTechnologyRequest) tea.Cmd {
	gen := m.gen
	s := m.sessions
	return func() tea.Msg {
		ctx := context.Background()
		c, err := s.CreateAuthenticatedClient(ctx)
		if err != nil {
			return techAddedMsg{gen: gen, err: err}
		}
		tech, err := c.AddTechnology(ctx, req)
		return techAddedMsg{gen: gen, tech: tech, err: err}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case detailsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.details = nil
			m.err = "Could not load your profile. Press r to retry."
			return m, nil
		}
		d := msg.details
		m.details = &d
		m.err = ""
		if m.cursor >= len(d.Projects) {
			m.cursor = 0
		}

	case techAddedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.form.submitting = false
		if msg.err != nil {
			m.form.formErr = "Could not add technology. Try again."
			return m, nil
		}
		if m.details != nil {
			m.details.Technologies = append(m.details.Technologies, msg.tech)
		}
		m.form = techForm{}
		m.status = "added " + sanitize.Text(msg.tech.Name)

	case copyMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.status = "copied!"
		}

	case tea.KeyMsg:
		if m.form.open {
			return m.handleFormKey(msg)
		}
		m.status = ""
		return m.handleKey(msg)
	}
	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.details != nil && m.cursor < len(m.details.Projects)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		if !m.loading {
			return m.load()
		}
	case "a":
		if m.details != nil {
			m.form = techForm{open: true}
		}
	case "c":
		if m.details != nil && m.cursor < len(m.details.Projects) {
			id := m.details.Projects[m.cursor].ID
			return m, func() tea.Msg {
				return copyMsg{err: clipboard.WriteAll(id)}
			}
		}
	case "x":
		return m, func() tea.Msg { return logoutRequestMsg{} }
	}
	return m, nil
}

func (m dashboardModel) handleFormKey(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}
	f := &m.form
	switch msg.String() {
	case "esc":
		m.form = techForm{}
		return m, nil
	case "tab", "down":
		f.focus = (f.focus + 1) % techFieldCount
		return m, nil
	case "shift+tab", "up":
		f.focus = (f.focus + techFieldCount - 1) % techFieldCount
		return m, nil
	case "enter", "ctrl+s":
		req, errs := f.request()
		f.fieldErrs = errs
		f.formErr = ""
		if len(errs) > 0 {
			return m, nil
		}
		f.submitting = true
		return m, m.addTechnology(req)
	}

	switch f.focus {
	case techFocusSlug:
		f.slug = editRune(f.slug, msg.String())
		delete(f.fieldErrs, "tag_slug")
	case techFocusLevel:
		switch msg.String() {
		case "l", "right", "space", " ":
			f.level = (f.level + 1) % len(domain.SkillLevels)
		case "h", "left":
			f.level = (f.level + len(domain.SkillLevels) - 1) % len(domain.SkillLevels)
		}
	case techFocusYears:
		f.years = editRune(f.years, msg.String())
		delete(f.fieldErrs, "years_experience")
	}
	return m, nil
}

func (m dashboardModel) helpKeys() string {
	if m.form.open {
		return helpBar("tab", "next", "h/l", "level", "enter", "add", "esc", "cancel")
	}
	return helpBar("j/k", "nav", "c", "copy id", "a", "add tech", "r", "refresh", "x", "sign out", "h", "help")
}

func (m dashboardModel) View() string {
	switch {
	case m.loading && m.details == nil:
		return "\n  " + dimStyle.Render("Loading your profile...")
	case m.err != "":
		return "\n  " + errorStyle.Render(m.err)
	case m.details == nil:
		return ""
	}

	d := m.details
	var b strings.Builder

	name := oneLine(sanitize.Text(d.FirstName + " " + d.LastName))
	initials := sanitize.Text(d.Initials())
	fmt.Fprintf(&b, "\n  %s  %s  %s\n", accentStyle.Render("("+initials+")"), titleStyle.Render(name), metaStyle.Render("@"+sanitize.Text(d.Username)))
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render(sanitize.Text(d.Email)))

	b.WriteString("  " + sectionHeaderStyle.Render("Technologies") + "\n")
	if len(d.Technologies) == 0 {
		b.WriteString("    " + dimStyle.Render("No technologies yet. Press a to add one.") + "\n")
	}
	for _, t := range d.Technologies {
		years := ""
		if t.YearsExperience != nil {
			years = metaStyle.Render(fmt.Sprintf("  %gy", *t.YearsExperience))
		}
		fmt.Fprintf(&b, "    %-20s %s%s\n", normalStyle.Render(truncStr(oneLine(sanitize.Text(t.Name)), 20)), SkillStyle(string(t.SkillLevel)).Render(string(t.SkillLevel)), years)
	}

	if m.form.open {
		b.WriteString("\n" + m.formView())
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("Projects") + "\n")
	if len(d.Projects) == 0 {
		b.WriteString("    " + dimStyle.Render("No projects yet. Press 4 to start one.") + "\n")
	}
	descWidth := max(m.width-12, 20)
	for i, p := range d.Projects {
		added := p.AddedAt
		if t, ok := p.Added(); ok {
			added = formatTime(t)
		}
		meta := metaStyle.Render(fmt.Sprintf("♥ %d  ★ %d  %s", p.LikeCount, p.StarCount, added))
		title := normalStyle.Render(sanitize.Text(p.Name))
		prefix := "    "
		if i == m.cursor {
			title = selectedStyle.Render(sanitize.Text(p.Name))
			prefix = "  " + accentStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, title, meta)
		if desc := oneLine(sanitize.Text(p.Description)); desc != "" {
			b.WriteString("      " + dimStyle.Render(truncStr(desc, descWidth)) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n  " + successStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m dashboardModel) formView() string {
	f := m.form
	var b strings.Builder
	b.WriteString("  " + sectionHeaderStyle.Render("Add technology") + "\n")
	b.WriteString(renderField("Technology", f.slug, "e.g. golang", f.focus == techFocusSlug, f.fieldErrs["tag_slug"]))

	level := string(domain.SkillLevels[f.level])
	if f.focus == techFocusLevel {
		b.WriteString("  " + inputPromptStyle.Render("> ") + selectedStyle.Render("Skill level") + "\n")
		b.WriteString("    " + accentStyle.Render("‹ ") + SkillStyle(level).Render(level) + accentStyle.Render(" ›") + "\n")
	} else {
		b.WriteString("    " + dimStyle.Render("Skill level") + "\n")
		b.WriteString("    " + SkillStyle(level).Render(level) + "\n")
	}

	b.WriteString(renderField("Years of experience", f.years, "optional", f.focus == techFocusYears, f.fieldErrs["years_experience"]))
	switch {
	case f.submitting:
		b.WriteString("    " + dimStyle.Render("Adding...") + "\n")
	case f.formErr != "":
		b.WriteString("    " + errorStyle.Render(f.formErr) + "\n")
	}
	return b.String()
}
