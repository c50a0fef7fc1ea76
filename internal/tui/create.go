package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const createSteps = 4

type choice struct {
	id    string
	title string
	desc  string
}

var learningGoals = []choice{
	{"new-tech", "Learn New Technology", "Master a technology you've never used before"},
	{"portfolio", "Build Portfolio Project", "Create something impressive to showcase your skills"},
	{"solve-problem", "Solve Real Problem", "Build something that addresses a genuine need"},
	{"experiment", "Experiment & Explore", "Try new ideas and push creative boundaries"},
}

var projectTechnologies = []string{
	"React", "Vue.js", "Angular", "Svelte", "Node.js", "Python", "Go", "Rust",
	"TypeScript", "JavaScript", "Java", "C#", "Next.js", "Nuxt.js", "Express",
	"FastAPI", "PostgreSQL", "MongoDB", "Redis", "Supabase", "AWS", "Vercel",
	"Docker", "Kubernetes", "TailwindCSS", "Styled Components", "SASS", "CSS",
	"GraphQL", "REST API", "WebSocket", "gRPC", "React Native", "Flutter",
	"Swift", "Kotlin", "Machine Learning", "AI", "Blockchain", "WebAssembly",
}

var timeCommitments = []choice{
	{"weekend", "Weekend project (1-2 days)", ""},
	{"week", "One week sprint", ""},
	{"month", "Monthly project", ""},
	{"ongoing", "Ongoing development", ""},
}

var experienceLevels = []choice{
	{"beginner", "Beginner - Just getting started", ""},
	{"intermediate", "Intermediate - Some experience", ""},
	{"advanced", "Advanced - Very comfortable", ""},
}

// suggestion is a canned project idea previewed on the last step. Its
// technologies are the selected ones in [from, to).
type suggestion struct {
	title      string
	desc       string
	difficulty string
	estimate   string
	features   []string
	from, to   int
}

var projectSuggestions = []suggestion{
	{
		title:      "Smart Recipe Recommender",
		desc:       "Suggest meals from the ingredients you have, your diet and your cooking time.",
		difficulty: "Intermediate",
		estimate:   "2-3 weeks",
		features:   []string{"Ingredient recognition", "ML recommendations", "User preferences", "Recipe database"},
		from:       0,
		to:         4,
	},
	{
		title:      "Developer Productivity Dashboard",
		desc:       "Track your coding habits, GitHub activity and learning progress in one place.",
		difficulty: "Beginner-Intermediate",
		estimate:   "1-2 weeks",
		features:   []string{"GitHub API integration", "Activity tracking", "Progress visualization", "Goal setting"},
		from:       1,
		to:         5,
	},
	{
		title:      "Real-time Collaborative Whiteboard",
		desc:       "A multiplayer whiteboard with live sync, drawing tools and presence.",
		difficulty: "Advanced",
		estimate:   "3-4 weeks",
		features:   []string{"Real-time sync", "Drawing tools", "User presence", "Room management"},
		from:       0,
		to:         3,
	},
}

// technologies returns the selected technologies this suggestion uses, at
// most three.
func (s suggestion) technologies(selected []string) []string {
	from := min(s.from, len(selected))
	to := min(s.to, len(selected))
	return selected[from:min(to, from+3)]
}

const (
	prefFocusTime = iota
	prefFocusExperience
)

const (
	ideaFocusTitle = iota
	ideaFocusDesc
)

// createModel is the four step project wizard. It only collects input;
// nothing is sent to the backend.
type createModel struct {
	step       int // 1-based
	cursor     int
	goal       string
	techs      []string
	time       string
	experience string
	prefFocus  int
	title      string
	desc       string
	ideaFocus  int
	status     string
	width      int
	height     int
}

func newCreateModel() createModel {
	return createModel{step: 1}
}

// complete reports whether the current step has what it needs to advance.
func (m createModel) complete() bool {
	switch m.step {
	case 1:
		return m.goal != ""
	case 2:
		return len(m.techs) > 0
	case 3:
		return m.time != "" && m.experience != ""
	case 4:
		return strings.TrimSpace(m.title) != "" && strings.TrimSpace(m.desc) != ""
	}
	return false
}

func (m createModel) editing() bool {
	return m.step == createSteps
}

func (m createModel) next() createModel {
	if m.step < createSteps && m.complete() {
		m.step++
		m.cursor = 0
	}
	return m
}

func (m createModel) back() (createModel, tea.Cmd) {
	if m.step == 1 {
		return m, navigateCmd(pathDashboard)
	}
	m.step--
	m.cursor = 0
	m.status = ""
	return m, nil
}

func (m createModel) toggleTech(name string) createModel {
	if i := slices.Index(m.techs, name); i >= 0 {
		m.techs = slices.Delete(slices.Clone(m.techs), i, i+1)
		return m
	}
	m.techs = append(slices.Clone(m.techs), name)
	return m
}

func (m createModel) listLen() int {
	switch m.step {
	case 1:
		return len(learningGoals)
	case 2:
		return len(projectTechnologies)
	case 3:
		if m.prefFocus == prefFocusTime {
			return len(timeCommitments)
		}
		return len(experienceLevels)
	}
	return 0
}

func (m createModel) Update(msg tea.Msg) (createModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if m.step == createSteps {
			return m.updateIdea(msg)
		}
		return m.updateChoice(msg)
	}
	return m, nil
}

func (m createModel) updateChoice(msg tea.KeyMsg) (createModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		return m.back()
	case "j", "down":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "tab":
		if m.step == 3 {
			m.prefFocus = 1 - m.prefFocus
			m.cursor = 0
		}
	case " ", "space", "x":
		m = m.choose()
	case "enter":
		if m.step == 1 && m.goal == "" {
			m = m.choose()
		}
		return m.next(), nil
	}
	return m, nil
}

func (m createModel) choose() createModel {
	switch m.step {
	case 1:
		m.goal = learningGoals[m.cursor].id
	case 2:
		m = m.toggleTech(projectTechnologies[m.cursor])
	case 3:
		if m.prefFocus == prefFocusTime {
			m.time = timeCommitments[m.cursor].id
		} else {
			m.experience = experienceLevels[m.cursor].id
		}
	}
	return m
}

func (m createModel) updateIdea(msg tea.KeyMsg) (createModel, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "esc":
		return m.back()
	case "tab", "shift+tab":
		m.ideaFocus = 1 - m.ideaFocus
		return m, nil
	case "enter":
		if m.ideaFocus == ideaFocusTitle {
			m.ideaFocus = ideaFocusDesc
			return m, nil
		}
		m.desc = editRune(m.desc, "\n")
		return m, nil
	case "ctrl+s":
		if m.complete() {
			m.status = "Project idea saved."
		} else {
			m.status = "Add a title and description first."
		}
		return m, nil
	}
	if m.ideaFocus == ideaFocusTitle {
		m.title = editRune(m.title, msg.String())
	} else {
		m.desc = editRune(m.desc, msg.String())
	}
	return m, nil
}

func (m createModel) helpKeys() string {
	switch m.step {
	case 1:
		return helpBar("j/k", "nav", "enter", "choose", "esc", "dashboard")
	case 2:
		return helpBar("j/k", "nav", "space", "toggle", "enter", "next", "b", "back")
	case 3:
		return helpBar("j/k", "nav", "tab", "switch", "space", "choose", "enter", "next", "b", "back")
	}
	return helpBar("tab", "switch", "ctrl+s", "save", "esc", "back")
}

func (m createModel) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n", titleStyle.Render("Create a project"), metaStyle.Render(fmt.Sprintf("Step %d of %d", m.step, createSteps)))
	b.WriteString("  " + progressBar(m.step, createSteps, 32) + "\n\n")

	switch m.step {
	case 1:
		b.WriteString("  " + sectionHeaderStyle.Render("What do you want to get out of it?") + "\n")
		for i, g := range learningGoals {
			b.WriteString(choiceLine(i == m.cursor, g.id == m.goal, g.title, g.desc))
		}
	case 2:
		fmt.Fprintf(&b, "  %s  %s\n", sectionHeaderStyle.Render("Pick your technologies"), metaStyle.Render(fmt.Sprintf("%d selected", len(m.techs))))
		start, end := window(m.cursor, len(projectTechnologies), max(m.height-8, 5))
		for i := start; i < end; i++ {
			t := projectTechnologies[i]
			b.WriteString(choiceLine(i == m.cursor, slices.Contains(m.techs, t), t, ""))
		}
	case 3:
		b.WriteString("  " + prefHeader("How much time can you commit?", m.prefFocus == prefFocusTime) + "\n")
		for i, c := range timeCommitments {
			b.WriteString(choiceLine(m.prefFocus == prefFocusTime && i == m.cursor, c.id == m.time, c.title, ""))
		}
		b.WriteString("\n  " + prefHeader("What's your experience with the selected technologies?", m.prefFocus == prefFocusExperience) + "\n")
		for i, c := range experienceLevels {
			b.WriteString(choiceLine(m.prefFocus == prefFocusExperience && i == m.cursor, c.id == m.experience, c.title, ""))
		}
	case 4:
		b.WriteString("  " + sectionHeaderStyle.Render("Describe your idea") + "\n")
		b.WriteString(renderField("Project title", m.title, "e.g., Smart Recipe Recommender", m.ideaFocus == ideaFocusTitle, ""))
		b.WriteString(renderField("Description", m.desc, "What does it do and what will you learn?", m.ideaFocus == ideaFocusDesc, ""))
		if m.status != "" {
			style := successStyle
			if !m.complete() {
				style = errorStyle
			}
			b.WriteString("\n  " + style.Render(m.status) + "\n")
		}
		b.WriteString(m.suggestionsView())
	}
	return b.String()
}

// suggestionsView previews generated ideas. They are locked behind the
// premium plan, so they render dimmed with their actions disabled.
func (m createModel) suggestionsView() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n", sectionHeaderStyle.Render("Suggested project ideas"), accentStyle.Render("[Premium]"))
	b.WriteString("  " + dimStyle.Render("Upgrade to Premium for custom ideas with guides and estimates.") + "\n")
	for _, s := range projectSuggestions {
		b.WriteString("\n    " + dimStyle.Render(s.title) + "\n")
		b.WriteString("      " + dimStyle.Render(truncStr(s.desc, max(m.width-8, 20))) + "\n")
		meta := s.difficulty + " · " + s.estimate
		if techs := s.technologies(m.techs); len(techs) > 0 {
			meta += " · " + strings.Join(techs, ", ")
		}
		b.WriteString("      " + metaStyle.Render(meta) + "\n")
		b.WriteString("      " + metaStyle.Render(strings.Join(s.features, " · ")) + "\n")
	}
	return b.String()
}

func prefHeader(title string, focused bool) string {
	if focused {
		return selectedStyle.Render(title)
	}
	return sectionHeaderStyle.Render(title)
}

func choiceLine(cursor, selected bool, title, desc string) string {
	mark := dimStyle.Render("○")
	if selected {
		mark = accentStyle.Render("●")
	}
	prefix := "    "
	label := normalStyle.Render(title)
	if cursor {
		prefix = "  " + accentStyle.Render("> ")
		label = selectedStyle.Render(title)
	}
	line := prefix + mark + " " + label
	if desc != "" {
		line += "  " + dimStyle.Render(desc)
	}
	return line + "\n"
}

// progressBar renders step of total as a filled bar width cells wide.
func progressBar(step, total, width int) string {
	filled := width * step / total
	return accentStyle.Render(strings.Repeat("━", filled)) + dimStyle.Render(strings.Repeat("─", width-filled))
}

// window returns the [start, end) slice of n items of height rows that
// keeps cursor visible.
func window(cursor, n, height int) (int, int) {
	if n <= height {
		return 0, n
	}
	start := max(cursor-height/2, 0)
	end := start + height
	if end > n {
		end = n
		start = n - height
	}
	return start, end
}
