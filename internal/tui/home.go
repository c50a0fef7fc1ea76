package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var homePitch = []string{
	"Build something you can show off.",
	"HackSpark pairs your skills with project ideas,",
	"then keeps your progress in one place.",
}

type homeModel struct {
	width  int
	height int
}

func newHomeModel() homeModel {
	return homeModel{}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "l", "enter":
			return m, navigateCmd(pathLogin)
		case "c":
			return m, navigateCmd(pathCreate)
		case "d":
			return m, navigateCmd(pathDashboard)
		}
	}
	return m, nil
}

func (m homeModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	for i, line := range homePitch {
		style := dimStyle
		if i == 0 {
			style = titleStyle
		}
		b.WriteString(centerLine(style.Render(line), len([]rune(line)), m.width) + "\n")
	}
	b.WriteString("\n")
	cta := helpEntry("enter", "sign in") + "   " + helpEntry("c", "start a project") + "   " + helpEntry("d", "dashboard")
	b.WriteString(centerLine(cta, len("enter sign in   c start a project   d dashboard"), m.width) + "\n")
	return b.String()
}
