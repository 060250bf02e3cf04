package tui

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"taskboard/internal/models/task"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	formStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)

	statusStyles = map[string]lipgloss.Style{
		string(task.StatusPending):    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		string(task.StatusInProgress): lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		string(task.StatusCompleted):  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

// escape-последовательности терминала: CSI, OSC и одиночные ESC x
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)|\x1b.?`)

// sanitize убирает из пользовательского текста всё, что терминал может выполнить
func sanitize(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Tracker"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  filter: %s", m.state.Filter)))
	if m.loading {
		b.WriteString("  " + m.spinner.View())
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.viewForm())
	default:
		b.WriteString(m.viewList())
		if m.mode == modeConfirm {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render("Are you sure you want to delete this task? (y/n)"))
			b.WriteString("\n")
		}
	}

	if m.toast != nil {
		style := successStyle
		if m.toast.isErr {
			style = errorStyle
		}
		b.WriteString("\n")
		b.WriteString(style.Render(sanitize(m.toast.text)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *Model) viewList() string {
	if len(m.state.Tasks) == 0 {
		if m.loading {
			return dimStyle.Render("Loading...") + "\n"
		}
		return dimStyle.Render("No tasks found") + "\n"
	}

	var b strings.Builder
	for i, t := range m.state.Tasks {
		cursor := "  "
		title := truncate(sanitize(t.Title), 40)
		if i == m.state.Cursor {
			cursor = accentStyle.Render("> ")
			title = selectedStyle.Render(title)
		}

		status := sanitize(t.Status)
		if st, ok := statusStyles[t.Status]; ok {
			status = st.Render(status)
		}

		fmt.Fprintf(&b, "%s%s  [%s]  %s\n", cursor, title, status,
			dimStyle.Render(t.CreatedAt.Local().Format("2006-01-02 15:04")))
		if t.Description != "" {
			fmt.Fprintf(&b, "    %s\n", dimStyle.Render(truncate(sanitize(t.Description), 70)))
		}
	}
	return b.String()
}

func (m *Model) viewForm() string {
	heading := "Add Task"
	if m.state.Editing {
		heading = "Edit Task"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")
	b.WriteString(m.label("Title", fieldTitle))
	b.WriteString(m.inputs[fieldTitle].View())
	b.WriteString("\n")
	b.WriteString(m.label("Description", fieldDescription))
	b.WriteString(m.inputs[fieldDescription].View())
	b.WriteString("\n")
	b.WriteString(m.label("Status", fieldStatus))
	b.WriteString(fmt.Sprintf("< %s >", task.Statuses[m.formStatus]))
	return formStyle.Render(b.String()) + "\n"
}

func (m *Model) label(name string, field int) string {
	if m.focus == field {
		return accentStyle.Render(name) + "\n"
	}
	return dimStyle.Render(name) + "\n"
}

func (m *Model) help() string {
	switch m.mode {
	case modeForm:
		return "tab: next field • ←/→: status • enter: save • esc: cancel"
	case modeConfirm:
		return "y: delete • n: cancel"
	default:
		return "j/k: move • a: add • e: edit • d: delete • f: filter • r: refresh • q: quit"
	}
}
