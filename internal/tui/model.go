package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/client"
	"taskboard/internal/handlers/dto"
	"taskboard/internal/models/task"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

const (
	toastTTL       = 3 * time.Second
	requestTimeout = 10 * time.Second
)

// API то, что интерфейсу нужно от HTTP-клиента
type API interface {
	List(ctx context.Context, status string) ([]dto.TaskResponse, error)
	Create(ctx context.Context, fields client.TaskFields) (*dto.TaskResponse, error)
	Update(ctx context.Context, id string, fields client.TaskFields) (*dto.TaskResponse, error)
	Delete(ctx context.Context, id string) (uuid.UUID, error)
}

// State всё, что интерфейс знает о задачах, хранится здесь явно
type State struct {
	Tasks     []dto.TaskResponse
	Filter    string
	Editing   bool
	CurrentID string
	Cursor    int
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

const (
	fieldTitle = iota
	fieldDescription
	fieldStatus
	fieldCount
)

var filters = []string{task.FilterAll, string(task.StatusPending), string(task.StatusInProgress), string(task.StatusCompleted)}

type toast struct {
	id    int
	text  string
	isErr bool
}

type (
	tasksLoadedMsg struct {
		tasks []dto.TaskResponse
		err   error
	}
	savedMsg struct {
		editing bool
		err     error
	}
	deletedMsg struct {
		err error
	}
	toastExpiredMsg struct {
		id int
	}
)

type Model struct {
	api     API
	state   State
	mode    mode
	loading bool

	spinner    spinner.Model
	inputs     []textinput.Model
	formStatus int
	focus      int

	toast    *toast
	toastSeq int
	width    int
	quitting bool
}

func NewModel(api API) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 100
	title.Width = 50

	description := textinput.New()
	description.Placeholder = "Description (optional)"
	description.CharLimit = 500
	description.Width = 50

	return &Model{
		api:     api,
		state:   State{Filter: task.FilterAll},
		spinner: sp,
		inputs:  []textinput.Model{title, description},
		loading: true,
	}
}

func (m *Model) State() State {
	return m.state
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchTasks())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.showToast(msg.err.Error(), true)
		}
		m.state.Tasks = msg.tasks
		if m.state.Cursor >= len(m.state.Tasks) {
			m.state.Cursor = max(len(m.state.Tasks)-1, 0)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			// форма остаётся открытой, чтобы можно было исправить ввод
			return m, m.showToast(msg.err.Error(), true)
		}
		m.closeForm()
		text := "Task created successfully"
		if msg.editing {
			text = "Task updated successfully"
		}
		return m, tea.Batch(m.showToast(text, false), m.reload())

	case deletedMsg:
		if msg.err != nil {
			return m, m.showToast(msg.err.Error(), true)
		}
		return m, tea.Batch(m.showToast("Task deleted", false), m.reload())

	case toastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.id {
			m.toast = nil
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if m.state.Cursor < len(m.state.Tasks)-1 {
			m.state.Cursor++
		}

	case "k", "up":
		if m.state.Cursor > 0 {
			m.state.Cursor--
		}

	case "f":
		m.state.Filter = nextFilter(m.state.Filter)
		m.state.Cursor = 0
		return m, m.reload()

	case "r":
		return m, m.reload()

	case "a":
		return m, m.openForm(nil)

	case "e", "enter":
		if t, ok := m.selected(); ok {
			return m, m.openForm(&t)
		}

	case "d":
		if t, ok := m.selected(); ok {
			m.state.CurrentID = t.ID.String()
			m.mode = modeConfirm
		}
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = modeList
		return m, m.deleteTask(m.state.CurrentID)
	case "n", "N", "esc", "q":
		m.mode = modeList
		m.state.CurrentID = ""
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil

	case "enter":
		return m, m.saveTask()

	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % fieldCount)

	case "shift+tab", "up":
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	}

	if m.focus == fieldStatus {
		switch msg.String() {
		case "left", "h":
			m.formStatus = (m.formStatus + len(task.Statuses) - 1) % len(task.Statuses)
		case "right", "l", " ":
			m.formStatus = (m.formStatus + 1) % len(task.Statuses)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// openForm nil открывает пустую форму создания, иначе заполняет из списка
func (m *Model) openForm(t *dto.TaskResponse) tea.Cmd {
	m.mode = modeForm
	m.formStatus = 0
	if t == nil {
		m.state.Editing = false
		m.state.CurrentID = ""
		m.inputs[fieldTitle].SetValue("")
		m.inputs[fieldDescription].SetValue("")
	} else {
		m.state.Editing = true
		m.state.CurrentID = t.ID.String()
		m.inputs[fieldTitle].SetValue(t.Title)
		m.inputs[fieldDescription].SetValue(t.Description)
		for i, st := range task.Statuses {
			if string(st) == t.Status {
				m.formStatus = i
			}
		}
	}
	return m.setFocus(fieldTitle)
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.state.Editing = false
	m.state.CurrentID = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) setFocus(field int) tea.Cmd {
	m.focus = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) selected() (dto.TaskResponse, bool) {
	if m.state.Cursor < 0 || m.state.Cursor >= len(m.state.Tasks) {
		return dto.TaskResponse{}, false
	}
	return m.state.Tasks[m.state.Cursor], true
}

func (m *Model) formFields() client.TaskFields {
	return client.TaskFields{
		Title:       client.String(m.inputs[fieldTitle].Value()),
		Description: client.String(m.inputs[fieldDescription].Value()),
		Status:      client.String(string(task.Statuses[m.formStatus])),
	}
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.fetchTasks())
}

func (m *Model) fetchTasks() tea.Cmd {
	api, filter := m.api, m.state.Filter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := api.List(ctx, filter)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) saveTask() tea.Cmd {
	api, fields := m.api, m.formFields()
	editing, id := m.state.Editing, m.state.CurrentID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var err error
		if editing {
			_, err = api.Update(ctx, id, fields)
		} else {
			_, err = api.Create(ctx, fields)
		}
		return savedMsg{editing: editing, err: err}
	}
}

func (m *Model) deleteTask(id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := api.Delete(ctx, id)
		return deletedMsg{err: err}
	}
}

func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = &toast{id: id, text: text, isErr: isErr}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func nextFilter(current string) string {
	for i, f := range filters {
		if f == current {
			return filters[(i+1)%len(filters)]
		}
	}
	return filters[0]
}

// Run запускает интерфейс до выхода пользователя
func Run(api API) error {
	p := tea.NewProgram(NewModel(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
