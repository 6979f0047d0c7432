package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NeoKiring/project-management-system/internal/core"
	"github.com/NeoKiring/project-management-system/internal/model"
)

// screen represents which view the TUI is showing.
type screen int

const (
	screenGrid          screen = iota // project cards (main)
	screenProject                     // phase/process/task drill-down
	screenNotifications               // notification inbox
)

// popup overlays on top of the current screen.
type popup int

const (
	popupNone popup = iota
	popupCreateProject
	popupTaskStatus
	popupConfirmDelete
)

// rowKind tags an entry in the flattened drill-down listing.
type rowKind int

const (
	rowPhase rowKind = iota
	rowProcess
	rowTask
)

// detailRow is one line of the drill-down tree.
type detailRow struct {
	kind    rowKind
	phase   *model.Phase
	process *model.Process
	task    *model.Task
}

// statusChoices is the pick order in the task status popup.
var statusChoices = []model.TaskStatus{
	model.TaskNotStarted,
	model.TaskInProgress,
	model.TaskCompleted,
	model.TaskCannotHandle,
}

// Model is the top-level bubbletea model.
type Model struct {
	manager *core.Manager
	width   int
	height  int

	screen screen
	popup  popup

	// Grid state.
	projects   []*model.Project
	cursor     int
	gridCols   int
	refreshing bool

	// Drill-down state.
	detail    *model.Project
	rows      []detailRow
	rowCursor int

	// Notification inbox.
	notifications []*model.Notification
	noteCursor    int

	// Create-project popup inputs.
	nameInput    textinput.Model
	descInput    textinput.Model
	inputFocused int

	// Task status popup.
	popupTaskID  string
	statusChoice int

	// Delete confirmation.
	popupProjectID string

	statusMsg  string
	statusTime time.Time

	quitting bool
}

// New creates the TUI model over a booted manager.
func New(manager *core.Manager) Model {
	ni := textinput.New()
	ni.Placeholder = "Project name..."
	ni.CharLimit = 120
	ni.Width = 50

	di := textinput.New()
	di.Placeholder = "Description (optional)..."
	di.CharLimit = 500
	di.Width = 50

	return Model{
		manager:   manager,
		screen:    screenGrid,
		gridCols:  2,
		nameInput: ni,
		descInput: di,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProjects(), tickCmd())
}

type projectsLoadedMsg struct {
	projects []*model.Project
}

type notificationsLoadedMsg struct {
	notifications []*model.Notification
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadProjects() tea.Cmd {
	return func() tea.Msg {
		return projectsLoadedMsg{projects: m.manager.ListProjects()}
	}
}

func (m Model) loadNotifications() tea.Cmd {
	return func() tea.Msg {
		list := m.manager.ListNotifications(core.NotificationFilter{ActiveOnly: true})
		return notificationsLoadedMsg{notifications: list}
	}
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusTime = time.Now()
}

// rebuildRows flattens the selected project's hierarchy into one
// navigable list of phase, process and task lines.
func (m *Model) rebuildRows() {
	m.rows = nil
	if m.detail == nil {
		return
	}
	for _, phase := range m.manager.ListPhases(m.detail.ID) {
		m.rows = append(m.rows, detailRow{kind: rowPhase, phase: phase})
		for _, process := range m.manager.ListProcesses(phase.ID) {
			m.rows = append(m.rows, detailRow{kind: rowProcess, phase: phase, process: process})
			for _, task := range m.manager.ListTasks(process.ID) {
				m.rows = append(m.rows, detailRow{kind: rowTask, phase: phase, process: process, task: task})
			}
		}
	}
	m.clampRowCursor()
}

func (m *Model) clampGridCursor() {
	if m.cursor >= len(m.projects) {
		m.cursor = len(m.projects) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) clampRowCursor() {
	if m.rowCursor >= len(m.rows) {
		m.rowCursor = len(m.rows) - 1
	}
	if m.rowCursor < 0 {
		m.rowCursor = 0
	}
}

func (m *Model) clampNoteCursor() {
	if m.noteCursor >= len(m.notifications) {
		m.noteCursor = len(m.notifications) - 1
	}
	if m.noteCursor < 0 {
		m.noteCursor = 0
	}
}

func (m *Model) selectedProject() *model.Project {
	if m.cursor < len(m.projects) {
		return m.projects[m.cursor]
	}
	return nil
}

func (m *Model) selectedRow() *detailRow {
	if m.rowCursor < len(m.rows) {
		return &m.rows[m.rowCursor]
	}
	return nil
}

func (m *Model) selectedNotification() *model.Notification {
	if m.noteCursor < len(m.notifications) {
		return m.notifications[m.noteCursor]
	}
	return nil
}
