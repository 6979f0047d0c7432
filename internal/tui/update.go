package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.popup != popupNone {
			return m.handlePopupKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gridCols = m.width / 46
		if m.gridCols < 1 {
			m.gridCols = 1
		}
		if m.gridCols > 4 {
			m.gridCols = 4
		}
		return m, nil

	case projectsLoadedMsg:
		m.projects = msg.projects
		m.clampGridCursor()
		if m.screen == screenProject && m.detail != nil {
			m.detail = m.manager.GetProject(m.detail.ID)
			if m.detail == nil {
				m.screen = screenGrid
			}
			m.rebuildRows()
		}
		m.refreshing = false
		return m, nil

	case notificationsLoadedMsg:
		m.notifications = msg.notifications
		m.clampNoteCursor()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		cmds = append(cmds, tickCmd())
		if m.statusMsg != "" && time.Since(m.statusTime) > 5*time.Second {
			m.statusMsg = ""
		}
		if !m.refreshing {
			m.refreshing = true
			cmds = append(cmds, m.loadProjects())
		}
		if m.screen == screenNotifications {
			cmds = append(cmds, m.loadNotifications())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.screen == screenGrid {
			m.quitting = true
			return m, tea.Quit
		}
		return m.goBack()

	case "esc":
		return m.goBack()
	}

	switch m.screen {
	case screenGrid:
		return m.handleGridKey(msg)
	case screenProject:
		return m.handleProjectKey(msg)
	case screenNotifications:
		return m.handleNotificationsKey(msg)
	}

	return m, nil
}

func (m Model) goBack() (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenProject:
		m.screen = screenGrid
		m.detail = nil
		m.rows = nil
		return m, m.loadProjects()
	case screenNotifications:
		m.screen = screenGrid
		return m, nil
	default:
		return m, nil
	}
}

// --- Grid screen keys ---

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursor += m.gridCols
		m.clampGridCursor()
	case "k", "up":
		m.cursor -= m.gridCols
		m.clampGridCursor()
	case "h", "left":
		m.cursor--
		m.clampGridCursor()
	case "l", "right":
		m.cursor++
		m.clampGridCursor()

	case "enter", " ":
		if p := m.selectedProject(); p != nil {
			m.detail = p
			m.rowCursor = 0
			m.rebuildRows()
			m.screen = screenProject
			return m, nil
		}

	case "c", "ctrl+n":
		m.popup = popupCreateProject
		m.nameInput.Reset()
		m.nameInput.Focus()
		m.descInput.Reset()
		m.descInput.Blur()
		m.inputFocused = 0
		return m, textinput.Blink

	case "x":
		if p := m.selectedProject(); p != nil {
			m.popupProjectID = p.ID
			m.popup = popupConfirmDelete
			return m, nil
		}

	case "N":
		m.screen = screenNotifications
		m.noteCursor = 0
		return m, m.loadNotifications()

	case "C":
		generated := m.manager.CheckAllNotifications()
		m.setStatus("Notification check: " + itoa(generated) + " generated")
		return m, nil

	case "R":
		return m, m.loadProjects()
	}

	return m, nil
}

// --- Project drill-down keys ---

func (m Model) handleProjectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		m.screen = screenGrid
		return m, nil
	}

	switch msg.String() {
	case "j", "down":
		m.rowCursor++
		m.clampRowCursor()
	case "k", "up":
		m.rowCursor--
		m.clampRowCursor()

	case "enter", "s":
		if r := m.selectedRow(); r != nil && r.kind == rowTask {
			m.popupTaskID = r.task.ID
			m.statusChoice = 0
			for i, s := range statusChoices {
				if s == r.task.Status {
					m.statusChoice = i
					break
				}
			}
			m.popup = popupTaskStatus
			return m, nil
		}

	case "R":
		return m, m.loadProjects()

	case "backspace":
		return m.goBack()
	}

	return m, nil
}

// --- Notification inbox keys ---

func (m Model) handleNotificationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.noteCursor++
		m.clampNoteCursor()
	case "k", "up":
		m.noteCursor--
		m.clampNoteCursor()

	case "r":
		if n := m.selectedNotification(); n != nil {
			m.manager.MarkNotificationRead(n.ID)
			return m, m.loadNotifications()
		}

	case "a":
		if n := m.selectedNotification(); n != nil {
			m.manager.AcknowledgeNotification(n.ID)
			m.setStatus("Acknowledged")
			return m, m.loadNotifications()
		}

	case "d":
		if n := m.selectedNotification(); n != nil {
			m.manager.DismissNotification(n.ID)
			m.setStatus("Dismissed")
			return m, m.loadNotifications()
		}

	case "A":
		count, err := m.manager.MarkAllNotificationsRead()
		if err != nil {
			m.setStatus("Error: " + err.Error())
		} else {
			m.setStatus("Marked " + itoa(count) + " read")
		}
		return m, m.loadNotifications()
	}

	return m, nil
}

// --- Popup keys ---

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.popup {
	case popupCreateProject:
		return m.handleCreateProjectPopup(msg)
	case popupTaskStatus:
		return m.handleTaskStatusPopup(msg)
	case popupConfirmDelete:
		return m.handleConfirmDeletePopup(msg)
	}
	return m, nil
}

func (m Model) handleCreateProjectPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		return m, nil
	case "tab":
		if m.inputFocused == 0 {
			m.nameInput.Blur()
			m.descInput.Focus()
			m.inputFocused = 1
		} else {
			m.descInput.Blur()
			m.nameInput.Focus()
			m.inputFocused = 0
		}
		return m, textinput.Blink
	case "enter":
		name := m.nameInput.Value()
		if name == "" {
			m.setStatus("Name cannot be empty")
			return m, nil
		}
		p, err := m.manager.CreateProject(name, m.descInput.Value(), "")
		if err != nil {
			m.setStatus("Error: " + err.Error())
			return m, nil
		}
		m.popup = popupNone
		m.setStatus("Created project " + p.Name)
		return m, m.loadProjects()
	}

	var cmd tea.Cmd
	if m.inputFocused == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.descInput, cmd = m.descInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleTaskStatusPopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.popup = popupNone
		return m, nil
	case "j", "down":
		m.statusChoice++
		if m.statusChoice >= len(statusChoices) {
			m.statusChoice = 0
		}
		return m, nil
	case "k", "up":
		m.statusChoice--
		if m.statusChoice < 0 {
			m.statusChoice = len(statusChoices) - 1
		}
		return m, nil
	case "enter":
		status := statusChoices[m.statusChoice]
		ok, err := m.manager.UpdateTaskStatus(m.popupTaskID, status, "")
		m.popup = popupNone
		if err != nil {
			m.setStatus("Error: " + err.Error())
			return m, nil
		}
		if !ok {
			m.setStatus("Task not found")
			return m, nil
		}
		m.setStatus("Status set to " + string(status))
		return m, m.loadProjects()
	}
	return m, nil
}

func (m Model) handleConfirmDeletePopup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.popup = popupNone
		ok, err := m.manager.DeleteProject(m.popupProjectID)
		if err != nil {
			m.setStatus("Delete failed: " + err.Error())
		} else if ok {
			m.setStatus("Project deleted")
		}
		return m, m.loadProjects()
	case "n", "esc":
		m.popup = popupNone
		return m, nil
	}
	return m, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	s := ""
	for n > 0 {
		s = string(rune('0'+n%10)) + s
		n /= 10
	}
	if neg {
		s = "-" + s
	}
	return s
}
