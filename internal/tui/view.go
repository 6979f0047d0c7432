package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NeoKiring/project-management-system/internal/model"
)

// --- Color palette ---
var (
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrGreen     = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	clrYellow    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	clrRed       = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	clrBlue      = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	clrCyan      = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}
)

// --- Styles ---
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	dimStyle   = lipgloss.NewStyle().Foreground(clrDim)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrSubtle).
			Padding(0, 1).
			Width(42).
			Height(8)

	cardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(clrHighlight).
				Padding(0, 1).
				Width(42).
				Height(8).
				Bold(true)

	cardDoneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrGreen).
			Padding(0, 1).
			Width(42).
			Height(8)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(clrHighlight).
			Padding(1, 2).
			Width(60)

	statusStyle = lipgloss.NewStyle().Foreground(clrGreen).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(clrRed).Bold(true)

	footerKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	footerDescStyle = lipgloss.NewStyle().Foreground(clrSubtle)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.screen {
	case screenGrid:
		content = m.viewGrid()
	case screenProject:
		content = m.viewProjectDetail()
	case screenNotifications:
		content = m.viewNotifications()
	}

	if m.popup != popupNone {
		content = m.overlayPopup(content)
	}

	return content
}

// ════════════════════════════════════════════════
// GRID VIEW — main screen with project cards
// ════════════════════════════════════════════════

func (m Model) viewGrid() string {
	var b strings.Builder

	header := titleStyle.Render("project board")
	header += dimStyle.Render(fmt.Sprintf(" — %d projects", len(m.projects)))

	rightHelp := footerKeyStyle.Render("c") + footerDescStyle.Render(" new  ") +
		footerKeyStyle.Render("q") + footerDescStyle.Render(" quit")

	headerLine := header
	if m.width > 0 {
		pad := m.width - lipgloss.Width(header) - lipgloss.Width(rightHelp)
		if pad > 0 {
			headerLine = header + strings.Repeat(" ", pad) + rightHelp
		}
	}
	b.WriteString(headerLine + "\n\n")

	if len(m.projects) == 0 {
		b.WriteString(dimStyle.Render("  No projects yet. Press ") +
			footerKeyStyle.Render("c") +
			dimStyle.Render(" to create one.\n"))
		return b.String()
	}

	cols := m.gridCols
	if cols < 1 {
		cols = 2
	}
	cardWidth := 42
	if m.width > 0 {
		cardWidth = (m.width - (cols + 1)) / cols
		if cardWidth < 30 {
			cardWidth = 30
		}
		if cardWidth > 50 {
			cardWidth = 50
		}
	}

	for i := 0; i < len(m.projects); i += cols {
		var rowCards []string
		for j := 0; j < cols && i+j < len(m.projects); j++ {
			idx := i + j
			card := m.renderProjectCard(m.projects[idx], idx == m.cursor, cardWidth)
			rowCards = append(rowCards, card)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		if strings.HasPrefix(strings.ToLower(m.statusMsg), "error") ||
			strings.HasPrefix(strings.ToLower(m.statusMsg), "delete failed") {
			b.WriteString(errorStyle.Render("  " + m.statusMsg))
		} else {
			b.WriteString(statusStyle.Render("  " + m.statusMsg))
		}
	}

	b.WriteString("\n")
	b.WriteString(renderFooter([]struct{ key, desc string }{
		{"↑↓←→", "navigate"},
		{"enter", "open"},
		{"c", "new project"},
		{"x", "delete"},
		{"N", "notifications"},
		{"C", "check rules"},
		{"R", "refresh"},
	}))

	return b.String()
}

func (m Model) renderProjectCard(p *model.Project, selected bool, width int) string {
	var content strings.Builder

	name := lipgloss.NewStyle().Bold(true).Render(truncate(p.Name, width-6))
	content.WriteString(name + "\n")

	status := statusColor(p.Status).Render(string(p.Status))
	if p.StatusManual {
		status += dimStyle.Render(" (manual)")
	}
	content.WriteString(status + "\n")

	if p.Description != "" {
		content.WriteString(dimStyle.Render(truncate(p.Description, width-6)) + "\n")
	} else {
		content.WriteString(dimStyle.Render("No description") + "\n")
	}

	content.WriteString(renderProgressBar(p.Progress, width-6) + "\n")

	dates := "no dates"
	if p.StartDate != nil || p.EndDate != nil {
		dates = dateOrDash(p.StartDate) + " → " + dateOrDash(p.EndDate)
	}
	content.WriteString(dimStyle.Render(dates) + "\n")

	meta := fmt.Sprintf("Phases: %d", len(p.Phases))
	if p.Manager != "" {
		meta += "  " + truncate(p.Manager, 16)
	}
	content.WriteString(dimStyle.Render(meta))

	style := cardStyle.Width(width)
	if selected {
		style = cardSelectedStyle.Width(width)
	} else if p.Status == model.ProjectCompleted {
		style = cardDoneStyle.Width(width)
	}

	return style.Render(content.String())
}

func statusColor(status model.ProjectStatus) lipgloss.Style {
	switch status {
	case model.ProjectCompleted:
		return lipgloss.NewStyle().Foreground(clrGreen)
	case model.ProjectInProgress:
		return lipgloss.NewStyle().Foreground(clrBlue)
	case model.ProjectSuspended, model.ProjectOnHold:
		return lipgloss.NewStyle().Foreground(clrYellow)
	default:
		return dimStyle
	}
}

// renderProgressBar draws a fixed-width bar like ████████░░░░ 66.7%.
func renderProgressBar(progress float64, width int) string {
	label := fmt.Sprintf(" %.1f%%", progress)
	barWidth := width - len(label)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(progress / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	bar := lipgloss.NewStyle().Foreground(clrCyan).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))
	return bar + dimStyle.Render(label)
}

// ════════════════════════════════════════════════
// PROJECT DETAIL VIEW — phase/process/task tree
// ════════════════════════════════════════════════

func (m Model) viewProjectDetail() string {
	if m.detail == nil {
		return "No project selected"
	}

	var b strings.Builder
	p := m.detail

	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("  ")
	b.WriteString(statusColor(p.Status).Render(string(p.Status)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%.1f%%", p.Progress)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("esc back"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render("  No phases yet.\n"))
	}

	for i, r := range m.rows {
		cursor := "  "
		if i == m.rowCursor {
			cursor = lipgloss.NewStyle().Foreground(clrHighlight).Render("▸ ")
		}
		b.WriteString(cursor + m.renderRow(r) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n" + statusStyle.Render("  "+m.statusMsg))
	}

	b.WriteString("\n")
	b.WriteString(renderFooter([]struct{ key, desc string }{
		{"↑↓", "navigate"},
		{"enter", "set task status"},
		{"R", "refresh"},
		{"esc", "back"},
	}))

	return b.String()
}

func (m Model) renderRow(r detailRow) string {
	switch r.kind {
	case rowPhase:
		name := lipgloss.NewStyle().Bold(true).Render(r.phase.Name)
		return fmt.Sprintf("%s  %s", name,
			dimStyle.Render(fmt.Sprintf("%.1f%%", r.phase.Progress)))

	case rowProcess:
		progress := fmt.Sprintf("%.1f%%", r.process.Progress)
		if r.process.ProgressManual {
			progress += " (manual)"
		}
		assignee := ""
		if r.process.Assignee != "" {
			assignee = dimStyle.Render("  " + r.process.Assignee)
		}
		return fmt.Sprintf("  %s%s  %s",
			lipgloss.NewStyle().Foreground(clrCyan).Render(r.process.Name),
			assignee, dimStyle.Render(progress))

	case rowTask:
		return fmt.Sprintf("    %s %s  %s",
			taskDot(r.task.Status), truncate(r.task.Name, 40),
			dimStyle.Render(string(r.task.Status)))
	}
	return ""
}

func taskDot(status model.TaskStatus) string {
	switch status {
	case model.TaskCompleted:
		return lipgloss.NewStyle().Foreground(clrGreen).Render("●")
	case model.TaskInProgress:
		return lipgloss.NewStyle().Foreground(clrBlue).Render("◉")
	case model.TaskCannotHandle:
		return lipgloss.NewStyle().Foreground(clrRed).Render("✗")
	default:
		return dimStyle.Render("○")
	}
}

// ════════════════════════════════════════════════
// NOTIFICATION INBOX
// ════════════════════════════════════════════════

func (m Model) viewNotifications() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("notifications"))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" — %d active", len(m.notifications))))
	b.WriteString("\n\n")

	if len(m.notifications) == 0 {
		b.WriteString(dimStyle.Render("  Inbox empty.\n"))
	}

	for i, n := range m.notifications {
		cursor := "  "
		if i == m.noteCursor {
			cursor = lipgloss.NewStyle().Foreground(clrHighlight).Render("▸ ")
		}
		priority := priorityStyle(n.Priority).Render(fmt.Sprintf("%-6s", n.Priority))
		read := " "
		if !n.IsRead() {
			read = lipgloss.NewStyle().Foreground(clrBlue).Render("•")
		}
		line := fmt.Sprintf("%s%s %s %s  %s", cursor, read, priority,
			dimStyle.Render(fmt.Sprintf("%-22s", n.Type)), truncate(n.Message, 70))
		b.WriteString(line + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n" + statusStyle.Render("  "+m.statusMsg))
	}

	b.WriteString("\n")
	b.WriteString(renderFooter([]struct{ key, desc string }{
		{"↑↓", "navigate"},
		{"r", "read"},
		{"a", "acknowledge"},
		{"d", "dismiss"},
		{"A", "read all"},
		{"esc", "back"},
	}))

	return b.String()
}

func priorityStyle(priority model.NotificationPriority) lipgloss.Style {
	switch priority {
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(clrRed).Bold(true)
	case model.PriorityMedium:
		return lipgloss.NewStyle().Foreground(clrYellow)
	default:
		return dimStyle
	}
}

// ════════════════════════════════════════════════
// POPUPS
// ════════════════════════════════════════════════

func (m Model) overlayPopup(bg string) string {
	var popup string
	switch m.popup {
	case popupCreateProject:
		popup = m.viewCreateProjectPopup()
	case popupTaskStatus:
		popup = m.viewTaskStatusPopup()
	case popupConfirmDelete:
		popup = m.viewConfirmDeletePopup()
	default:
		return bg
	}

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			popup,
			lipgloss.WithWhitespaceChars(" "),
		)
	}
	return popup
}

func (m Model) viewCreateProjectPopup() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(clrHighlight).Render("Create Project")
	b.WriteString(title + "\n\n")

	b.WriteString("Name:\n")
	b.WriteString(m.nameInput.View() + "\n\n")
	b.WriteString("Description:\n")
	b.WriteString(m.descInput.View() + "\n\n")
	b.WriteString(footerDescStyle.Render("enter create • tab switch • esc cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewTaskStatusPopup() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(clrHighlight).Render("Set Task Status")
	b.WriteString(title + "\n\n")

	for i, s := range statusChoices {
		cursor := "  "
		if i == m.statusChoice {
			cursor = lipgloss.NewStyle().Foreground(clrHighlight).Render("▸ ")
		}
		b.WriteString(cursor + taskDot(s) + " " + string(s) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(footerDescStyle.Render("enter apply • esc cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) viewConfirmDeletePopup() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(clrRed).Render("Delete Project")
	b.WriteString(title + "\n\n")

	b.WriteString("This deletes the project and every phase,\nprocess and task below it.\n\n")
	b.WriteString(footerKeyStyle.Render("y") + footerDescStyle.Render(" confirm  ") +
		footerKeyStyle.Render("n") + footerDescStyle.Render(" cancel"))

	return m.popupBoxStyle().Render(b.String())
}

func (m Model) popupBoxStyle() lipgloss.Style {
	w := 60
	if m.width > 0 {
		w = m.width - 12
		if w < 42 {
			w = 42
		}
		if w > 84 {
			w = 84
		}
	}
	return popupStyle.Width(w)
}

// ════════════════════════════════════════════════
// SHARED HELPERS
// ════════════════════════════════════════════════

func renderFooter(keys []struct{ key, desc string }) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k.key)+" "+footerDescStyle.Render(k.desc))
	}
	return "  " + strings.Join(parts, "  ")
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func dateOrDash(d *model.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
