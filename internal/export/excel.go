// Package export reads and writes the hierarchy as an Excel workbook
// with one sheet per entity kind.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/NeoKiring/project-management-system/internal/core"
	"github.com/NeoKiring/project-management-system/internal/model"
)

// Sheet names in the workbook.
const (
	SheetProjects  = "Projects"
	SheetPhases    = "Phases"
	SheetProcesses = "Processes"
	SheetTasks     = "Tasks"
)

var (
	projectHeader = []string{"ID", "Name", "Description", "Status", "Progress", "Start Date", "End Date", "Manager", "Priority", "Risk Level"}
	phaseHeader   = []string{"ID", "Name", "Description", "Project ID", "Progress", "End Date", "Milestone", "Priority"}
	processHeader = []string{"ID", "Name", "Description", "Phase ID", "Assignee", "Progress", "Start Date", "End Date", "Estimated Hours", "Priority"}
	taskHeader    = []string{"ID", "Name", "Description", "Process ID", "Status", "Priority", "Estimated Hours", "Actual Hours"}
)

// ImportResult counts the entities created per sheet.
type ImportResult struct {
	Projects  int
	Phases    int
	Processes int
	Tasks     int
}

// WriteWorkbook exports every entity into an Excel file at path.
func WriteWorkbook(m *core.Manager, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeProjects(f, m.ListProjects()); err != nil {
		return err
	}
	if err := writePhases(f, m.ListPhases("")); err != nil {
		return err
	}
	if err := writeProcesses(f, m.ListProcesses("")); err != nil {
		return err
	}
	if err := writeTasks(f, m.ListTasks("")); err != nil {
		return err
	}
	// Drop the default sheet created by NewFile.
	f.DeleteSheet("Sheet1")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func newSheet(f *excelize.File, name string, header []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(name, cell, title); err != nil {
			return fmt.Errorf("write header %s: %w", name, err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, row, err)
		}
	}
	return nil
}

func dateString(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func hoursString(h *float64) string {
	if h == nil {
		return ""
	}
	return strconv.FormatFloat(*h, 'f', -1, 64)
}

func writeProjects(f *excelize.File, projects []*model.Project) error {
	if err := newSheet(f, SheetProjects, projectHeader); err != nil {
		return err
	}
	for i, p := range projects {
		values := []any{
			p.ID, p.Name, p.Description, string(p.Status), p.Progress,
			dateString(p.StartDate), dateString(p.EndDate), p.Manager,
			p.Priority, p.RiskLevel,
		}
		if err := setRow(f, SheetProjects, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writePhases(f *excelize.File, phases []*model.Phase) error {
	if err := newSheet(f, SheetPhases, phaseHeader); err != nil {
		return err
	}
	for i, p := range phases {
		values := []any{
			p.ID, p.Name, p.Description, p.ParentProjectID, p.Progress,
			dateString(p.EndDate), p.Milestone, p.Priority,
		}
		if err := setRow(f, SheetPhases, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeProcesses(f *excelize.File, processes []*model.Process) error {
	if err := newSheet(f, SheetProcesses, processHeader); err != nil {
		return err
	}
	for i, p := range processes {
		values := []any{
			p.ID, p.Name, p.Description, p.ParentPhaseID, p.Assignee,
			p.Progress, dateString(p.StartDate), dateString(p.EndDate),
			hoursString(p.EstimatedHours), p.Priority,
		}
		if err := setRow(f, SheetProcesses, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeTasks(f *excelize.File, tasks []*model.Task) error {
	if err := newSheet(f, SheetTasks, taskHeader); err != nil {
		return err
	}
	for i, t := range tasks {
		values := []any{
			t.ID, t.Name, t.Description, t.ParentProcessID, string(t.Status),
			t.Priority, hoursString(t.EstimatedHours), hoursString(t.ActualHours),
		}
		if err := setRow(f, SheetTasks, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// ReadWorkbook imports a workbook written in the WriteWorkbook layout.
// Entities are created through the manager, so parent checks apply;
// the original ids in the file are replaced with fresh ones and an id
// mapping keeps the hierarchy intact. Rows referencing a parent that
// was not imported are skipped.
func ReadWorkbook(m *core.Manager, path string) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	result := &ImportResult{}
	projectIDs := map[string]string{}
	phaseIDs := map[string]string{}
	processIDs := map[string]string{}

	for _, row := range dataRows(f, SheetProjects) {
		oldID, name := cellAt(row, 0), cellAt(row, 1)
		if name == "" {
			continue
		}
		p, err := m.CreateProject(name, cellAt(row, 2), cellAt(row, 7))
		if err != nil {
			return result, err
		}
		applyProjectRow(m, p, row)
		projectIDs[oldID] = p.ID
		result.Projects++
	}

	for _, row := range dataRows(f, SheetPhases) {
		oldID, name := cellAt(row, 0), cellAt(row, 1)
		parentID, ok := projectIDs[cellAt(row, 3)]
		if name == "" || !ok {
			continue
		}
		p, err := m.CreatePhase(name, parentID, cellAt(row, 2))
		if err != nil {
			return result, err
		}
		applyPhaseRow(m, p, row)
		phaseIDs[oldID] = p.ID
		result.Phases++
	}

	for _, row := range dataRows(f, SheetProcesses) {
		oldID, name := cellAt(row, 0), cellAt(row, 1)
		parentID, ok := phaseIDs[cellAt(row, 3)]
		if name == "" || !ok {
			continue
		}
		p, err := m.CreateProcess(name, cellAt(row, 4), parentID, cellAt(row, 2))
		if err != nil {
			return result, err
		}
		applyProcessRow(m, p, row)
		processIDs[oldID] = p.ID
		result.Processes++
	}

	for _, row := range dataRows(f, SheetTasks) {
		name := cellAt(row, 1)
		parentID, ok := processIDs[cellAt(row, 3)]
		if name == "" || !ok {
			continue
		}
		t, err := m.CreateTask(name, parentID, cellAt(row, 2))
		if err != nil {
			return result, err
		}
		applyTaskRow(m, t, row)
		result.Tasks++
	}

	return result, nil
}

// dataRows returns the sheet's rows without the header. A missing
// sheet yields nil.
func dataRows(f *excelize.File, sheet string) [][]string {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return nil
	}
	return rows[1:]
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseDateCell(row []string, col int) *model.Date {
	s := cellAt(row, col)
	if s == "" {
		return nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

func parseFloatCell(row []string, col int) (float64, bool) {
	s := cellAt(row, col)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIntCell(row []string, col int) (int, bool) {
	s := cellAt(row, col)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func applyProjectRow(m *core.Manager, p *model.Project, row []string) {
	if status := model.ProjectStatus(cellAt(row, 3)); status.Valid() && status != p.Status {
		p.SetStatus(status, true)
	}
	p.SetDates(parseDateCell(row, 5), parseDateCell(row, 6))
	if v, ok := parseIntCell(row, 8); ok {
		p.SetPriority(v)
	}
	if v, ok := parseIntCell(row, 9); ok {
		p.SetRiskLevel(v)
	}
	_ = m.UpdateProject(p)
}

func applyPhaseRow(m *core.Manager, p *model.Phase, row []string) {
	p.SetEndDate(parseDateCell(row, 5))
	p.Milestone = cellAt(row, 6)
	if v, ok := parseIntCell(row, 7); ok {
		p.SetPriority(v)
	}
	_ = m.UpdatePhase(p)
}

func applyProcessRow(m *core.Manager, p *model.Process, row []string) {
	if v, ok := parseFloatCell(row, 5); ok {
		p.SetProgress(v, true)
	}
	p.SetDates(parseDateCell(row, 6), parseDateCell(row, 7))
	if v, ok := parseFloatCell(row, 8); ok {
		p.SetEstimatedHours(v)
	}
	if v, ok := parseIntCell(row, 9); ok {
		p.SetPriority(v)
	}
	_ = m.UpdateProcess(p)
}

func applyTaskRow(m *core.Manager, t *model.Task, row []string) {
	if v, ok := parseIntCell(row, 5); ok {
		t.SetPriority(v)
	}
	if v, ok := parseFloatCell(row, 6); ok {
		t.SetEstimatedHours(v)
	}
	if v, ok := parseFloatCell(row, 7); ok {
		t.SetActualHours(v)
	}
	if err := m.UpdateTask(t); err != nil {
		return
	}
	if status := model.TaskStatus(cellAt(row, 4)); status.Valid() && status != t.Status {
		_, _ = m.UpdateTaskStatus(t.ID, status, "imported")
	}
}
