package export

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/NeoKiring/project-management-system/internal/core"
	"github.com/NeoKiring/project-management-system/internal/model"
	"github.com/NeoKiring/project-management-system/internal/storage"
)

func testManager(t *testing.T) *core.Manager {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m, err := core.New(store, zerolog.Nop(), nil, "tester")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestWorkbook_RoundTrip(t *testing.T) {
	src := testManager(t)

	project, err := src.CreateProject("Rollout", "big rollout", "alice")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	start, _ := model.ParseDate("2026-01-05")
	end, _ := model.ParseDate("2026-06-30")
	project.SetDates(&start, &end)
	project.SetPriority(2)
	project.SetRiskLevel(4)
	if err := src.UpdateProject(project); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	phase, _ := src.CreatePhase("Build", project.ID, "build it")
	phase.Milestone = "feature complete"
	phaseEnd, _ := model.ParseDate("2026-03-31")
	phase.SetEndDate(&phaseEnd)
	if err := src.UpdatePhase(phase); err != nil {
		t.Fatalf("UpdatePhase: %v", err)
	}

	process, _ := src.CreateProcess("Implement", "bob", phase.ID, "")
	process.SetEstimatedHours(40)
	if _, err := src.SetProcessProgress(process.ID, 42.5, true); err != nil {
		t.Fatalf("SetProcessProgress: %v", err)
	}

	task, _ := src.CreateTask("write code", process.ID, "the fun part")
	task.SetEstimatedHours(16)
	task.SetActualHours(12.5)
	if err := src.UpdateTask(task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	src.UpdateTaskStatus(task.ID, model.TaskCompleted, "")
	src.CreateTask("review", process.ID, "")

	path := filepath.Join(t.TempDir(), "export.xlsx")
	if err := WriteWorkbook(src, path); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	dst := testManager(t)
	result, err := ReadWorkbook(dst, path)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if result.Projects != 1 || result.Phases != 1 || result.Processes != 1 || result.Tasks != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	projects := dst.ListProjects()
	if len(projects) != 1 {
		t.Fatalf("got %d projects", len(projects))
	}
	p := projects[0]
	if p.ID == project.ID {
		t.Error("imported project kept the exported id")
	}
	if p.Name != "Rollout" || p.Manager != "alice" || p.Priority != 2 || p.RiskLevel != 4 {
		t.Errorf("project fields lost: %+v", p)
	}
	if p.StartDate == nil || p.StartDate.String() != "2026-01-05" {
		t.Errorf("start date lost: %v", p.StartDate)
	}

	phases := dst.ListPhases(p.ID)
	if len(phases) != 1 {
		t.Fatalf("phase not attached to imported project")
	}
	if phases[0].Milestone != "feature complete" {
		t.Errorf("milestone lost: %q", phases[0].Milestone)
	}

	processes := dst.ListProcesses(phases[0].ID)
	if len(processes) != 1 {
		t.Fatalf("process not attached to imported phase")
	}
	pr := processes[0]
	if pr.Assignee != "bob" || !pr.ProgressManual || pr.Progress != 42.5 {
		t.Errorf("process fields lost: assignee=%q manual=%v progress=%v", pr.Assignee, pr.ProgressManual, pr.Progress)
	}
	if pr.EstimatedHours == nil || *pr.EstimatedHours != 40 {
		t.Errorf("estimated hours lost: %v", pr.EstimatedHours)
	}

	tasks := dst.ListTasks(pr.ID)
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	var done *model.Task
	for _, tk := range tasks {
		if tk.Name == "write code" {
			done = tk
		}
	}
	if done == nil {
		t.Fatal("task missing after import")
	}
	if done.Status != model.TaskCompleted {
		t.Errorf("task status lost: %s", done.Status)
	}
	if done.ActualHours == nil || *done.ActualHours != 12.5 {
		t.Errorf("actual hours lost: %v", done.ActualHours)
	}
}

func TestReadWorkbook_SkipsRowsWithMissingParents(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.NewSheet(SheetProjects)
	f.SetCellValue(SheetProjects, "A1", "ID")
	f.SetCellValue(SheetProjects, "B1", "Name")
	f.SetCellValue(SheetProjects, "A2", "proj-1")
	f.SetCellValue(SheetProjects, "B2", "Known")

	f.NewSheet(SheetPhases)
	f.SetCellValue(SheetPhases, "A1", "ID")
	f.SetCellValue(SheetPhases, "B1", "Name")
	f.SetCellValue(SheetPhases, "D1", "Project ID")
	f.SetCellValue(SheetPhases, "A2", "phase-1")
	f.SetCellValue(SheetPhases, "B2", "Attached")
	f.SetCellValue(SheetPhases, "D2", "proj-1")
	f.SetCellValue(SheetPhases, "A3", "phase-2")
	f.SetCellValue(SheetPhases, "B3", "Orphan")
	f.SetCellValue(SheetPhases, "D3", "proj-unknown")

	// Tasks under the orphaned chain must be skipped too.
	f.NewSheet(SheetTasks)
	f.SetCellValue(SheetTasks, "A1", "ID")
	f.SetCellValue(SheetTasks, "B1", "Name")
	f.SetCellValue(SheetTasks, "D1", "Process ID")
	f.SetCellValue(SheetTasks, "B2", "floating")
	f.SetCellValue(SheetTasks, "D2", "proc-unknown")

	path := filepath.Join(t.TempDir(), "partial.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	m := testManager(t)
	result, err := ReadWorkbook(m, path)
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if result.Projects != 1 || result.Phases != 1 || result.Processes != 0 || result.Tasks != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if got := len(m.ListPhases("")); got != 1 {
		t.Errorf("got %d phases, want 1", got)
	}
}

func TestReadWorkbook_MissingFile(t *testing.T) {
	m := testManager(t)
	if _, err := ReadWorkbook(m, filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Error("expected error for missing file")
	}
}
