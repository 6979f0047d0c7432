package core

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/NeoKiring/project-management-system/internal/errs"
	"github.com/NeoKiring/project-management-system/internal/model"
	"github.com/NeoKiring/project-management-system/internal/storage"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m, err := New(store, zerolog.Nop(), nil, "tester")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

// buildChain creates project → phase → process with the process in
// automatic progress mode.
func buildChain(t *testing.T, m *Manager) (*model.Project, *model.Phase, *model.Process) {
	t.Helper()
	project, err := m.CreateProject("Launch", "", "alice")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	phase, err := m.CreatePhase("Build", project.ID, "")
	if err != nil {
		t.Fatalf("CreatePhase: %v", err)
	}
	process, err := m.CreateProcess("Implement", "bob", phase.ID, "")
	if err != nil {
		t.Fatalf("CreateProcess: %v", err)
	}
	if _, err := m.SetProcessProgress(process.ID, 0, false); err != nil {
		t.Fatalf("SetProcessProgress: %v", err)
	}
	return project, phase, process
}

func TestCreate_MissingParentIsBusinessError(t *testing.T) {
	m := testManager(t)

	if _, err := m.CreatePhase("orphan", "no-such-project", ""); !errs.IsBusiness(err) {
		t.Errorf("expected business error, got %v", err)
	}
	if _, err := m.CreateProcess("orphan", "bob", "no-such-phase", ""); !errs.IsBusiness(err) {
		t.Errorf("expected business error, got %v", err)
	}
	if _, err := m.CreateTask("orphan", "no-such-process", ""); !errs.IsBusiness(err) {
		t.Errorf("expected business error, got %v", err)
	}
}

func TestUpdateTaskStatus_CascadesToProject(t *testing.T) {
	m := testManager(t)
	project, phase, process := buildChain(t, m)

	t1, _ := m.CreateTask("one", process.ID, "")
	t2, _ := m.CreateTask("two", process.ID, "")

	ok, err := m.UpdateTaskStatus(t1.ID, model.TaskCompleted, "done")
	if err != nil || !ok {
		t.Fatalf("UpdateTaskStatus: ok=%v err=%v", ok, err)
	}

	if got := m.GetProcess(process.ID).Progress; got != 50.0 {
		t.Errorf("process progress = %v, want 50.0", got)
	}
	if got := m.GetPhase(phase.ID).Progress; got != 50.0 {
		t.Errorf("phase progress = %v, want 50.0", got)
	}
	p := m.GetProject(project.ID)
	if p.Progress != 50.0 {
		t.Errorf("project progress = %v, want 50.0", p.Progress)
	}
	if p.Status != model.ProjectInProgress {
		t.Errorf("project status = %s, want in_progress", p.Status)
	}

	if _, err := m.UpdateTaskStatus(t2.ID, model.TaskCompleted, ""); err != nil {
		t.Fatalf("second UpdateTaskStatus: %v", err)
	}
	p = m.GetProject(project.ID)
	if p.Progress != 100.0 || p.Status != model.ProjectCompleted {
		t.Errorf("project after full completion: progress=%v status=%s", p.Progress, p.Status)
	}
}

func TestUpdateTaskStatus_CannotHandleShrinksDenominator(t *testing.T) {
	m := testManager(t)
	_, _, process := buildChain(t, m)

	t1, _ := m.CreateTask("one", process.ID, "")
	t2, _ := m.CreateTask("two", process.ID, "")

	m.UpdateTaskStatus(t1.ID, model.TaskCompleted, "")
	m.UpdateTaskStatus(t2.ID, model.TaskCannotHandle, "blocked upstream")

	// 1 completed of 1 actionable.
	if got := m.GetProcess(process.ID).Progress; got != 100.0 {
		t.Errorf("process progress = %v, want 100.0", got)
	}
}

func TestManualProcess_IsolatedFromTasks(t *testing.T) {
	m := testManager(t)
	_, phase, process := buildChain(t, m)

	if _, err := m.SetProcessProgress(process.ID, 42.0, true); err != nil {
		t.Fatalf("SetProcessProgress: %v", err)
	}
	task, _ := m.CreateTask("one", process.ID, "")
	if _, err := m.UpdateTaskStatus(task.ID, model.TaskCompleted, ""); err != nil {
		t.Fatalf("UpdateTaskStatus: %v", err)
	}

	// Manual progress pinned, but the phase still averages it in.
	if got := m.GetProcess(process.ID).Progress; got != 42.0 {
		t.Errorf("manual process progress = %v, want 42.0", got)
	}
	if got := m.GetPhase(phase.ID).Progress; got != 42.0 {
		t.Errorf("phase progress = %v, want 42.0", got)
	}
}

func TestManualProjectStatus_SurvivesCascade(t *testing.T) {
	m := testManager(t)
	project, _, process := buildChain(t, m)

	p := m.GetProject(project.ID)
	p.SetStatus(model.ProjectOnHold, true)
	if err := m.UpdateProject(p); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}

	task, _ := m.CreateTask("one", process.ID, "")
	m.UpdateTaskStatus(task.ID, model.TaskCompleted, "")

	p = m.GetProject(project.ID)
	if p.Status != model.ProjectOnHold {
		t.Errorf("manual status lost: %s", p.Status)
	}
	// Progress has no manual flag and still rolls up.
	if p.Progress != 100.0 {
		t.Errorf("project progress = %v, want 100.0", p.Progress)
	}
}

func TestCloneProject_DeepCopyResets(t *testing.T) {
	m := testManager(t)
	project, phase, process := buildChain(t, m)
	task, _ := m.CreateTask("one", process.ID, "")
	task.SetEstimatedHours(8)
	if err := m.UpdateTask(task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	m.UpdateTaskStatus(task.ID, model.TaskCompleted, "")

	clone, err := m.CloneProject(project.ID, "Relaunch")
	if err != nil {
		t.Fatalf("CloneProject: %v", err)
	}
	if clone.ID == project.ID || clone.Name != "Relaunch" {
		t.Fatalf("bad clone identity: id=%s name=%s", clone.ID, clone.Name)
	}
	if clone.Status != model.ProjectNotStarted || clone.Progress != 0 {
		t.Errorf("clone state not reset: status=%s progress=%v", clone.Status, clone.Progress)
	}

	phases := m.ListPhases(clone.ID)
	if len(phases) != 1 || phases[0].ID == phase.ID {
		t.Fatalf("phase not cloned: %v", phases)
	}
	processes := m.ListProcesses(phases[0].ID)
	if len(processes) != 1 || processes[0].ID == process.ID {
		t.Fatalf("process not cloned: %v", processes)
	}
	tasks := m.ListTasks(processes[0].ID)
	if len(tasks) != 1 {
		t.Fatalf("task not cloned: %v", tasks)
	}
	cloned := tasks[0]
	if cloned.Status != model.TaskNotStarted || len(cloned.StatusHistory) != 1 {
		t.Errorf("task state not reset: status=%s history=%d", cloned.Status, len(cloned.StatusHistory))
	}
	if cloned.EstimatedHours == nil || *cloned.EstimatedHours != 8 {
		t.Errorf("estimate lost: %v", cloned.EstimatedHours)
	}

	// Source untouched.
	if src := m.GetTask(task.ID); src.Status != model.TaskCompleted {
		t.Errorf("source task changed: %s", src.Status)
	}

	// Default name.
	second, err := m.CloneProject(project.ID, "")
	if err != nil {
		t.Fatalf("second clone: %v", err)
	}
	if second.Name != "Launch (copy)" {
		t.Errorf("default name = %q", second.Name)
	}

	if _, err := m.CloneProject("no-such-project", "x"); !errs.IsBusiness(err) {
		t.Errorf("expected business error, got %v", err)
	}
}

func TestUpdateTaskStatus_MissingTask(t *testing.T) {
	m := testManager(t)
	ok, err := m.UpdateTaskStatus("no-such-task", model.TaskCompleted, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("missing task reported updated")
	}
}

func TestDeleteProject_CascadesAllLevels(t *testing.T) {
	m := testManager(t)

	// 1 project, 2 phases, 4 processes, 8 tasks.
	project, _ := m.CreateProject("Big", "", "")
	for i := 0; i < 2; i++ {
		phase, err := m.CreatePhase("phase", project.ID, "")
		if err != nil {
			t.Fatalf("CreatePhase: %v", err)
		}
		for j := 0; j < 2; j++ {
			process, err := m.CreateProcess("process", "bob", phase.ID, "")
			if err != nil {
				t.Fatalf("CreateProcess: %v", err)
			}
			for k := 0; k < 2; k++ {
				if _, err := m.CreateTask("task", process.ID, ""); err != nil {
					t.Fatalf("CreateTask: %v", err)
				}
			}
		}
	}
	stats := m.Stats()
	if stats.Phases != 2 || stats.Processes != 4 || stats.Tasks != 8 {
		t.Fatalf("setup counts wrong: %+v", stats)
	}

	ok, err := m.DeleteProject(project.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteProject: ok=%v err=%v", ok, err)
	}

	stats = m.Stats()
	if stats.Projects != 0 || stats.Phases != 0 || stats.Processes != 0 || stats.Tasks != 0 {
		t.Errorf("non-zero counts after cascade delete: %+v", stats)
	}
	if removed, err := m.CleanupOrphans(); err != nil || removed["references"] != 0 {
		t.Errorf("dangling references after cascade: removed=%v err=%v", removed, err)
	}
}

func TestDeleteTask_DetachesFromProcess(t *testing.T) {
	m := testManager(t)
	_, _, process := buildChain(t, m)
	t1, _ := m.CreateTask("one", process.ID, "")
	t2, _ := m.CreateTask("two", process.ID, "")
	m.UpdateTaskStatus(t2.ID, model.TaskCompleted, "")

	ok, err := m.DeleteTask(t1.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteTask: ok=%v err=%v", ok, err)
	}
	if got := len(m.GetProcess(process.ID).Tasks); got != 1 {
		t.Errorf("process still references %d tasks, want 1", got)
	}
}

func TestPersistence_SurvivesReload(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m, err := New(store, zerolog.Nop(), nil, "tester")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	project, _, process := buildChain(t, m)
	task, _ := m.CreateTask("one", process.ID, "")
	m.UpdateTaskStatus(task.ID, model.TaskCompleted, "")

	m2, err := New(store, zerolog.Nop(), nil, "tester")
	if err != nil {
		t.Fatalf("reload manager: %v", err)
	}
	p := m2.GetProject(project.ID)
	if p == nil {
		t.Fatal("project lost on reload")
	}
	if p.Progress != 100.0 || p.Status != model.ProjectCompleted {
		t.Errorf("derived state lost: progress=%v status=%s", p.Progress, p.Status)
	}
	reloaded := m2.GetTask(task.ID)
	if reloaded == nil || len(reloaded.StatusHistory) != 2 {
		t.Errorf("task history lost: %+v", reloaded)
	}
}

func TestSearchProjects(t *testing.T) {
	m := testManager(t)
	m.CreateProject("Alpha Launch", "", "alice")
	m.CreateProject("Beta Launch", "", "bob")
	m.CreateProject("Gamma", "", "alice")

	if got := len(m.SearchProjects("launch", "", "")); got != 2 {
		t.Errorf("name search: got %d, want 2", got)
	}
	if got := len(m.SearchProjects("", "alice", "")); got != 2 {
		t.Errorf("manager search: got %d, want 2", got)
	}
	if got := len(m.SearchProjects("launch", "bob", "")); got != 1 {
		t.Errorf("combined search: got %d, want 1", got)
	}
	if got := len(m.SearchProjects("", "", model.ProjectNotStarted)); got != 3 {
		t.Errorf("status search: got %d, want 3", got)
	}
}

func TestListOrder_FollowsParentLists(t *testing.T) {
	m := testManager(t)
	project, _ := m.CreateProject("Ordered", "", "")
	first, _ := m.CreatePhase("first", project.ID, "")
	second, _ := m.CreatePhase("second", project.ID, "")

	phases := m.ListPhases(project.ID)
	if len(phases) != 2 || phases[0].ID != first.ID || phases[1].ID != second.ID {
		t.Errorf("phase order not preserved: %v", phases)
	}
}

func TestCleanupOrphans(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	m, err := New(store, zerolog.Nop(), nil, "tester")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	project, _, process := buildChain(t, m)
	task, _ := m.CreateTask("one", process.ID, "")

	// Remove the project and a task behind the manager's back, leaving
	// an orphaned phase chain and a dangling task reference.
	if _, err := store.DeleteProject(project.ID); err != nil {
		t.Fatalf("store delete: %v", err)
	}
	if _, err := store.DeleteTask(task.ID); err != nil {
		t.Fatalf("store delete task: %v", err)
	}

	m2, err := New(store, zerolog.Nop(), nil, "tester")
	if err != nil {
		t.Fatalf("reload manager: %v", err)
	}
	removed, err := m2.CleanupOrphans()
	if err != nil {
		t.Fatalf("CleanupOrphans: %v", err)
	}
	// The process and remaining task go with the orphaned phase.
	if removed["phases"] != 1 {
		t.Errorf("phases removed = %d, want 1", removed["phases"])
	}
	stats := m2.Stats()
	if stats.Phases != 0 || stats.Processes != 0 || stats.Tasks != 0 {
		t.Errorf("orphans survived: %+v", stats)
	}
}

func TestStats_Distributions(t *testing.T) {
	m := testManager(t)
	_, _, process := buildChain(t, m)
	t1, _ := m.CreateTask("one", process.ID, "")
	m.CreateTask("two", process.ID, "")
	m.UpdateTaskStatus(t1.ID, model.TaskCompleted, "")

	stats := m.Stats()
	if stats.Tasks != 2 {
		t.Errorf("task count = %d, want 2", stats.Tasks)
	}
	if stats.TaskStatus[model.TaskCompleted] != 1 || stats.TaskStatus[model.TaskNotStarted] != 1 {
		t.Errorf("task distribution: %+v", stats.TaskStatus)
	}
	if stats.ProjectStatus[model.ProjectInProgress] != 1 {
		t.Errorf("project distribution: %+v", stats.ProjectStatus)
	}
}
