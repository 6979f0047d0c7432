package model

import (
	"testing"
	"time"
)

// taskSet builds a resolver over a fixed set of tasks.
func taskSet(tasks ...*Task) (ids []string, resolve TaskResolver) {
	byID := map[string]*Task{}
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	return ids, func(id string) *Task { return byID[id] }
}

func processSet(processes ...*Process) (ids []string, resolve ProcessResolver) {
	byID := map[string]*Process{}
	for _, p := range processes {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	return ids, func(id string) *Process { return byID[id] }
}

func phaseSet(phases ...*Phase) (ids []string, resolve PhaseResolver) {
	byID := map[string]*Phase{}
	for _, p := range phases {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	return ids, func(id string) *Phase { return byID[id] }
}

func taskWithStatus(t *testing.T, status TaskStatus) *Task {
	t.Helper()
	task := NewTask("task", "")
	if !task.SetStatus(status, "tester", "") {
		t.Fatalf("SetStatus(%s) rejected", status)
	}
	return task
}

func TestProcess_Status_Boundaries(t *testing.T) {
	cases := []struct {
		progress float64
		want     ProgressStatus
	}{
		{0.0, ProgressNotStarted},
		{0.1, ProgressInProgress},
		{50.0, ProgressInProgress},
		{99.9, ProgressInProgress},
		{100.0, ProgressCompleted},
	}
	for _, c := range cases {
		p := NewProcess("p", "", "alice")
		if !p.SetProgress(c.progress, true) {
			t.Fatalf("SetProgress(%v) rejected", c.progress)
		}
		if got := p.Status(); got != c.want {
			t.Errorf("progress %v: got status %s, want %s", c.progress, got, c.want)
		}
	}
}

func TestProcess_SetProgress_Range(t *testing.T) {
	p := NewProcess("p", "", "alice")
	if p.SetProgress(-0.1, true) {
		t.Error("negative progress accepted")
	}
	if p.SetProgress(100.1, true) {
		t.Error("progress above 100 accepted")
	}
	if !p.SetProgress(0, true) || !p.SetProgress(100, true) {
		t.Error("boundary values rejected")
	}
}

func TestProcess_CalculateProgress_ActionableRatio(t *testing.T) {
	ids, resolve := taskSet(
		taskWithStatus(t, TaskCompleted),
		taskWithStatus(t, TaskNotStarted),
		taskWithStatus(t, TaskCannotHandle),
	)
	p := NewProcess("p", "", "alice")
	p.Tasks = ids

	// Cannot-handle is excluded from the denominator: 1 of 2.
	if got := p.CalculateProgress(resolve); got != 50.0 {
		t.Errorf("got %v, want 50.0", got)
	}
}

func TestProcess_CalculateProgress_Rounding(t *testing.T) {
	ids, resolve := taskSet(
		taskWithStatus(t, TaskCompleted),
		taskWithStatus(t, TaskNotStarted),
		taskWithStatus(t, TaskInProgress),
	)
	p := NewProcess("p", "", "alice")
	p.Tasks = ids

	if got := p.CalculateProgress(resolve); got != 33.3 {
		t.Errorf("got %v, want 33.3", got)
	}
}

func TestProcess_CalculateProgress_EmptyAndAllExcluded(t *testing.T) {
	p := NewProcess("p", "", "alice")
	_, resolve := taskSet()
	if got := p.CalculateProgress(resolve); got != 0.0 {
		t.Errorf("no tasks: got %v, want 0.0", got)
	}

	ids, resolve := taskSet(
		taskWithStatus(t, TaskCannotHandle),
		taskWithStatus(t, TaskCannotHandle),
	)
	p.Tasks = ids
	if got := p.CalculateProgress(resolve); got != 0.0 {
		t.Errorf("all cannot-handle: got %v, want 0.0", got)
	}
}

func TestProcess_UpdateProgress_ManualMode(t *testing.T) {
	ids, resolve := taskSet(taskWithStatus(t, TaskCompleted))
	p := NewProcess("p", "", "alice")
	p.Tasks = ids
	p.SetProgress(42.0, true)

	if !p.UpdateProgress(resolve) {
		t.Fatal("UpdateProgress failed")
	}
	if p.Progress != 42.0 {
		t.Errorf("manual progress overwritten: got %v", p.Progress)
	}

	p.SetProgress(0, false)
	p.UpdateProgress(resolve)
	if p.Progress != 100.0 {
		t.Errorf("automatic recompute: got %v, want 100.0", p.Progress)
	}
}

func TestProcess_CalculateProgress_DanglingTaskIDs(t *testing.T) {
	ids, resolve := taskSet(taskWithStatus(t, TaskCompleted))
	p := NewProcess("p", "", "alice")
	p.Tasks = append(ids, "missing-id")

	if got := p.CalculateProgress(resolve); got != 100.0 {
		t.Errorf("got %v, want 100.0 (dangling id skipped)", got)
	}
}

func processWithProgress(progress float64, estimatedHours float64) *Process {
	p := NewProcess("p", "", "alice")
	p.SetProgress(progress, true)
	if estimatedHours > 0 {
		p.SetEstimatedHours(estimatedHours)
	}
	return p
}

func TestPhase_CalculateProgress_HoursWeighted(t *testing.T) {
	ids, resolve := processSet(
		processWithProgress(100, 30),
		processWithProgress(0, 10),
	)
	phase := NewPhase("phase", "")
	phase.Processes = ids

	// (100*30 + 0*10) / 40 = 75.
	if got := phase.CalculateProgress(resolve); got != 75.0 {
		t.Errorf("got %v, want 75.0", got)
	}
}

func TestPhase_CalculateProgress_UnsetHoursWeighOne(t *testing.T) {
	ids, resolve := processSet(
		processWithProgress(100, 0),
		processWithProgress(0, 0),
		processWithProgress(0, 0),
	)
	phase := NewPhase("phase", "")
	phase.Processes = ids

	if got := phase.CalculateProgress(resolve); got != 33.3 {
		t.Errorf("got %v, want 33.3", got)
	}
}

func TestPhase_CalculateProgress_Empty(t *testing.T) {
	phase := NewPhase("phase", "")
	_, resolve := processSet()
	if got := phase.CalculateProgress(resolve); got != 0.0 {
		t.Errorf("got %v, want 0.0", got)
	}
}

func TestPhase_DateRange_DerivedFromChildren(t *testing.T) {
	early := NewDate(2026, time.March, 1)
	late := NewDate(2026, time.April, 15)
	mid := NewDate(2026, time.March, 20)

	a := NewProcess("a", "", "alice")
	a.SetDates(&early, &mid)
	b := NewProcess("b", "", "bob")
	b.SetDates(&mid, &late)

	ids, resolve := processSet(a, b)
	phase := NewPhase("phase", "")
	phase.Processes = ids

	start, end := phase.DateRange(resolve)
	if start == nil || !start.Equal(early) {
		t.Errorf("start: got %v, want %s", start, early)
	}
	if end == nil || !end.Equal(late) {
		t.Errorf("end: got %v, want %s", end, late)
	}
}

func TestPhase_DateRange_OwnEndDateFallback(t *testing.T) {
	own := NewDate(2026, time.May, 1)
	phase := NewPhase("phase", "")
	phase.SetEndDate(&own)

	_, resolve := processSet()
	start, end := phase.DateRange(resolve)
	if start != nil {
		t.Errorf("start: got %v, want nil", start)
	}
	if end == nil || !end.Equal(own) {
		t.Errorf("end: got %v, want %s", end, own)
	}
}

func phaseWithProgress(progress float64) *Phase {
	p := NewPhase("phase", "")
	p.Progress = progress
	return p
}

func TestProject_CalculateStatus_Aggregation(t *testing.T) {
	cases := []struct {
		name       string
		progresses []float64
		want       ProjectStatus
	}{
		{"no phases", nil, ProjectNotStarted},
		{"all completed", []float64{100, 100}, ProjectCompleted},
		{"any in progress", []float64{100, 50}, ProjectInProgress},
		{"all not started", []float64{0, 0}, ProjectNotStarted},
		{"mixed completed and not started", []float64{100, 0}, ProjectInProgress},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var phases []*Phase
			for _, p := range c.progresses {
				phases = append(phases, phaseWithProgress(p))
			}
			ids, resolve := phaseSet(phases...)
			project := NewProject("proj", "")
			project.Phases = ids
			if got := project.CalculateStatus(resolve); got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestProject_UpdateStatus_ManualOverride(t *testing.T) {
	ids, resolve := phaseSet(phaseWithProgress(100))
	project := NewProject("proj", "")
	project.Phases = ids
	project.SetStatus(ProjectOnHold, true)

	project.UpdateStatus(resolve)
	if project.Status != ProjectOnHold {
		t.Errorf("manual status overwritten: got %s", project.Status)
	}

	project.SetStatus(ProjectNotStarted, false)
	project.UpdateStatus(resolve)
	if project.Status != ProjectCompleted {
		t.Errorf("automatic status: got %s, want completed", project.Status)
	}
}

func TestProject_CalculateProgress_DurationWeighted(t *testing.T) {
	start := NewDate(2026, time.June, 1)
	end := NewDate(2026, time.June, 10)

	// Phase with a derived 10-day duration at 100%.
	proc := NewProcess("proc", "", "alice")
	proc.SetDates(&start, nil)
	procIDs, resolveProc := processSet(proc)
	long := NewPhase("long", "")
	long.Processes = procIDs
	long.SetEndDate(&end)
	long.Progress = 100

	// Phase with no dates defaults to weight 1 at 0%.
	short := phaseWithProgress(0)

	ids, resolvePhase := phaseSet(long, short)
	project := NewProject("proj", "")
	project.Phases = ids

	// (100*10 + 0*1) / 11 = 90.909... → 90.9.
	if got := project.CalculateProgress(resolvePhase, resolveProc); got != 90.9 {
		t.Errorf("got %v, want 90.9", got)
	}
}

func TestProject_CalculateProgress_NoDatesSimple(t *testing.T) {
	ids, resolvePhase := phaseSet(phaseWithProgress(100), phaseWithProgress(0))
	project := NewProject("proj", "")
	project.Phases = ids
	_, resolveProc := processSet()

	// Both phases weigh 1.
	if got := project.CalculateProgress(resolvePhase, resolveProc); got != 50.0 {
		t.Errorf("got %v, want 50.0", got)
	}
}

func TestTask_StatusHistory(t *testing.T) {
	task := NewTask("task", "")
	if len(task.StatusHistory) != 1 {
		t.Fatalf("expected seeded history entry, got %d", len(task.StatusHistory))
	}
	if task.StatusHistory[0].OldStatus != "" || task.StatusHistory[0].NewStatus != TaskNotStarted {
		t.Errorf("unexpected seed entry: %+v", task.StatusHistory[0])
	}

	if !task.SetStatus(TaskInProgress, "alice", "starting") {
		t.Fatal("SetStatus rejected")
	}
	if len(task.StatusHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(task.StatusHistory))
	}
	last := task.StatusHistory[1]
	if last.OldStatus != TaskNotStarted || last.NewStatus != TaskInProgress {
		t.Errorf("unexpected transition: %+v", last)
	}
	if last.ChangedBy != "alice" || last.Comment != "starting" {
		t.Errorf("actor/comment not recorded: %+v", last)
	}

	// Same-status transition is a no-op success.
	if !task.SetStatus(TaskInProgress, "alice", "") {
		t.Fatal("no-op transition rejected")
	}
	if len(task.StatusHistory) != 2 {
		t.Errorf("no-op transition appended history: %d entries", len(task.StatusHistory))
	}

	if task.SetStatus("bogus", "alice", "") {
		t.Error("invalid status accepted")
	}
}

func TestTask_CannotHandle_IsNotTerminal(t *testing.T) {
	task := NewTask("task", "")
	task.SetStatus(TaskCannotHandle, "alice", "")
	if task.IsActionable() {
		t.Error("cannot-handle task reported actionable")
	}
	if !task.SetStatus(TaskInProgress, "alice", "retry") {
		t.Error("transition out of cannot-handle rejected")
	}
	if !task.IsActionable() {
		t.Error("task not actionable after leaving cannot-handle")
	}
}

func TestDate_ParseAndArithmetic(t *testing.T) {
	d, err := ParseDate("2026-08-28")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2026-08-28" {
		t.Errorf("round trip: got %s", d.String())
	}
	if _, err := ParseDate("28.08.2026"); err == nil {
		t.Error("non-ISO date accepted")
	}

	later := d.AddDays(5)
	if got := d.DaysUntil(later); got != 5 {
		t.Errorf("DaysUntil: got %d, want 5", got)
	}
	if got := later.DaysUntil(d); got != -5 {
		t.Errorf("DaysUntil past: got %d, want -5", got)
	}
}

func TestProcess_Validate_RequiresAssignee(t *testing.T) {
	p := NewProcess("p", "", "")
	if err := p.Validate(); err == nil {
		t.Error("process without assignee validated")
	}
	p.SetAssignee("alice")
	if err := p.Validate(); err != nil {
		t.Errorf("valid process rejected: %v", err)
	}
}

func TestProject_Validate_Ranges(t *testing.T) {
	p := NewProject("proj", "")
	if err := p.Validate(); err != nil {
		t.Fatalf("fresh project invalid: %v", err)
	}
	p.Priority = 6
	if err := p.Validate(); err == nil {
		t.Error("priority 6 accepted")
	}
	p.Priority = 3
	p.RiskLevel = 4
	if err := p.Validate(); err == nil {
		t.Error("risk level 4 accepted")
	}
}
