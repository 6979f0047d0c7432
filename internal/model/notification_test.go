package model

import (
	"testing"
	"time"
)

// fixedClock pins the generator to 2026-08-28.
var fixedNow = time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

func testGenerator() *Generator {
	g := NewGenerator(nil)
	g.Now = func() time.Time { return fixedNow }
	return g
}

func datePtr(d Date) *Date { return &d }

func processDue(inDays int, progress float64) *Process {
	p := NewProcess("deploy", "", "alice")
	p.SetDates(nil, datePtr(DateOf(fixedNow).AddDays(inDays)))
	p.SetProgress(progress, true)
	return p
}

func findType(list []*Notification, typ NotificationType) *Notification {
	for _, n := range list {
		if n.Type == typ {
			return n
		}
	}
	return nil
}

func TestGenerator_DeadlineApproaching_Window(t *testing.T) {
	g := testGenerator()

	cases := []struct {
		inDays       int
		wantHit      bool
		wantPriority NotificationPriority
	}{
		{0, true, PriorityHigh},
		{1, true, PriorityHigh},
		{2, true, PriorityMedium},
		{7, true, PriorityMedium},
		{8, false, ""},
		{-1, false, ""}, // past deadlines belong to the overdue rule
	}
	for _, c := range cases {
		p := processDue(c.inDays, 60)
		n := findType(g.CheckProcess(p), DeadlineApproaching)
		if c.wantHit && n == nil {
			t.Errorf("due in %d days: expected notification", c.inDays)
			continue
		}
		if !c.wantHit {
			if n != nil {
				t.Errorf("due in %d days: unexpected notification %q", c.inDays, n.Message)
			}
			continue
		}
		if n.Priority != c.wantPriority {
			t.Errorf("due in %d days: got priority %s, want %s", c.inDays, n.Priority, c.wantPriority)
		}
		if n.Metadata["days_until_deadline"] != float64(c.inDays) {
			t.Errorf("due in %d days: metadata %v", c.inDays, n.Metadata["days_until_deadline"])
		}
	}
}

func TestGenerator_DeadlineOverdue(t *testing.T) {
	g := testGenerator()

	p := processDue(-3, 60)
	n := findType(g.CheckProcess(p), DeadlineOverdue)
	if n == nil {
		t.Fatal("expected overdue notification")
	}
	if n.Priority != PriorityHigh {
		t.Errorf("got priority %s, want high", n.Priority)
	}
	if n.Metadata["days_overdue"] != float64(3) {
		t.Errorf("metadata days_overdue = %v", n.Metadata["days_overdue"])
	}

	// Due today is not overdue.
	if n := findType(g.CheckProcess(processDue(0, 60)), DeadlineOverdue); n != nil {
		t.Errorf("due today flagged overdue: %q", n.Message)
	}
}

func TestGenerator_ProgressDelay(t *testing.T) {
	g := testGenerator()

	p := NewProcess("slow", "", "alice")
	p.SetProgress(49.9, true)
	n := findType(g.CheckProcess(p), ProgressDelay)
	if n == nil {
		t.Fatal("expected delay notification below threshold")
	}
	if n.Priority != PriorityMedium {
		t.Errorf("got priority %s, want medium", n.Priority)
	}

	p.SetProgress(50.0, true)
	if n := findType(g.CheckProcess(p), ProgressDelay); n != nil {
		t.Errorf("progress at threshold flagged: %q", n.Message)
	}
}

func TestGenerator_ProgressInsufficient(t *testing.T) {
	g := testGenerator()

	n := findType(g.CheckProcess(processDue(3, 29.9)), ProgressInsufficient)
	if n == nil {
		t.Fatal("expected insufficient-progress notification")
	}
	if n.Priority != PriorityHigh {
		t.Errorf("got priority %s, want high", n.Priority)
	}

	// Outside the window or above the threshold: silent.
	if n := findType(g.CheckProcess(processDue(4, 29.9)), ProgressInsufficient); n != nil {
		t.Errorf("4 days out flagged: %q", n.Message)
	}
	if n := findType(g.CheckProcess(processDue(3, 30.0)), ProgressInsufficient); n != nil {
		t.Errorf("progress at threshold flagged: %q", n.Message)
	}
}

func TestGenerator_CompletedEntitiesStaySilent(t *testing.T) {
	g := testGenerator()

	p := processDue(-5, 100)
	if list := g.CheckProcess(p); len(list) != 0 {
		t.Errorf("completed process produced %d notifications", len(list))
	}

	// A manually completed project skips deadline rules even below 100%.
	project := NewProject("done", "")
	project.SetStatus(ProjectCompleted, true)
	project.Progress = 80
	project.SetDates(nil, datePtr(DateOf(fixedNow).AddDays(-2)))
	list := g.CheckProject(project)
	if n := findType(list, DeadlineOverdue); n != nil {
		t.Errorf("completed project flagged overdue: %q", n.Message)
	}
}

func TestGenerator_MultipleRulesStack(t *testing.T) {
	g := testGenerator()

	// Due in 2 days at 10%: approaching + delay + insufficient.
	list := g.CheckProcess(processDue(2, 10))
	if len(list) != 3 {
		t.Fatalf("got %d notifications, want 3", len(list))
	}
	for _, typ := range []NotificationType{DeadlineApproaching, ProgressDelay, ProgressInsufficient} {
		if findType(list, typ) == nil {
			t.Errorf("missing %s", typ)
		}
	}
}

func TestGenerator_DisabledTypesSkipped(t *testing.T) {
	settings := DefaultNotificationSettings()
	settings.EnabledTypes[ProgressDelay] = false
	g := NewGenerator(settings)
	g.Now = func() time.Time { return fixedNow }

	p := NewProcess("slow", "", "alice")
	p.SetProgress(10, true)
	if n := findType(g.CheckProcess(p), ProgressDelay); n != nil {
		t.Errorf("disabled rule fired: %q", n.Message)
	}
}

func TestNotificationSettings_EnabledDefaultsTrue(t *testing.T) {
	s := &NotificationSettings{}
	if !s.Enabled(DeadlineOverdue) {
		t.Error("nil map should default to enabled")
	}
	s.EnabledTypes = map[NotificationType]bool{DeadlineOverdue: false}
	if s.Enabled(DeadlineOverdue) {
		t.Error("explicitly disabled type reported enabled")
	}
	if !s.Enabled(ProgressDelay) {
		t.Error("missing key should default to enabled")
	}
}

func TestNotification_Lifecycle(t *testing.T) {
	n := NewNotification(DeadlineOverdue, "id", "Project", "p", "msg", PriorityHigh)
	if n.IsRead() || !n.IsActive() {
		t.Fatal("fresh notification should be unread and active")
	}

	n.Acknowledge()
	if !n.IsRead() {
		t.Error("acknowledge did not mark read")
	}
	if n.IsActive() {
		t.Error("acknowledged notification still active")
	}
	firstAck := *n.AcknowledgedAt

	// Idempotent.
	n.Acknowledge()
	if !n.AcknowledgedAt.Equal(firstAck) {
		t.Error("second acknowledge moved the timestamp")
	}

	d := NewNotification(ProgressDelay, "id", "Project", "p", "msg", PriorityMedium)
	d.Dismiss()
	if !d.IsRead() || d.IsActive() {
		t.Error("dismiss should mark read and deactivate")
	}
}
