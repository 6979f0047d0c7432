package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/NeoKiring/project-management-system/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSaveProject_RoundTrip(t *testing.T) {
	s := testStore(t)

	p := model.NewProject("Rollout", "big rollout")
	p.Manager = "alice"
	start, _ := model.ParseDate("2026-01-01")
	end, _ := model.ParseDate("2026-06-30")
	p.SetDates(&start, &end)
	if err := s.SaveProject(p); err != nil {
		t.Fatalf("SaveProject: %v", err)
	}

	loaded, err := s.LoadProjects()
	if err != nil {
		t.Fatalf("LoadProjects: %v", err)
	}
	got, ok := loaded[p.ID]
	if !ok {
		t.Fatal("project missing after reload")
	}
	if got.Name != "Rollout" || got.Manager != "alice" {
		t.Errorf("fields lost: %+v", got)
	}
	if got.StartDate == nil || got.StartDate.String() != "2026-01-01" {
		t.Errorf("start date lost: %v", got.StartDate)
	}
}

func TestLoad_MissingCollectionIsEmpty(t *testing.T) {
	s := testStore(t)
	tasks, err := s.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected empty map, got %d entries", len(tasks))
	}
}

func TestDelete_ReportsExistence(t *testing.T) {
	s := testStore(t)
	task := model.NewTask("t", "")
	if err := s.SaveTask(task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	ok, err := s.DeleteTask(task.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteTask: ok=%v err=%v", ok, err)
	}
	ok, err = s.DeleteTask(task.ID)
	if err != nil {
		t.Fatalf("second DeleteTask: %v", err)
	}
	if ok {
		t.Error("deleting a missing task reported true")
	}
}

func TestBackup_FallbackOnCorruptPrimary(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p := model.NewProject("Keep", "")
	if err := s.SaveProject(p); err != nil {
		t.Fatalf("first save: %v", err)
	}
	// Second save writes the previous document to .backup.
	p.Notes = "updated"
	if err := s.SaveProject(p); err != nil {
		t.Fatalf("second save: %v", err)
	}

	primary := filepath.Join(dir, "projects.json")
	if err := os.WriteFile(primary, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("corrupt primary: %v", err)
	}

	s2, err := New(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	loaded, err := s2.LoadProjects()
	if err != nil {
		t.Fatalf("LoadProjects with corrupt primary: %v", err)
	}
	if _, ok := loaded[p.ID]; !ok {
		t.Fatal("backup fallback did not restore the project")
	}
}

func TestCorruptPrimary_NoBackupIsError(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := s.LoadTasks(); err == nil {
		t.Error("corrupt document without backup loaded without error")
	}
}

func TestMetadata_CountersBump(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p := model.NewProject("Versioned", "")
	s.SaveProject(p)
	s.SaveProject(p)
	s.SaveProject(p)

	meta := s.Metadata()
	if meta.Versions[CollectionProjects] != 3 {
		t.Errorf("version counter = %d, want 3", meta.Versions[CollectionProjects])
	}
	// First save has nothing to back up; the next two do.
	if meta.BackupCount != 2 {
		t.Errorf("backup count = %d, want 2", meta.BackupCount)
	}

	// Counters survive a reopen.
	s2, err := New(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := s2.Metadata().Versions[CollectionProjects]; got != 3 {
		t.Errorf("version counter after reopen = %d, want 3", got)
	}
}

func TestCorruptMetadata_StartsFresh(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New with corrupt metadata: %v", err)
	}
	if got := s.Metadata().BackupCount; got != 0 {
		t.Errorf("backup count = %d, want 0", got)
	}
}

func TestSettings_DefaultsWhenAbsent(t *testing.T) {
	s := testStore(t)
	settings, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.DeadlineWarningDays != 7 || settings.RetentionDays != 90 {
		t.Errorf("unexpected defaults: %+v", settings)
	}

	settings.DeadlineWarningDays = 14
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	reloaded, err := s.LoadSettings()
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if reloaded.DeadlineWarningDays != 14 {
		t.Errorf("saved setting lost: %d", reloaded.DeadlineWarningDays)
	}
}

func TestNotification_RoundTrip(t *testing.T) {
	s := testStore(t)
	n := model.NewNotification(model.DeadlineOverdue, "eid", "Project", "p", "late", model.PriorityHigh)
	n.Metadata["days_overdue"] = float64(4)
	if err := s.SaveNotification(n); err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}

	loaded, err := s.LoadNotifications()
	if err != nil {
		t.Fatalf("LoadNotifications: %v", err)
	}
	got, ok := loaded[n.ID]
	if !ok {
		t.Fatal("notification missing")
	}
	if got.Type != model.DeadlineOverdue || got.Priority != model.PriorityHigh {
		t.Errorf("fields lost: %+v", got)
	}
	if got.Metadata["days_overdue"] != float64(4) {
		t.Errorf("metadata lost: %v", got.Metadata)
	}
}
