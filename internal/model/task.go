package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the state of a task. CannotHandle is reachable from any
// state and is not terminal; transitions out of it are permitted.
type TaskStatus string

const (
	TaskNotStarted   TaskStatus = "not_started"
	TaskInProgress   TaskStatus = "in_progress"
	TaskCompleted    TaskStatus = "completed"
	TaskCannotHandle TaskStatus = "cannot_handle"
)

// Valid reports whether s is one of the four task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskCannotHandle:
		return true
	}
	return false
}

// StatusChange is one entry in a task's append-only status history.
type StatusChange struct {
	ID        string     `json:"id"`
	OldStatus TaskStatus `json:"old_status"`
	NewStatus TaskStatus `json:"new_status"`
	ChangedAt time.Time  `json:"changed_at"`
	ChangedBy string     `json:"changed_by"`
	Comment   string     `json:"comment"`
}

// Task is the leaf work unit of the hierarchy.
type Task struct {
	Entity
	Status          TaskStatus     `json:"status"`
	StatusHistory   []StatusChange `json:"status_history"`
	ParentProcessID string         `json:"parent_process_id,omitempty"`
	Priority        int            `json:"priority"`
	EstimatedHours  *float64       `json:"estimated_hours"`
	ActualHours     *float64       `json:"actual_hours"`
	Notes           string         `json:"notes"`
	Tags            []string       `json:"tags"`
}

// NewTask creates a task in the not-started state with one seeded
// history entry recording the "" → not_started transition.
func NewTask(name, description string) *Task {
	t := &Task{
		Entity:   newEntity(name, description),
		Status:   TaskNotStarted,
		Priority: 3,
		Tags:     []string{},
	}
	t.appendStatusChange("", TaskNotStarted, "system", "")
	return t
}

func (t *Task) appendStatusChange(old, new TaskStatus, changedBy, comment string) {
	t.StatusHistory = append(t.StatusHistory, StatusChange{
		ID:        uuid.NewString(),
		OldStatus: old,
		NewStatus: new,
		ChangedAt: time.Now().UTC(),
		ChangedBy: changedBy,
		Comment:   comment,
	})
}

// SetStatus transitions the task to a new status, recording the change
// in the history. Returns false if the status is not a valid value.
// Setting the current status again is a no-op success with no history entry.
func (t *Task) SetStatus(status TaskStatus, changedBy, comment string) bool {
	if !status.Valid() {
		return false
	}
	if status == t.Status {
		return true
	}
	old := t.Status
	t.Status = status
	t.Touch()
	t.appendStatusChange(old, status, changedBy, comment)
	return true
}

func (t *Task) IsCompleted() bool    { return t.Status == TaskCompleted }
func (t *Task) IsCannotHandle() bool { return t.Status == TaskCannotHandle }

// IsActionable reports whether the task counts toward completion ratios.
// Cannot-handle tasks are excluded from every denominator.
func (t *Task) IsActionable() bool { return t.Status != TaskCannotHandle }

// CompletionPercentage is 100 for a completed task and 0 otherwise,
// including cannot-handle.
func (t *Task) CompletionPercentage() float64 {
	if t.IsCompleted() {
		return 100.0
	}
	return 0.0
}

// SetPriority sets the priority, 1 (high) through 5 (low).
func (t *Task) SetPriority(priority int) bool {
	if priority < 1 || priority > 5 {
		return false
	}
	t.Priority = priority
	t.Touch()
	return true
}

// AddTag appends a tag if non-empty and not already present.
func (t *Task) AddTag(tag string) bool {
	tags, ok := addUnique(t.Tags, tag)
	if ok {
		t.Tags = tags
		t.Touch()
	}
	return ok
}

// RemoveTag deletes a tag.
func (t *Task) RemoveTag(tag string) bool {
	tags, ok := removeValue(t.Tags, tag)
	if ok {
		t.Tags = tags
		t.Touch()
	}
	return ok
}

// SetEstimatedHours sets the estimate; negative values are rejected.
func (t *Task) SetEstimatedHours(hours float64) bool {
	if hours < 0 {
		return false
	}
	t.EstimatedHours = &hours
	t.Touch()
	return true
}

// SetActualHours sets the recorded effort; negative values are rejected.
func (t *Task) SetActualHours(hours float64) bool {
	if hours < 0 {
		return false
	}
	t.ActualHours = &hours
	t.Touch()
	return true
}

// EfficiencyRatio is actual/estimated hours, false when not computable.
func (t *Task) EfficiencyRatio() (float64, bool) {
	return efficiencyRatio(t.EstimatedHours, t.ActualHours)
}

// Validate checks the task's invariants.
func (t *Task) Validate() error {
	if err := t.validateBase(); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return fmt.Errorf("invalid task status %q", t.Status)
	}
	if t.Priority < 1 || t.Priority > 5 {
		return fmt.Errorf("priority must be 1-5, got %d", t.Priority)
	}
	if t.EstimatedHours != nil && *t.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours must not be negative")
	}
	if t.ActualHours != nil && *t.ActualHours < 0 {
		return fmt.Errorf("actual hours must not be negative")
	}
	return nil
}
