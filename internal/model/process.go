package model

import (
	"fmt"
	"strings"
)

// TaskResolver looks up a task by id, returning nil when absent.
// Dangling ids in a process's task list resolve to nil and are skipped.
type TaskResolver func(id string) *Task

// Process owns an ordered list of task ids and derives its progress
// from their completion ratio, unless progress is managed manually.
type Process struct {
	Entity
	Assignee       string   `json:"assignee"`
	ParentPhaseID  string   `json:"parent_phase_id,omitempty"`
	StartDate      *Date    `json:"start_date"`
	EndDate        *Date    `json:"end_date"`
	EstimatedHours *float64 `json:"estimated_hours"`
	ActualHours    *float64 `json:"actual_hours"`
	Progress       float64  `json:"progress"`
	ProgressManual bool     `json:"is_progress_manual"`
	Tasks          []string `json:"tasks"`
	Notes          string   `json:"notes"`
	Priority       int      `json:"priority"`
}

// NewProcess creates a process. The assignee is a required attribute;
// a process without one fails validation.
func NewProcess(name, description, assignee string) *Process {
	return &Process{
		Entity:         newEntity(name, description),
		Assignee:       assignee,
		ProgressManual: true,
		Tasks:          []string{},
		Priority:       3,
	}
}

// SetAssignee replaces the assignee; blank values are rejected.
func (p *Process) SetAssignee(assignee string) bool {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return false
	}
	p.Assignee = assignee
	p.Touch()
	return true
}

// SetDates sets the planned period. Rejected when start is after end.
func (p *Process) SetDates(start, end *Date) bool {
	if start != nil && end != nil && start.After(*end) {
		return false
	}
	p.StartDate = start
	p.EndDate = end
	p.Touch()
	return true
}

// SetProgress sets the progress value directly and records whether it
// was a manual override. Rejects values outside 0-100.
func (p *Process) SetProgress(progress float64, manual bool) bool {
	if progress < 0.0 || progress > 100.0 {
		return false
	}
	p.Progress = progress
	p.ProgressManual = manual
	p.Touch()
	return true
}

// CalculateProgress computes the completion ratio over actionable tasks:
// 100 × completed / actionable, rounded to one decimal. Cannot-handle
// tasks are excluded from the denominator entirely. An empty actionable
// set yields 0.
func (p *Process) CalculateProgress(resolve TaskResolver) float64 {
	if len(p.Tasks) == 0 {
		return 0.0
	}
	actionable := 0
	completed := 0
	for _, id := range p.Tasks {
		task := resolve(id)
		if task == nil || !task.IsActionable() {
			continue
		}
		actionable++
		if task.IsCompleted() {
			completed++
		}
	}
	if actionable == 0 {
		return 0.0
	}
	return round1(float64(completed) / float64(actionable) * 100.0)
}

// UpdateProgress recomputes progress from tasks when the process is in
// automatic mode. In manual mode the caller-set value persists untouched.
func (p *Process) UpdateProgress(resolve TaskResolver) bool {
	if p.ProgressManual {
		return true
	}
	return p.SetProgress(p.CalculateProgress(resolve), false)
}

// Status derives the process status from its progress value alone.
func (p *Process) Status() ProgressStatus {
	return statusForProgress(p.Progress)
}

// AddTask appends a task id; order of insertion is display order.
func (p *Process) AddTask(taskID string) bool {
	for _, id := range p.Tasks {
		if id == taskID {
			return false
		}
	}
	p.Tasks = append(p.Tasks, taskID)
	p.Touch()
	return true
}

// RemoveTask deletes a task id from the list.
func (p *Process) RemoveTask(taskID string) bool {
	tasks, ok := removeValue(p.Tasks, taskID)
	if ok {
		p.Tasks = tasks
		p.Touch()
	}
	return ok
}

// SetEstimatedHours sets the estimate; negative values are rejected.
func (p *Process) SetEstimatedHours(hours float64) bool {
	if hours < 0 {
		return false
	}
	p.EstimatedHours = &hours
	p.Touch()
	return true
}

// SetActualHours sets the recorded effort; negative values are rejected.
func (p *Process) SetActualHours(hours float64) bool {
	if hours < 0 {
		return false
	}
	p.ActualHours = &hours
	p.Touch()
	return true
}

// EfficiencyRatio is actual/estimated hours, false when not computable.
func (p *Process) EfficiencyRatio() (float64, bool) {
	return efficiencyRatio(p.EstimatedHours, p.ActualHours)
}

// SetPriority sets the priority, 1 (high) through 5 (low).
func (p *Process) SetPriority(priority int) bool {
	if priority < 1 || priority > 5 {
		return false
	}
	p.Priority = priority
	p.Touch()
	return true
}

// IsOverdue reports whether the end date has passed without completion.
func (p *Process) IsOverdue(today Date) bool {
	if p.EndDate == nil || p.Progress >= 100.0 {
		return false
	}
	return today.After(*p.EndDate)
}

// RemainingDays returns the days until the end date, false when unset.
func (p *Process) RemainingDays(today Date) (int, bool) {
	if p.EndDate == nil {
		return 0, false
	}
	return today.DaysUntil(*p.EndDate), true
}

// Validate checks the process's invariants.
func (p *Process) Validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Assignee) == "" {
		return fmt.Errorf("assignee is required")
	}
	if p.Progress < 0.0 || p.Progress > 100.0 {
		return fmt.Errorf("progress must be 0-100, got %v", p.Progress)
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return fmt.Errorf("start date is after end date")
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return fmt.Errorf("estimated hours must not be negative")
	}
	if p.ActualHours != nil && *p.ActualHours < 0 {
		return fmt.Errorf("actual hours must not be negative")
	}
	if p.Priority < 1 || p.Priority > 5 {
		return fmt.Errorf("priority must be 1-5, got %d", p.Priority)
	}
	return nil
}
