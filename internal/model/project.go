package model

import (
	"fmt"
)

// ProjectStatus is the status of a project. Unlike the derived process
// and phase statuses it is a stored field; suspended and on-hold can
// only be reached through a manual override.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "not_started"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectSuspended  ProjectStatus = "suspended"
	ProjectOnHold     ProjectStatus = "on_hold"
)

// Valid reports whether s is one of the five project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectNotStarted, ProjectInProgress, ProjectCompleted, ProjectSuspended, ProjectOnHold:
		return true
	}
	return false
}

// PhaseResolver looks up a phase by id, returning nil when absent.
type PhaseResolver func(id string) *Phase

// Project is the root of the hierarchy. Status aggregation respects the
// manual flag; progress is always recomputed, there is no manual flag for it.
type Project struct {
	Entity
	Status       ProjectStatus `json:"status"`
	StatusManual bool          `json:"is_status_manual"`
	StartDate    *Date         `json:"start_date"`
	EndDate      *Date         `json:"end_date"`
	Progress     float64       `json:"progress"`
	Phases       []string      `json:"phases"`
	Notes        string        `json:"notes"`
	Priority     int           `json:"priority"`
	Budget       *float64      `json:"budget"`
	ActualCost   *float64      `json:"actual_cost"`
	Manager      string        `json:"manager"`
	Stakeholders []string      `json:"stakeholders"`
	Tags         []string      `json:"tags"`
	RiskLevel    int           `json:"risk_level"`
}

// NewProject creates a project in automatic status mode.
func NewProject(name, description string) *Project {
	return &Project{
		Entity:       newEntity(name, description),
		Status:       ProjectNotStarted,
		Phases:       []string{},
		Stakeholders: []string{},
		Tags:         []string{},
		Priority:     3,
		RiskLevel:    2,
	}
}

// SetStatus sets the status, recording whether it was a manual override.
// Returns false for an unknown status value.
func (p *Project) SetStatus(status ProjectStatus, manual bool) bool {
	if !status.Valid() {
		return false
	}
	p.Status = status
	p.StatusManual = manual
	p.Touch()
	return true
}

// CalculateStatus aggregates the derived statuses of child phases:
// no phases → not started; all completed → completed; any in progress →
// in progress; all not started → not started. Any other mix (some
// completed, some not started, none in progress) also reads as in
// progress — the fallback default.
func (p *Project) CalculateStatus(resolve PhaseResolver) ProjectStatus {
	if len(p.Phases) == 0 {
		return ProjectNotStarted
	}
	var statuses []ProgressStatus
	for _, id := range p.Phases {
		if phase := resolve(id); phase != nil {
			statuses = append(statuses, phase.Status())
		}
	}
	if len(statuses) == 0 {
		return ProjectNotStarted
	}
	allCompleted := true
	allNotStarted := true
	anyInProgress := false
	for _, s := range statuses {
		if s != ProgressCompleted {
			allCompleted = false
		}
		if s != ProgressNotStarted {
			allNotStarted = false
		}
		if s == ProgressInProgress {
			anyInProgress = true
		}
	}
	switch {
	case allCompleted:
		return ProjectCompleted
	case anyInProgress:
		return ProjectInProgress
	case allNotStarted:
		return ProjectNotStarted
	default:
		return ProjectInProgress
	}
}

// UpdateStatus applies the aggregated status when not in manual mode.
func (p *Project) UpdateStatus(resolve PhaseResolver) bool {
	if p.StatusManual {
		return true
	}
	calculated := p.CalculateStatus(resolve)
	if calculated != p.Status {
		return p.SetStatus(calculated, false)
	}
	return true
}

// SetDates sets the planned period. Rejected when start is after end.
func (p *Project) SetDates(start, end *Date) bool {
	if start != nil && end != nil && start.After(*end) {
		return false
	}
	p.StartDate = start
	p.EndDate = end
	p.Touch()
	return true
}

// CalculateProgress computes the duration-weighted average of phase
// progress. Each phase weighs its derived duration in days (end date
// minus derived start date plus one), floored at 1 and defaulting to 1
// when either date is unavailable. Rounded to one decimal; falls back
// to the simple mean when the total weight is zero.
func (p *Project) CalculateProgress(resolvePhase PhaseResolver, resolveProcess ProcessResolver) float64 {
	if len(p.Phases) == 0 {
		return 0.0
	}
	totalWeight := 0.0
	weighted := 0.0
	for _, id := range p.Phases {
		phase := resolvePhase(id)
		if phase == nil {
			continue
		}
		start, _ := phase.DateRange(resolveProcess)
		duration := 1
		if phase.EndDate != nil && start != nil {
			duration = start.DaysUntil(*phase.EndDate) + 1
		}
		if duration < 1 {
			duration = 1
		}
		weight := float64(duration)
		totalWeight += weight
		weighted += phase.Progress * weight
	}
	if totalWeight > 0 {
		return round1(weighted / totalWeight)
	}
	count := 0
	sum := 0.0
	for _, id := range p.Phases {
		if phase := resolvePhase(id); phase != nil {
			count++
			sum += phase.Progress
		}
	}
	if count > 0 {
		return round1(sum / float64(count))
	}
	return 0.0
}

// UpdateProgress recomputes progress from phases. Project progress has
// no manual flag — it is always recomputed. Returns whether it changed.
func (p *Project) UpdateProgress(resolvePhase PhaseResolver, resolveProcess ProcessResolver) bool {
	old := p.Progress
	p.Progress = p.CalculateProgress(resolvePhase, resolveProcess)
	if old != p.Progress {
		p.Touch()
		return true
	}
	return false
}

// AddPhase appends a phase id; insertion order is display order.
func (p *Project) AddPhase(phaseID string) bool {
	for _, id := range p.Phases {
		if id == phaseID {
			return false
		}
	}
	p.Phases = append(p.Phases, phaseID)
	p.Touch()
	return true
}

// RemovePhase deletes a phase id from the list.
func (p *Project) RemovePhase(phaseID string) bool {
	phases, ok := removeValue(p.Phases, phaseID)
	if ok {
		p.Phases = phases
		p.Touch()
	}
	return ok
}

// DateRange derives the project period from children, folding in the
// project's own manually-set dates.
func (p *Project) DateRange(resolvePhase PhaseResolver, resolveProcess ProcessResolver) (start, end *Date) {
	consider := func(s, e *Date) {
		if s != nil && (start == nil || s.Before(*start)) {
			d := *s
			start = &d
		}
		if e != nil && (end == nil || e.After(*end)) {
			d := *e
			end = &d
		}
	}
	for _, id := range p.Phases {
		if phase := resolvePhase(id); phase != nil {
			consider(phase.DateRange(resolveProcess))
		}
	}
	consider(p.StartDate, p.EndDate)
	if start == nil {
		start = p.StartDate
	}
	if end == nil {
		end = p.EndDate
	}
	return start, end
}

// AddStakeholder appends a stakeholder if non-empty and not present.
func (p *Project) AddStakeholder(stakeholder string) bool {
	list, ok := addUnique(p.Stakeholders, stakeholder)
	if ok {
		p.Stakeholders = list
		p.Touch()
	}
	return ok
}

// RemoveStakeholder deletes a stakeholder.
func (p *Project) RemoveStakeholder(stakeholder string) bool {
	list, ok := removeValue(p.Stakeholders, stakeholder)
	if ok {
		p.Stakeholders = list
		p.Touch()
	}
	return ok
}

// AddTag appends a tag if non-empty and not present.
func (p *Project) AddTag(tag string) bool {
	list, ok := addUnique(p.Tags, tag)
	if ok {
		p.Tags = list
		p.Touch()
	}
	return ok
}

// RemoveTag deletes a tag.
func (p *Project) RemoveTag(tag string) bool {
	list, ok := removeValue(p.Tags, tag)
	if ok {
		p.Tags = list
		p.Touch()
	}
	return ok
}

// SetBudget sets the budget; negative values are rejected.
func (p *Project) SetBudget(budget float64) bool {
	if budget < 0 {
		return false
	}
	p.Budget = &budget
	p.Touch()
	return true
}

// SetActualCost sets the recorded cost; negative values are rejected.
func (p *Project) SetActualCost(cost float64) bool {
	if cost < 0 {
		return false
	}
	p.ActualCost = &cost
	p.Touch()
	return true
}

// BudgetRatio is actual cost over budget, false when not computable.
func (p *Project) BudgetRatio() (float64, bool) {
	return efficiencyRatio(p.Budget, p.ActualCost)
}

// SetPriority sets the priority, 1 (high) through 5 (low).
func (p *Project) SetPriority(priority int) bool {
	if priority < 1 || priority > 5 {
		return false
	}
	p.Priority = priority
	p.Touch()
	return true
}

// SetRiskLevel sets the risk level, 1 (low) through 3 (high).
func (p *Project) SetRiskLevel(level int) bool {
	if level < 1 || level > 3 {
		return false
	}
	p.RiskLevel = level
	p.Touch()
	return true
}

// IsOverdue reports whether the end date has passed without completion.
func (p *Project) IsOverdue(today Date) bool {
	if p.EndDate == nil || p.Status == ProjectCompleted {
		return false
	}
	return today.After(*p.EndDate)
}

// RemainingDays returns the days until the end date, false when unset.
func (p *Project) RemainingDays(today Date) (int, bool) {
	if p.EndDate == nil {
		return 0, false
	}
	return today.DaysUntil(*p.EndDate), true
}

// DurationDays is the planned project length in days, false when
// either boundary date is unset.
func (p *Project) DurationDays() (int, bool) {
	if p.StartDate == nil || p.EndDate == nil {
		return 0, false
	}
	return p.StartDate.DaysUntil(*p.EndDate) + 1, true
}

// Validate checks the project's invariants.
func (p *Project) Validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return fmt.Errorf("invalid project status %q", p.Status)
	}
	if p.Progress < 0.0 || p.Progress > 100.0 {
		return fmt.Errorf("progress must be 0-100, got %v", p.Progress)
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return fmt.Errorf("start date is after end date")
	}
	if p.Budget != nil && *p.Budget < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	if p.ActualCost != nil && *p.ActualCost < 0 {
		return fmt.Errorf("actual cost must not be negative")
	}
	if p.Priority < 1 || p.Priority > 5 {
		return fmt.Errorf("priority must be 1-5, got %d", p.Priority)
	}
	if p.RiskLevel < 1 || p.RiskLevel > 3 {
		return fmt.Errorf("risk level must be 1-3, got %d", p.RiskLevel)
	}
	return nil
}
