package model

import (
	"fmt"
)

// ProcessResolver looks up a process by id, returning nil when absent.
type ProcessResolver func(id string) *Process

// Phase owns an ordered list of process ids. Its progress is always an
// hours-weighted average of the children; there is no manual override.
// A phase has no start date of its own — the start is derived from children.
type Phase struct {
	Entity
	ParentProjectID string   `json:"parent_project_id,omitempty"`
	EndDate         *Date    `json:"end_date"`
	Progress        float64  `json:"progress"`
	Processes       []string `json:"processes"`
	Notes           string   `json:"notes"`
	Priority        int      `json:"priority"`
	Milestone       string   `json:"milestone"`
	Deliverables    []string `json:"deliverables"`
}

// NewPhase creates an empty phase.
func NewPhase(name, description string) *Phase {
	return &Phase{
		Entity:       newEntity(name, description),
		Processes:    []string{},
		Deliverables: []string{},
		Priority:     3,
	}
}

// SetEndDate sets or clears the phase's own end date.
func (p *Phase) SetEndDate(end *Date) bool {
	p.EndDate = end
	p.Touch()
	return true
}

// CalculateProgress computes the weighted average of child process
// progress, weighting each process by its estimated hours (1.0 when
// unset), rounded to one decimal. Falls back to the simple mean when
// the total weight is zero, which only happens with no resolvable children.
func (p *Phase) CalculateProgress(resolve ProcessResolver) float64 {
	if len(p.Processes) == 0 {
		return 0.0
	}
	totalWeight := 0.0
	weighted := 0.0
	for _, id := range p.Processes {
		proc := resolve(id)
		if proc == nil {
			continue
		}
		weight := 1.0
		if proc.EstimatedHours != nil && *proc.EstimatedHours > 0 {
			weight = *proc.EstimatedHours
		}
		totalWeight += weight
		weighted += proc.Progress * weight
	}
	if totalWeight > 0 {
		return round1(weighted / totalWeight)
	}
	count := 0
	sum := 0.0
	for _, id := range p.Processes {
		if proc := resolve(id); proc != nil {
			count++
			sum += proc.Progress
		}
	}
	if count > 0 {
		return round1(sum / float64(count))
	}
	return 0.0
}

// UpdateProgress recomputes progress from children. Unlike Process,
// phase progress has no manual mode. Returns whether the value changed.
func (p *Phase) UpdateProgress(resolve ProcessResolver) bool {
	old := p.Progress
	p.Progress = p.CalculateProgress(resolve)
	if old != p.Progress {
		p.Touch()
		return true
	}
	return false
}

// Status derives the phase status from its progress value alone.
func (p *Phase) Status() ProgressStatus {
	return statusForProgress(p.Progress)
}

// AddProcess appends a process id; insertion order is display order.
func (p *Phase) AddProcess(processID string) bool {
	for _, id := range p.Processes {
		if id == processID {
			return false
		}
	}
	p.Processes = append(p.Processes, processID)
	p.Touch()
	return true
}

// RemoveProcess deletes a process id from the list.
func (p *Phase) RemoveProcess(processID string) bool {
	procs, ok := removeValue(p.Processes, processID)
	if ok {
		p.Processes = procs
		p.Touch()
	}
	return ok
}

// AddDeliverable appends a deliverable if non-empty and not present.
func (p *Phase) AddDeliverable(deliverable string) bool {
	list, ok := addUnique(p.Deliverables, deliverable)
	if ok {
		p.Deliverables = list
		p.Touch()
	}
	return ok
}

// RemoveDeliverable deletes a deliverable.
func (p *Phase) RemoveDeliverable(deliverable string) bool {
	list, ok := removeValue(p.Deliverables, deliverable)
	if ok {
		p.Deliverables = list
		p.Touch()
	}
	return ok
}

// SetPriority sets the priority, 1 (high) through 5 (low).
func (p *Phase) SetPriority(priority int) bool {
	if priority < 1 || priority > 5 {
		return false
	}
	p.Priority = priority
	p.Touch()
	return true
}

// DateRange derives the phase's period from its children: start is the
// earliest child start date (nil when none is set), end is the latest
// child end date, falling back to the phase's own end date.
func (p *Phase) DateRange(resolve ProcessResolver) (start, end *Date) {
	for _, id := range p.Processes {
		proc := resolve(id)
		if proc == nil {
			continue
		}
		if proc.StartDate != nil && (start == nil || proc.StartDate.Before(*start)) {
			d := *proc.StartDate
			start = &d
		}
		if proc.EndDate != nil && (end == nil || proc.EndDate.After(*end)) {
			d := *proc.EndDate
			end = &d
		}
	}
	if end == nil {
		end = p.EndDate
	}
	return start, end
}

// TotalEstimatedHours sums the children's estimates, false when none set.
func (p *Phase) TotalEstimatedHours(resolve ProcessResolver) (float64, bool) {
	total := 0.0
	found := false
	for _, id := range p.Processes {
		if proc := resolve(id); proc != nil && proc.EstimatedHours != nil {
			total += *proc.EstimatedHours
			found = true
		}
	}
	return total, found
}

// TotalActualHours sums the children's recorded effort, false when none set.
func (p *Phase) TotalActualHours(resolve ProcessResolver) (float64, bool) {
	total := 0.0
	found := false
	for _, id := range p.Processes {
		if proc := resolve(id); proc != nil && proc.ActualHours != nil {
			total += *proc.ActualHours
			found = true
		}
	}
	return total, found
}

// IsOverdue reports whether the phase's end date has passed without completion.
func (p *Phase) IsOverdue(today Date) bool {
	if p.EndDate == nil || p.Progress >= 100.0 {
		return false
	}
	return today.After(*p.EndDate)
}

// RemainingDays returns the days until the end date, false when unset.
func (p *Phase) RemainingDays(today Date) (int, bool) {
	if p.EndDate == nil {
		return 0, false
	}
	return today.DaysUntil(*p.EndDate), true
}

// Validate checks the phase's invariants.
func (p *Phase) Validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if p.Progress < 0.0 || p.Progress > 100.0 {
		return fmt.Errorf("progress must be 0-100, got %v", p.Progress)
	}
	if p.Priority < 1 || p.Priority > 5 {
		return fmt.Errorf("priority must be 1-5, got %d", p.Priority)
	}
	return nil
}
