package model

// Cloning produces a detached copy of an entity: fresh id and
// timestamps, parent link cleared, child-id lists emptied. Children are
// cloned by the manager, which re-links the copies level by level.

func cloneEntity(e Entity, name string) Entity {
	c := newEntity(name, e.Description)
	return c
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Clone copies the project under a new name. Phase links are cleared;
// status and progress reset so the copy starts over.
func (p *Project) Clone(name string) *Project {
	return &Project{
		Entity:       cloneEntity(p.Entity, name),
		Status:       ProjectNotStarted,
		StartDate:    cloneDate(p.StartDate),
		EndDate:      cloneDate(p.EndDate),
		Phases:       []string{},
		Notes:        p.Notes,
		Priority:     p.Priority,
		Budget:       cloneFloat(p.Budget),
		ActualCost:   cloneFloat(p.ActualCost),
		Manager:      p.Manager,
		Stakeholders: cloneStrings(p.Stakeholders),
		Tags:         cloneStrings(p.Tags),
		RiskLevel:    p.RiskLevel,
	}
}

// Clone copies the phase with cleared process links and zero progress.
func (p *Phase) Clone(name string) *Phase {
	return &Phase{
		Entity:       cloneEntity(p.Entity, name),
		EndDate:      cloneDate(p.EndDate),
		Processes:    []string{},
		Notes:        p.Notes,
		Priority:     p.Priority,
		Milestone:    p.Milestone,
		Deliverables: cloneStrings(p.Deliverables),
	}
}

// Clone copies the process with cleared task links. The copy keeps the
// manual-progress flag but its progress starts at zero.
func (p *Process) Clone(name string) *Process {
	return &Process{
		Entity:         cloneEntity(p.Entity, name),
		Assignee:       p.Assignee,
		StartDate:      cloneDate(p.StartDate),
		EndDate:        cloneDate(p.EndDate),
		EstimatedHours: cloneFloat(p.EstimatedHours),
		ProgressManual: p.ProgressManual,
		Tasks:          []string{},
		Notes:          p.Notes,
		Priority:       p.Priority,
	}
}

// Clone copies the task back into the not-started state with a freshly
// seeded history. Recorded effort does not carry over.
func (t *Task) Clone(name string) *Task {
	c := &Task{
		Entity:         cloneEntity(t.Entity, name),
		Status:         TaskNotStarted,
		Priority:       t.Priority,
		EstimatedHours: cloneFloat(t.EstimatedHours),
		Notes:          t.Notes,
		Tags:           cloneStrings(t.Tags),
	}
	c.appendStatusChange("", TaskNotStarted, "system", "")
	return c
}
