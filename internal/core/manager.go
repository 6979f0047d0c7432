// Package core holds the Manager, the single entry point for every
// mutation of the hierarchy. It keeps all entities in memory, persists
// through the storage package and drives the progress cascade
// Task → Process → Phase → Project on every change.
package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/NeoKiring/project-management-system/internal/errs"
	"github.com/NeoKiring/project-management-system/internal/logging"
	"github.com/NeoKiring/project-management-system/internal/model"
	"github.com/NeoKiring/project-management-system/internal/storage"
)

// Manager orchestrates entities, persistence, notifications and audit.
// One mutex guards every read-modify-write; exported methods lock it,
// unexported helpers assume it is held. Go mutexes are not reentrant,
// so the cascade never calls back into an exported method.
type Manager struct {
	mu       sync.Mutex
	store    *storage.Store
	log      zerolog.Logger
	audit    *logging.AuditTrail
	user     string
	settings *model.NotificationSettings
	gen      *model.Generator

	projects      map[string]*model.Project
	phases        map[string]*model.Phase
	processes     map[string]*model.Process
	tasks         map[string]*model.Task
	notifications map[string]*model.Notification

	handlers []NotificationHandler
}

// NotificationHandler receives every newly generated notification.
// Handlers run under the manager lock and must not call back into it.
type NotificationHandler func(*model.Notification)

// New loads every collection from the store and builds a ready manager.
// The audit trail may be nil.
func New(store *storage.Store, log zerolog.Logger, audit *logging.AuditTrail, user string) (*Manager, error) {
	if user == "" {
		user = "system"
	}
	m := &Manager{
		store: store,
		log:   log,
		audit: audit,
		user:  user,
	}
	var err error
	if m.projects, err = store.LoadProjects(); err != nil {
		return nil, errs.FileIO("load projects", err)
	}
	if m.phases, err = store.LoadPhases(); err != nil {
		return nil, errs.FileIO("load phases", err)
	}
	if m.processes, err = store.LoadProcesses(); err != nil {
		return nil, errs.FileIO("load processes", err)
	}
	if m.tasks, err = store.LoadTasks(); err != nil {
		return nil, errs.FileIO("load tasks", err)
	}
	if m.notifications, err = store.LoadNotifications(); err != nil {
		return nil, errs.FileIO("load notifications", err)
	}
	if m.settings, err = store.LoadSettings(); err != nil {
		return nil, errs.FileIO("load settings", err)
	}
	m.gen = model.NewGenerator(m.settings)
	m.log.Info().
		Int("projects", len(m.projects)).
		Int("phases", len(m.phases)).
		Int("processes", len(m.processes)).
		Int("tasks", len(m.tasks)).
		Int("notifications", len(m.notifications)).
		Str("data_dir", store.Dir()).
		Msg("data loaded")
	return m, nil
}

// Store exposes the underlying store, used by export and statistics.
func (m *Manager) Store() *storage.Store { return m.store }

// snapshot captures an entity's current JSON form for audit entries.
func snapshot(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// Resolvers for the model computation engines. Lock must be held.

func (m *Manager) resolveTask(id string) *model.Task       { return m.tasks[id] }
func (m *Manager) resolveProcess(id string) *model.Process { return m.processes[id] }
func (m *Manager) resolvePhase(id string) *model.Phase     { return m.phases[id] }

// ---- Projects ----

// CreateProject creates and persists a new project.
func (m *Manager) CreateProject(name, description, manager string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.NewProject(name, description)
	p.Manager = manager
	if err := p.Validate(); err != nil {
		return nil, errs.Validation("invalid project: %v", err)
	}
	if err := m.store.SaveProject(p); err != nil {
		return nil, errs.FileIO("save project", err)
	}
	m.projects[p.ID] = p
	m.audit.Created("Project", p.ID, p.Name, snapshot(p))
	m.log.Info().Str("project_id", p.ID).Str("name", p.Name).Msg("project created")
	return p, nil
}

// GetProject returns a project by id, nil when absent.
func (m *Manager) GetProject(id string) *model.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[id]
}

// ListProjects returns all projects ordered by creation time.
func (m *Manager) ListProjects() []*model.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SearchProjects filters projects by a case-insensitive name substring,
// an exact manager and a status. Empty arguments match everything.
func (m *Manager) SearchProjects(nameQuery, manager string, status model.ProjectStatus) []*model.Project {
	var out []*model.Project
	for _, p := range m.ListProjects() {
		if nameQuery != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(nameQuery)) {
			continue
		}
		if manager != "" && p.Manager != manager {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out
}

// UpdateProject validates, recomputes derived fields and persists a
// project, then re-evaluates its notifications.
func (m *Manager) UpdateProject(p *model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := p.Validate(); err != nil {
		return errs.Validation("invalid project: %v", err)
	}
	if _, ok := m.projects[p.ID]; !ok {
		return errs.NotFound("Project", p.ID)
	}
	before := snapshot(m.projects[p.ID])
	if err := m.updateProjectLocked(p, before); err != nil {
		return err
	}
	m.log.Info().Str("project_id", p.ID).Str("name", p.Name).Msg("project updated")
	return nil
}

// updateProjectLocked is the top of the cascade: recompute status and
// progress, persist, audit and re-check notifications.
func (m *Manager) updateProjectLocked(p *model.Project, before json.RawMessage) error {
	p.UpdateStatus(m.resolvePhase)
	p.UpdateProgress(m.resolvePhase, m.resolveProcess)
	if err := m.store.SaveProject(p); err != nil {
		return errs.FileIO("save project", err)
	}
	m.projects[p.ID] = p
	m.audit.Updated("Project", p.ID, p.Name, "project updated", before, snapshot(p))
	m.notifyLocked(m.gen.CheckProject(p))
	return nil
}

// DeleteProject removes a project and cascades over phases, processes
// and tasks, top down. Returns false when the project does not exist.
func (m *Manager) DeleteProject(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return false, nil
	}
	for _, phaseID := range append([]string(nil), p.Phases...) {
		if _, err := m.deletePhaseLocked(phaseID, false); err != nil {
			return false, err
		}
	}
	before := snapshot(p)
	if _, err := m.store.DeleteProject(id); err != nil {
		return false, errs.FileIO("delete project", err)
	}
	delete(m.projects, id)
	m.audit.Deleted("Project", id, p.Name, before)
	m.log.Info().Str("project_id", id).Str("name", p.Name).Msg("project deleted")
	return true, nil
}

// CloneProject deep-copies a project under a new name: every phase,
// process and task is cloned with a fresh id and re-linked. Task
// statuses, recorded effort and progress reset; structure, estimates
// and priorities carry over. Returns the new project.
func (m *Manager) CloneProject(id, name string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.projects[id]
	if !ok {
		return nil, errs.Business("project %s not found", id)
	}
	if strings.TrimSpace(name) == "" {
		name = src.Name + " (copy)"
	}

	clone := src.Clone(name)
	for _, phaseID := range src.Phases {
		srcPhase, ok := m.phases[phaseID]
		if !ok {
			continue
		}
		phase := srcPhase.Clone(srcPhase.Name)
		phase.ParentProjectID = clone.ID
		for _, processID := range srcPhase.Processes {
			srcProcess, ok := m.processes[processID]
			if !ok {
				continue
			}
			process := srcProcess.Clone(srcProcess.Name)
			process.ParentPhaseID = phase.ID
			for _, taskID := range srcProcess.Tasks {
				srcTask, ok := m.tasks[taskID]
				if !ok {
					continue
				}
				task := srcTask.Clone(srcTask.Name)
				task.ParentProcessID = process.ID
				if err := m.store.SaveTask(task); err != nil {
					return nil, errs.FileIO("save cloned task", err)
				}
				m.tasks[task.ID] = task
				process.AddTask(task.ID)
			}
			if err := m.store.SaveProcess(process); err != nil {
				return nil, errs.FileIO("save cloned process", err)
			}
			m.processes[process.ID] = process
			phase.AddProcess(process.ID)
		}
		if err := m.store.SavePhase(phase); err != nil {
			return nil, errs.FileIO("save cloned phase", err)
		}
		m.phases[phase.ID] = phase
		clone.AddPhase(phase.ID)
	}
	if err := m.store.SaveProject(clone); err != nil {
		return nil, errs.FileIO("save cloned project", err)
	}
	m.projects[clone.ID] = clone
	m.audit.Created("Project", clone.ID, clone.Name, snapshot(clone))
	m.log.Info().
		Str("source_id", id).
		Str("project_id", clone.ID).
		Str("name", clone.Name).
		Msg("project cloned")
	return clone, nil
}

// ---- Phases ----

// CreatePhase creates a phase under an existing project. A missing
// parent is a business-rule error.
func (m *Manager) CreatePhase(name, projectID, description string) (*model.Phase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[projectID]
	if !ok {
		return nil, errs.Business("project %s does not exist", projectID)
	}
	p := model.NewPhase(name, description)
	p.ParentProjectID = projectID
	if err := p.Validate(); err != nil {
		return nil, errs.Validation("invalid phase: %v", err)
	}
	project.AddPhase(p.ID)
	if err := m.store.SavePhase(p); err != nil {
		return nil, errs.FileIO("save phase", err)
	}
	if err := m.store.SaveProject(project); err != nil {
		return nil, errs.FileIO("save project", err)
	}
	m.phases[p.ID] = p
	m.audit.Created("Phase", p.ID, p.Name, snapshot(p))
	m.log.Info().Str("phase_id", p.ID).Str("project_id", projectID).Str("name", p.Name).Msg("phase created")
	return p, nil
}

// GetPhase returns a phase by id, nil when absent.
func (m *Manager) GetPhase(id string) *model.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phases[id]
}

// ListPhases returns the phases of a project in the project's order.
// An empty projectID lists every phase ordered by creation time.
func (m *Manager) ListPhases(projectID string) []*model.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	if projectID != "" {
		project, ok := m.projects[projectID]
		if !ok {
			return nil
		}
		out := make([]*model.Phase, 0, len(project.Phases))
		for _, id := range project.Phases {
			if p, ok := m.phases[id]; ok {
				out = append(out, p)
			}
		}
		return out
	}
	out := make([]*model.Phase, 0, len(m.phases))
	for _, p := range m.phases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UpdatePhase validates, recomputes and persists a phase, then rolls
// the change up into the parent project.
func (m *Manager) UpdatePhase(p *model.Phase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := p.Validate(); err != nil {
		return errs.Validation("invalid phase: %v", err)
	}
	if _, ok := m.phases[p.ID]; !ok {
		return errs.NotFound("Phase", p.ID)
	}
	before := snapshot(m.phases[p.ID])
	return m.updatePhaseLocked(p, before)
}

// updatePhaseLocked recomputes phase progress, persists, and continues
// the cascade into the parent project. A missing parent is skipped.
func (m *Manager) updatePhaseLocked(p *model.Phase, before json.RawMessage) error {
	p.UpdateProgress(m.resolveProcess)
	if err := m.store.SavePhase(p); err != nil {
		return errs.FileIO("save phase", err)
	}
	m.phases[p.ID] = p
	m.audit.Updated("Phase", p.ID, p.Name, "phase updated", before, snapshot(p))
	m.notifyLocked(m.gen.CheckPhase(p))
	if p.ParentProjectID != "" {
		if project, ok := m.projects[p.ParentProjectID]; ok {
			if err := m.updateProjectLocked(project, snapshot(project)); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeletePhase removes a phase, its processes and their tasks.
func (m *Manager) DeletePhase(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletePhaseLocked(id, true)
}

func (m *Manager) deletePhaseLocked(id string, detachParent bool) (bool, error) {
	p, ok := m.phases[id]
	if !ok {
		return false, nil
	}
	for _, processID := range append([]string(nil), p.Processes...) {
		if _, err := m.deleteProcessLocked(processID, false); err != nil {
			return false, err
		}
	}
	if detachParent && p.ParentProjectID != "" {
		if project, ok := m.projects[p.ParentProjectID]; ok {
			project.RemovePhase(id)
			if err := m.store.SaveProject(project); err != nil {
				return false, errs.FileIO("save project", err)
			}
		}
	}
	before := snapshot(p)
	if _, err := m.store.DeletePhase(id); err != nil {
		return false, errs.FileIO("delete phase", err)
	}
	delete(m.phases, id)
	m.audit.Deleted("Phase", id, p.Name, before)
	return true, nil
}

// ---- Processes ----

// CreateProcess creates a process under an existing phase. A missing
// parent is a business-rule error.
func (m *Manager) CreateProcess(name, assignee, phaseID, description string) (*model.Process, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phase, ok := m.phases[phaseID]
	if !ok {
		return nil, errs.Business("phase %s does not exist", phaseID)
	}
	p := model.NewProcess(name, description, assignee)
	p.ParentPhaseID = phaseID
	if err := p.Validate(); err != nil {
		return nil, errs.Validation("invalid process: %v", err)
	}
	phase.AddProcess(p.ID)
	if err := m.store.SaveProcess(p); err != nil {
		return nil, errs.FileIO("save process", err)
	}
	if err := m.store.SavePhase(phase); err != nil {
		return nil, errs.FileIO("save phase", err)
	}
	m.processes[p.ID] = p
	m.audit.Created("Process", p.ID, p.Name, snapshot(p))
	m.log.Info().Str("process_id", p.ID).Str("phase_id", phaseID).Str("name", p.Name).Msg("process created")
	return p, nil
}

// GetProcess returns a process by id, nil when absent.
func (m *Manager) GetProcess(id string) *model.Process {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processes[id]
}

// ListProcesses returns the processes of a phase in the phase's order.
// An empty phaseID lists every process ordered by creation time.
func (m *Manager) ListProcesses(phaseID string) []*model.Process {
	m.mu.Lock()
	defer m.mu.Unlock()
	if phaseID != "" {
		phase, ok := m.phases[phaseID]
		if !ok {
			return nil
		}
		out := make([]*model.Process, 0, len(phase.Processes))
		for _, id := range phase.Processes {
			if p, ok := m.processes[id]; ok {
				out = append(out, p)
			}
		}
		return out
	}
	out := make([]*model.Process, 0, len(m.processes))
	for _, p := range m.processes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UpdateProcess validates, recomputes and persists a process, then
// rolls the change up through phase and project.
func (m *Manager) UpdateProcess(p *model.Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := p.Validate(); err != nil {
		return errs.Validation("invalid process: %v", err)
	}
	if _, ok := m.processes[p.ID]; !ok {
		return errs.NotFound("Process", p.ID)
	}
	before := snapshot(m.processes[p.ID])
	return m.updateProcessLocked(p, before)
}

// SetProcessProgress sets a process's progress directly. Manual mode
// pins the value against future automatic recomputation; automatic
// mode recomputes from tasks immediately. Returns false for a missing
// process or an out-of-range value.
func (m *Manager) SetProcessProgress(id string, progress float64, manual bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.processes[id]
	if !ok {
		return false, nil
	}
	before := snapshot(p)
	if !p.SetProgress(progress, manual) {
		return false, nil
	}
	return true, m.updateProcessLocked(p, before)
}

// updateProcessLocked recomputes process progress (automatic mode
// only), persists, and continues the cascade into the parent phase.
func (m *Manager) updateProcessLocked(p *model.Process, before json.RawMessage) error {
	p.UpdateProgress(m.resolveTask)
	if err := m.store.SaveProcess(p); err != nil {
		return errs.FileIO("save process", err)
	}
	m.processes[p.ID] = p
	m.audit.Updated("Process", p.ID, p.Name, "process updated", before, snapshot(p))
	m.notifyLocked(m.gen.CheckProcess(p))
	if p.ParentPhaseID != "" {
		if phase, ok := m.phases[p.ParentPhaseID]; ok {
			if err := m.updatePhaseLocked(phase, snapshot(phase)); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteProcess removes a process and its tasks.
func (m *Manager) DeleteProcess(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteProcessLocked(id, true)
}

func (m *Manager) deleteProcessLocked(id string, detachParent bool) (bool, error) {
	p, ok := m.processes[id]
	if !ok {
		return false, nil
	}
	for _, taskID := range append([]string(nil), p.Tasks...) {
		if _, err := m.deleteTaskLocked(taskID, false); err != nil {
			return false, err
		}
	}
	if detachParent && p.ParentPhaseID != "" {
		if phase, ok := m.phases[p.ParentPhaseID]; ok {
			phase.RemoveProcess(id)
			if err := m.store.SavePhase(phase); err != nil {
				return false, errs.FileIO("save phase", err)
			}
		}
	}
	before := snapshot(p)
	if _, err := m.store.DeleteProcess(id); err != nil {
		return false, errs.FileIO("delete process", err)
	}
	delete(m.processes, id)
	m.audit.Deleted("Process", id, p.Name, before)
	return true, nil
}

// ---- Tasks ----

// CreateTask creates a task under an existing process. A missing
// parent is a business-rule error.
func (m *Manager) CreateTask(name, processID, description string) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	process, ok := m.processes[processID]
	if !ok {
		return nil, errs.Business("process %s does not exist", processID)
	}
	t := model.NewTask(name, description)
	t.ParentProcessID = processID
	if err := t.Validate(); err != nil {
		return nil, errs.Validation("invalid task: %v", err)
	}
	process.AddTask(t.ID)
	if err := m.store.SaveTask(t); err != nil {
		return nil, errs.FileIO("save task", err)
	}
	if err := m.store.SaveProcess(process); err != nil {
		return nil, errs.FileIO("save process", err)
	}
	m.tasks[t.ID] = t
	m.audit.Created("Task", t.ID, t.Name, snapshot(t))
	m.log.Info().Str("task_id", t.ID).Str("process_id", processID).Str("name", t.Name).Msg("task created")
	return t, nil
}

// GetTask returns a task by id, nil when absent.
func (m *Manager) GetTask(id string) *model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[id]
}

// ListTasks returns the tasks of a process in the process's order.
// An empty processID lists every task ordered by creation time.
func (m *Manager) ListTasks(processID string) []*model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if processID != "" {
		process, ok := m.processes[processID]
		if !ok {
			return nil
		}
		out := make([]*model.Task, 0, len(process.Tasks))
		for _, id := range process.Tasks {
			if t, ok := m.tasks[id]; ok {
				out = append(out, t)
			}
		}
		return out
	}
	out := make([]*model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UpdateTaskStatus transitions a task and drives the full cascade:
// the task is persisted, then process, phase and project progress are
// recomputed and persisted in order. Returns false for a missing task
// or an invalid status; a missing ancestor silently ends the cascade
// at that level.
func (m *Manager) UpdateTaskStatus(taskID string, status model.TaskStatus, comment string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return false, nil
	}
	oldStatus := t.Status
	before := snapshot(t)
	if !t.SetStatus(status, m.user, comment) {
		return false, nil
	}
	if err := m.store.SaveTask(t); err != nil {
		return false, errs.FileIO("save task", err)
	}
	m.audit.Updated("Task", t.ID, t.Name,
		fmt.Sprintf("status %s to %s", oldStatus, status), before, snapshot(t))
	if t.ParentProcessID != "" {
		if process, ok := m.processes[t.ParentProcessID]; ok {
			if err := m.updateProcessLocked(process, snapshot(process)); err != nil {
				return false, err
			}
		}
	}
	m.log.Info().
		Str("task_id", taskID).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(status)).
		Msg("task status updated")
	return true, nil
}

// UpdateTask validates and persists task field edits (priority, hours,
// tags, notes) and rolls progress up in case completion flags changed.
func (m *Manager) UpdateTask(t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := t.Validate(); err != nil {
		return errs.Validation("invalid task: %v", err)
	}
	if _, ok := m.tasks[t.ID]; !ok {
		return errs.NotFound("Task", t.ID)
	}
	before := snapshot(m.tasks[t.ID])
	if err := m.store.SaveTask(t); err != nil {
		return errs.FileIO("save task", err)
	}
	m.tasks[t.ID] = t
	m.audit.Updated("Task", t.ID, t.Name, "task updated", before, snapshot(t))
	if t.ParentProcessID != "" {
		if process, ok := m.processes[t.ParentProcessID]; ok {
			return m.updateProcessLocked(process, snapshot(process))
		}
	}
	return nil
}

// DeleteTask removes a task and detaches it from its parent process.
func (m *Manager) DeleteTask(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteTaskLocked(id, true)
}

func (m *Manager) deleteTaskLocked(id string, detachParent bool) (bool, error) {
	t, ok := m.tasks[id]
	if !ok {
		return false, nil
	}
	if detachParent && t.ParentProcessID != "" {
		if process, ok := m.processes[t.ParentProcessID]; ok {
			process.RemoveTask(id)
			if err := m.store.SaveProcess(process); err != nil {
				return false, errs.FileIO("save process", err)
			}
		}
	}
	before := snapshot(t)
	if _, err := m.store.DeleteTask(id); err != nil {
		return false, errs.FileIO("delete task", err)
	}
	delete(m.tasks, id)
	m.audit.Deleted("Task", id, t.Name, before)
	return true, nil
}

// ---- Integrity & statistics ----

// Statistics summarizes entity counts, status distributions and store
// counters for the status command and the dashboard.
type Statistics struct {
	Projects        int                         `json:"projects"`
	Phases          int                         `json:"phases"`
	Processes       int                         `json:"processes"`
	Tasks           int                         `json:"tasks"`
	ProjectStatus   map[model.ProjectStatus]int `json:"project_status"`
	TaskStatus      map[model.TaskStatus]int    `json:"task_status"`
	Notifications   int                         `json:"notifications"`
	UnreadCount     int                         `json:"unread_notifications"`
	ActiveCount     int                         `json:"active_notifications"`
	StorageVersions map[string]int64            `json:"storage_versions"`
	StorageBackups  int64                       `json:"storage_backups"`
}

// Stats computes a point-in-time statistics snapshot.
func (m *Manager) Stats() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := Statistics{
		Projects:      len(m.projects),
		Phases:        len(m.phases),
		Processes:     len(m.processes),
		Tasks:         len(m.tasks),
		Notifications: len(m.notifications),
		ProjectStatus: map[model.ProjectStatus]int{},
		TaskStatus:    map[model.TaskStatus]int{},
	}
	for _, p := range m.projects {
		stats.ProjectStatus[p.Status]++
	}
	for _, t := range m.tasks {
		stats.TaskStatus[t.Status]++
	}
	for _, n := range m.notifications {
		if !n.IsRead() {
			stats.UnreadCount++
		}
		if n.IsActive() {
			stats.ActiveCount++
		}
	}
	meta := m.store.Metadata()
	stats.StorageVersions = meta.Versions
	stats.StorageBackups = meta.BackupCount
	return stats
}

// CleanupOrphans removes entities whose parent no longer exists and
// child-id references that point nowhere. Returns removal counts per
// entity kind.
func (m *Manager) CleanupOrphans() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := map[string]int{"phases": 0, "processes": 0, "tasks": 0, "references": 0}
	for id, p := range m.phases {
		if p.ParentProjectID != "" && m.projects[p.ParentProjectID] == nil {
			if _, err := m.deletePhaseLocked(id, false); err != nil {
				return removed, err
			}
			removed["phases"]++
		}
	}
	for id, p := range m.processes {
		if p.ParentPhaseID != "" && m.phases[p.ParentPhaseID] == nil {
			if _, err := m.deleteProcessLocked(id, false); err != nil {
				return removed, err
			}
			removed["processes"]++
		}
	}
	for id, t := range m.tasks {
		if t.ParentProcessID != "" && m.processes[t.ParentProcessID] == nil {
			if _, err := m.deleteTaskLocked(id, false); err != nil {
				return removed, err
			}
			removed["tasks"]++
		}
	}
	for _, p := range m.projects {
		kept := p.Phases[:0]
		for _, id := range p.Phases {
			if m.phases[id] != nil {
				kept = append(kept, id)
			} else {
				removed["references"]++
			}
		}
		if len(kept) != len(p.Phases) {
			p.Phases = kept
			if err := m.store.SaveProject(p); err != nil {
				return removed, errs.FileIO("save project", err)
			}
		}
	}
	for _, p := range m.phases {
		kept := p.Processes[:0]
		for _, id := range p.Processes {
			if m.processes[id] != nil {
				kept = append(kept, id)
			} else {
				removed["references"]++
			}
		}
		if len(kept) != len(p.Processes) {
			p.Processes = kept
			if err := m.store.SavePhase(p); err != nil {
				return removed, errs.FileIO("save phase", err)
			}
		}
	}
	for _, p := range m.processes {
		kept := p.Tasks[:0]
		for _, id := range p.Tasks {
			if m.tasks[id] != nil {
				kept = append(kept, id)
			} else {
				removed["references"]++
			}
		}
		if len(kept) != len(p.Tasks) {
			p.Tasks = kept
			if err := m.store.SaveProcess(p); err != nil {
				return removed, errs.FileIO("save process", err)
			}
		}
	}
	m.log.Info().Interface("removed", removed).Msg("orphan cleanup finished")
	return removed, nil
}
