package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies the rule that produced an alert.
type NotificationType string

const (
	DeadlineApproaching  NotificationType = "deadline_approaching"
	DeadlineOverdue      NotificationType = "deadline_overdue"
	ProgressDelay        NotificationType = "progress_delay"
	ProgressInsufficient NotificationType = "progress_insufficient"
)

// NotificationTypes lists every rule type.
var NotificationTypes = []NotificationType{
	DeadlineApproaching,
	DeadlineOverdue,
	ProgressDelay,
	ProgressInsufficient,
}

// NotificationPriority ranks an alert's urgency.
type NotificationPriority string

const (
	PriorityHigh   NotificationPriority = "high"
	PriorityMedium NotificationPriority = "medium"
	PriorityLow    NotificationPriority = "low"
)

// Notification is one alert about one entity. Read, acknowledged and
// dismissed are independent timestamps; acknowledging or dismissing
// auto-marks the notification read.
type Notification struct {
	ID             string               `json:"id"`
	Type           NotificationType     `json:"type"`
	EntityID       string               `json:"entity_id"`
	EntityType     string               `json:"entity_type"`
	EntityName     string               `json:"entity_name"`
	Message        string               `json:"message"`
	Priority       NotificationPriority `json:"priority"`
	CreatedAt      time.Time            `json:"created_at"`
	ReadAt         *time.Time           `json:"read_at"`
	AcknowledgedAt *time.Time           `json:"acknowledged_at"`
	DismissedAt    *time.Time           `json:"dismissed_at"`
	Metadata       map[string]any       `json:"metadata"`
}

// NewNotification creates an unread, active notification.
func NewNotification(typ NotificationType, entityID, entityType, entityName, message string, priority NotificationPriority) *Notification {
	return &Notification{
		ID:         uuid.NewString(),
		Type:       typ,
		EntityID:   entityID,
		EntityType: entityType,
		EntityName: entityName,
		Message:    message,
		Priority:   priority,
		CreatedAt:  time.Now().UTC(),
		Metadata:   map[string]any{},
	}
}

// MarkRead records the read timestamp once.
func (n *Notification) MarkRead() {
	if n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
}

// Acknowledge records the acknowledgement timestamp and marks read.
func (n *Notification) Acknowledge() {
	if n.AcknowledgedAt == nil {
		now := time.Now().UTC()
		n.AcknowledgedAt = &now
		n.MarkRead()
	}
}

// Dismiss records the dismissal timestamp and marks read.
func (n *Notification) Dismiss() {
	if n.DismissedAt == nil {
		now := time.Now().UTC()
		n.DismissedAt = &now
		n.MarkRead()
	}
}

func (n *Notification) IsRead() bool         { return n.ReadAt != nil }
func (n *Notification) IsAcknowledged() bool { return n.AcknowledgedAt != nil }
func (n *Notification) IsDismissed() bool    { return n.DismissedAt != nil }

// IsActive reports whether the notification still blocks duplicates:
// neither acknowledged nor dismissed. A read-but-unacknowledged
// notification is still active.
func (n *Notification) IsActive() bool {
	return !n.IsAcknowledged() && !n.IsDismissed()
}

// AgeHours is the time elapsed since creation, in hours.
func (n *Notification) AgeHours() float64 {
	return time.Since(n.CreatedAt).Hours()
}

// NotificationSettings holds the thresholds and switches that drive the
// generator, persisted as the settings collection.
type NotificationSettings struct {
	DeadlineWarningDays           int                       `json:"deadline_warning_days"`
	ProgressDelayThreshold        float64                   `json:"progress_delay_threshold"`
	InsufficientProgressDays      int                       `json:"insufficient_progress_days"`
	InsufficientProgressThreshold float64                   `json:"insufficient_progress_threshold"`
	CheckIntervalHours            int                       `json:"check_interval_hours"`
	RetentionDays                 int                       `json:"retention_days"`
	EnabledTypes                  map[NotificationType]bool `json:"enabled_types"`
}

// DefaultNotificationSettings returns the documented defaults with
// every rule type enabled.
func DefaultNotificationSettings() *NotificationSettings {
	enabled := make(map[NotificationType]bool, len(NotificationTypes))
	for _, t := range NotificationTypes {
		enabled[t] = true
	}
	return &NotificationSettings{
		DeadlineWarningDays:           7,
		ProgressDelayThreshold:        50.0,
		InsufficientProgressDays:      3,
		InsufficientProgressThreshold: 30.0,
		CheckIntervalHours:            24,
		RetentionDays:                 90,
		EnabledTypes:                  enabled,
	}
}

// Enabled reports whether a rule type is switched on. Types missing
// from the map default to enabled.
func (s *NotificationSettings) Enabled(typ NotificationType) bool {
	if s.EnabledTypes == nil {
		return true
	}
	enabled, ok := s.EnabledTypes[typ]
	return !ok || enabled
}

// Generator evaluates the four notification rules against an entity.
// It is stateless apart from its settings and clock; deduplication is
// the caller's concern.
type Generator struct {
	Settings *NotificationSettings
	Now      func() time.Time
}

// NewGenerator builds a generator with the given settings (defaults
// when nil) and the wall clock.
func NewGenerator(settings *NotificationSettings) *Generator {
	if settings == nil {
		settings = DefaultNotificationSettings()
	}
	return &Generator{Settings: settings, Now: time.Now}
}

func (g *Generator) today() Date {
	return DateOf(g.Now())
}

// target is the per-entity view the rules evaluate: an optional end
// date, an optional progress figure and a completion flag.
type target struct {
	id        string
	kind      string
	name      string
	endDate   *Date
	progress  *float64
	completed bool
}

// CheckProject runs every enabled rule against a project.
func (g *Generator) CheckProject(p *Project) []*Notification {
	return g.check(target{
		id:        p.ID,
		kind:      "Project",
		name:      p.Name,
		endDate:   p.EndDate,
		progress:  &p.Progress,
		completed: p.Status == ProjectCompleted || p.Progress >= 100.0,
	})
}

// CheckPhase runs every enabled rule against a phase.
func (g *Generator) CheckPhase(p *Phase) []*Notification {
	return g.check(target{
		id:        p.ID,
		kind:      "Phase",
		name:      p.Name,
		endDate:   p.EndDate,
		progress:  &p.Progress,
		completed: p.Progress >= 100.0,
	})
}

// CheckProcess runs every enabled rule against a process.
func (g *Generator) CheckProcess(p *Process) []*Notification {
	return g.check(target{
		id:        p.ID,
		kind:      "Process",
		name:      p.Name,
		endDate:   p.EndDate,
		progress:  &p.Progress,
		completed: p.Progress >= 100.0,
	})
}

func (g *Generator) check(t target) []*Notification {
	var out []*Notification
	if g.Settings.Enabled(DeadlineApproaching) {
		if n := g.checkDeadlineApproaching(t); n != nil {
			out = append(out, n)
		}
	}
	if g.Settings.Enabled(DeadlineOverdue) {
		if n := g.checkDeadlineOverdue(t); n != nil {
			out = append(out, n)
		}
	}
	if g.Settings.Enabled(ProgressDelay) {
		if n := g.checkProgressDelay(t); n != nil {
			out = append(out, n)
		}
	}
	if g.Settings.Enabled(ProgressInsufficient) {
		if n := g.checkProgressInsufficient(t); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (g *Generator) checkDeadlineApproaching(t target) *Notification {
	if t.endDate == nil || t.completed {
		return nil
	}
	days := g.today().DaysUntil(*t.endDate)
	if days < 0 || days > g.Settings.DeadlineWarningDays {
		return nil
	}
	var message string
	priority := PriorityMedium
	switch days {
	case 0:
		message = fmt.Sprintf("%s %q is due today.", t.kind, t.name)
		priority = PriorityHigh
	case 1:
		message = fmt.Sprintf("%s %q is due tomorrow.", t.kind, t.name)
		priority = PriorityHigh
	default:
		message = fmt.Sprintf("%s %q is due in %d days.", t.kind, t.name, days)
	}
	n := NewNotification(DeadlineApproaching, t.id, t.kind, t.name, message, priority)
	n.Metadata["days_until_deadline"] = float64(days)
	n.Metadata["end_date"] = t.endDate.String()
	return n
}

func (g *Generator) checkDeadlineOverdue(t target) *Notification {
	if t.endDate == nil || t.completed {
		return nil
	}
	days := t.endDate.DaysUntil(g.today())
	if days <= 0 {
		return nil
	}
	message := fmt.Sprintf("%s %q is %d days overdue.", t.kind, t.name, days)
	if days == 1 {
		message = fmt.Sprintf("%s %q is 1 day overdue.", t.kind, t.name)
	}
	n := NewNotification(DeadlineOverdue, t.id, t.kind, t.name, message, PriorityHigh)
	n.Metadata["days_overdue"] = float64(days)
	n.Metadata["end_date"] = t.endDate.String()
	return n
}

func (g *Generator) checkProgressDelay(t target) *Notification {
	if t.progress == nil || *t.progress >= 100.0 {
		return nil
	}
	if *t.progress >= g.Settings.ProgressDelayThreshold {
		return nil
	}
	message := fmt.Sprintf("%s %q is behind at %.1f%% progress (threshold %.1f%%).",
		t.kind, t.name, *t.progress, g.Settings.ProgressDelayThreshold)
	n := NewNotification(ProgressDelay, t.id, t.kind, t.name, message, PriorityMedium)
	n.Metadata["current_progress"] = *t.progress
	n.Metadata["threshold"] = g.Settings.ProgressDelayThreshold
	return n
}

func (g *Generator) checkProgressInsufficient(t target) *Notification {
	if t.endDate == nil || t.progress == nil || *t.progress >= 100.0 {
		return nil
	}
	days := g.today().DaysUntil(*t.endDate)
	if days > g.Settings.InsufficientProgressDays || *t.progress >= g.Settings.InsufficientProgressThreshold {
		return nil
	}
	message := fmt.Sprintf("%s %q is due in %d days but progress is only %.1f%%.",
		t.kind, t.name, days, *t.progress)
	n := NewNotification(ProgressInsufficient, t.id, t.kind, t.name, message, PriorityHigh)
	n.Metadata["days_until_deadline"] = float64(days)
	n.Metadata["current_progress"] = *t.progress
	n.Metadata["threshold"] = g.Settings.InsufficientProgressThreshold
	return n
}
