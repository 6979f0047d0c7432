package core

import (
	"sort"
	"time"

	"github.com/NeoKiring/project-management-system/internal/errs"
	"github.com/NeoKiring/project-management-system/internal/model"
)

// AddHandler registers a delivery handler for new notifications.
func (m *Manager) AddHandler(h NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// notifyLocked deduplicates, stores, persists and delivers a batch of
// generated notifications. A candidate is dropped when an active
// notification for the same entity and type already exists.
func (m *Manager) notifyLocked(candidates []*model.Notification) int {
	added := 0
	for _, n := range candidates {
		if m.hasActiveLocked(n.EntityID, n.Type) {
			continue
		}
		if err := m.store.SaveNotification(n); err != nil {
			m.log.Error().Err(err).Str("notification_id", n.ID).Msg("save notification")
			continue
		}
		m.notifications[n.ID] = n
		m.deliverLocked(n)
		added++
	}
	return added
}

func (m *Manager) hasActiveLocked(entityID string, typ model.NotificationType) bool {
	for _, n := range m.notifications {
		if n.EntityID == entityID && n.Type == typ && n.IsActive() {
			return true
		}
	}
	return false
}

func (m *Manager) deliverLocked(n *model.Notification) {
	for _, h := range m.handlers {
		h(n)
	}
}

// CheckAllNotifications evaluates every rule against every project,
// phase and process. Returns the number of notifications generated.
func (m *Manager) CheckAllNotifications() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	generated := 0
	for _, p := range m.projects {
		generated += m.notifyLocked(m.gen.CheckProject(p))
	}
	for _, p := range m.phases {
		generated += m.notifyLocked(m.gen.CheckPhase(p))
	}
	for _, p := range m.processes {
		generated += m.notifyLocked(m.gen.CheckProcess(p))
	}
	if generated > 0 {
		m.log.Info().Int("generated", generated).Msg("notification check finished")
	}
	return generated
}

// NotificationFilter narrows ListNotifications. Zero values match all.
type NotificationFilter struct {
	UnreadOnly bool
	ActiveOnly bool
	EntityID   string
	Type       model.NotificationType
	Priority   model.NotificationPriority
}

// ListNotifications returns matching notifications, newest first.
func (m *Manager) ListNotifications(filter NotificationFilter) []*model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Notification
	for _, n := range m.notifications {
		if filter.UnreadOnly && n.IsRead() {
			continue
		}
		if filter.ActiveOnly && !n.IsActive() {
			continue
		}
		if filter.EntityID != "" && n.EntityID != filter.EntityID {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.Priority != "" && n.Priority != filter.Priority {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GetNotification returns a notification by id, nil when absent.
func (m *Manager) GetNotification(id string) *model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifications[id]
}

// MarkNotificationRead marks a notification read and persists it.
func (m *Manager) MarkNotificationRead(id string) (bool, error) {
	return m.mutateNotification(id, (*model.Notification).MarkRead)
}

// AcknowledgeNotification acknowledges a notification; the entity and
// type become eligible for regeneration afterwards.
func (m *Manager) AcknowledgeNotification(id string) (bool, error) {
	return m.mutateNotification(id, (*model.Notification).Acknowledge)
}

// DismissNotification dismisses a notification; the entity and type
// become eligible for regeneration afterwards.
func (m *Manager) DismissNotification(id string) (bool, error) {
	return m.mutateNotification(id, (*model.Notification).Dismiss)
}

func (m *Manager) mutateNotification(id string, mutate func(*model.Notification)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return false, nil
	}
	mutate(n)
	if err := m.store.SaveNotification(n); err != nil {
		return false, errs.FileIO("save notification", err)
	}
	return true, nil
}

// MarkAllNotificationsRead marks every unread notification read and
// returns how many changed.
func (m *Manager) MarkAllNotificationsRead() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.IsRead() {
			continue
		}
		n.MarkRead()
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if err := m.store.SaveNotifications(m.notifications); err != nil {
		return count, errs.FileIO("save notifications", err)
	}
	return count, nil
}

// CreateManualNotification creates and delivers a user-authored
// notification, bypassing the rule engine but not deduplication.
func (m *Manager) CreateManualNotification(typ model.NotificationType, entityID, entityType, entityName, message string, priority model.NotificationPriority) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := model.NewNotification(typ, entityID, entityType, entityName, message, priority)
	n.Metadata["manual_creation"] = true
	n.Metadata["created_by"] = m.user
	if m.notifyLocked([]*model.Notification{n}) == 0 {
		return nil, errs.Business("an active %s notification for %s already exists", typ, entityID)
	}
	return n, nil
}

// CleanupNotifications deletes notifications older than the retention
// period. Returns the number removed.
func (m *Manager) CleanupNotifications() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().UTC().AddDate(0, 0, -m.settings.RetentionDays)
	removed := 0
	for id, n := range m.notifications {
		if n.CreatedAt.After(cutoff) {
			continue
		}
		if _, err := m.store.DeleteNotification(id); err != nil {
			return removed, errs.FileIO("delete notification", err)
		}
		delete(m.notifications, id)
		removed++
	}
	if removed > 0 {
		m.log.Info().Int("removed", removed).Msg("notification cleanup finished")
	}
	return removed, nil
}

// NotificationStats summarizes the notification inbox.
type NotificationStats struct {
	Total      int
	Unread     int
	Active     int
	ByType     map[model.NotificationType]int
	ByPriority map[model.NotificationPriority]int
}

// NotificationStatistics counts notifications by state, type and priority.
func (m *Manager) NotificationStatistics() NotificationStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := NotificationStats{
		ByType:     make(map[model.NotificationType]int),
		ByPriority: make(map[model.NotificationPriority]int),
	}
	for _, n := range m.notifications {
		stats.Total++
		if !n.IsRead() {
			stats.Unread++
		}
		if n.IsActive() {
			stats.Active++
		}
		stats.ByType[n.Type]++
		stats.ByPriority[n.Priority]++
	}
	return stats
}

// Settings returns a copy of the active notification settings.
func (m *Manager) Settings() model.NotificationSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	settings := *m.settings
	settings.EnabledTypes = make(map[model.NotificationType]bool, len(m.settings.EnabledTypes))
	for k, v := range m.settings.EnabledTypes {
		settings.EnabledTypes[k] = v
	}
	return settings
}

// UpdateSettings validates, persists and applies new notification
// settings; the rule generator picks them up immediately.
func (m *Manager) UpdateSettings(settings model.NotificationSettings) error {
	if settings.DeadlineWarningDays < 0 || settings.RetentionDays < 1 || settings.CheckIntervalHours < 1 {
		return errs.Validation("invalid notification settings")
	}
	if settings.ProgressDelayThreshold < 0 || settings.ProgressDelayThreshold > 100 ||
		settings.InsufficientProgressThreshold < 0 || settings.InsufficientProgressThreshold > 100 {
		return errs.Validation("thresholds must be 0-100")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.SaveSettings(&settings); err != nil {
		return errs.FileIO("save settings", err)
	}
	*m.settings = settings
	return nil
}
