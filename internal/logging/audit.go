package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Audit actions recorded in the trail.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionExport = "EXPORT"
	ActionImport = "IMPORT"
)

// AuditEntry is one line of the audit trail: who did what to which
// entity, with optional before/after snapshots of the changed record.
type AuditEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name"`
	User       string    `json:"user"`
	Details    string    `json:"details"`
	Before     any       `json:"before_data,omitempty"`
	After      any       `json:"after_data,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error_message,omitempty"`
}

// AuditTrail appends entries as JSON lines to a file. A nil trail is
// valid and discards everything, so callers never need to branch.
type AuditTrail struct {
	mu     sync.Mutex
	logger zerolog.Logger
	closer io.Closer
	user   string
}

// NewAuditTrail opens (or creates) the JSONL audit file. The user is
// stamped on every entry.
func NewAuditTrail(path, user string) (*AuditTrail, error) {
	if user == "" {
		user = "system"
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFilePerm)
	if err != nil {
		return nil, err
	}
	logger := zerolog.New(zerolog.SyncWriter(file))
	return &AuditTrail{logger: logger, closer: file, user: user}, nil
}

// Record appends one audit entry. Write failures are swallowed; the
// audit trail never blocks the operation it describes.
func (a *AuditTrail) Record(entry AuditEntry) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()
	entry.User = a.user
	a.logger.Log().EmbedObject(jsonEntry{entry}).Send()
}

// Created records a successful entity creation.
func (a *AuditTrail) Created(entityType, entityID, entityName string, after any) {
	a.Record(AuditEntry{
		Action: ActionCreate, EntityType: entityType, EntityID: entityID,
		EntityName: entityName, After: after, Success: true,
	})
}

// Updated records a successful entity update with both snapshots.
func (a *AuditTrail) Updated(entityType, entityID, entityName, details string, before, after any) {
	a.Record(AuditEntry{
		Action: ActionUpdate, EntityType: entityType, EntityID: entityID,
		EntityName: entityName, Details: details, Before: before, After: after,
		Success: true,
	})
}

// Deleted records a successful entity deletion with its last state.
func (a *AuditTrail) Deleted(entityType, entityID, entityName string, before any) {
	a.Record(AuditEntry{
		Action: ActionDelete, EntityType: entityType, EntityID: entityID,
		EntityName: entityName, Before: before, Success: true,
	})
}

// Close closes the underlying file.
func (a *AuditTrail) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// jsonEntry adapts an AuditEntry onto zerolog's object marshaler so the
// entry lands as one flat JSON line.
type jsonEntry struct {
	e AuditEntry
}

func (j jsonEntry) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("id", j.e.ID).
		Time("timestamp", j.e.Timestamp).
		Str("action", j.e.Action).
		Str("entity_type", j.e.EntityType).
		Str("entity_id", j.e.EntityID).
		Str("entity_name", j.e.EntityName).
		Str("user", j.e.User).
		Str("details", j.e.Details).
		Bool("success", j.e.Success)
	if j.e.Before != nil {
		ev.Interface("before_data", j.e.Before)
	}
	if j.e.After != nil {
		ev.Interface("after_data", j.e.After)
	}
	if j.e.Error != "" {
		ev.Str("error_message", j.e.Error)
	}
}
