// Package model defines the four-level entity hierarchy
// (Project → Phase → Process → Task) and the notification model.
// Entities are mutable value objects; cross-references between levels
// are plain id strings resolved through lookup functions, never pointers.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entity carries the identity and bookkeeping fields shared by all
// four entity kinds. Embedded by value in each concrete type.
type Entity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newEntity(name, description string) Entity {
	now := time.Now().UTC()
	return Entity{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch refreshes the updated_at timestamp. Every mutating setter calls it.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

func (e *Entity) validateBase() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Date is a calendar date without a time component,
// serialized as an ISO "2006-01-02" string.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) String() string      { return d.t.Format(dateLayout) }
func (d Date) IsZero() bool        { return d.t.IsZero() }
func (d Date) Before(o Date) bool  { return d.t.Before(o.t) }
func (d Date) After(o Date) bool   { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool   { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date  { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Time() time.Time     { return d.t }

// DaysUntil returns the number of whole days from d to o.
// Negative when o is in the past relative to d.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// round1 rounds a progress value to one decimal place.
// All derived progress figures carry exactly one decimal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ProgressStatus is the status derived purely from a progress value.
// Used by Process and Phase, and fed into project status aggregation.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// statusForProgress maps a progress value onto its derived status.
// Exactly 0 is not started, exactly 100 is completed, anything in
// between (including a manually-set 0.1) reads as in progress.
func statusForProgress(progress float64) ProgressStatus {
	switch progress {
	case 0.0:
		return ProgressNotStarted
	case 100.0:
		return ProgressCompleted
	default:
		return ProgressInProgress
	}
}

// efficiencyRatio returns actual/estimated, or false when either
// figure is missing or the estimate is zero.
func efficiencyRatio(estimated, actual *float64) (float64, bool) {
	if estimated == nil || actual == nil || *estimated <= 0 {
		return 0, false
	}
	return *actual / *estimated, true
}

// addUnique appends a trimmed value to a list if non-empty and absent.
func addUnique(list []string, value string) ([]string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return list, false
	}
	for _, v := range list {
		if v == value {
			return list, false
		}
	}
	return append(list, value), true
}

// removeValue deletes the first occurrence of value from the list.
func removeValue(list []string, value string) ([]string, bool) {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
