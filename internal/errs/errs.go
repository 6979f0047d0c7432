// Package errs defines the application error taxonomy: every error
// carries a category, a severity and a recovery strategy, so callers
// and the central handler can decide what to do without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Category classifies what kind of failure occurred.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryData       Category = "data"
	CategoryBusiness   Category = "business"
	CategorySystem     Category = "system"
	CategoryFileIO     Category = "file_io"
)

// Severity ranks how serious a failure is.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

// Strategy is the suggested recovery action for an error.
type Strategy string

const (
	StrategyNone     Strategy = "none"
	StrategyRetry    Strategy = "retry"
	StrategyFallback Strategy = "fallback"
	StrategyIgnore   Strategy = "ignore"
	StrategyAbort    Strategy = "abort"
)

// Error is the taxonomy-aware error type. It wraps an optional cause.
type Error struct {
	Category Category
	Severity Severity
	Strategy Strategy
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a taxonomy error with full control over the fields.
func New(category Category, severity Severity, strategy Strategy, message string, cause error) *Error {
	return &Error{
		Category: category,
		Severity: severity,
		Strategy: strategy,
		Message:  message,
		Cause:    cause,
	}
}

// Validation marks a rejected input value. Low severity, no recovery.
func Validation(format string, args ...any) *Error {
	return New(CategoryValidation, SeverityLow, StrategyNone, fmt.Sprintf(format, args...), nil)
}

// Business marks a violated business rule, such as creating an entity
// under a parent that does not exist.
func Business(format string, args ...any) *Error {
	return New(CategoryBusiness, SeverityMedium, StrategyNone, fmt.Sprintf(format, args...), nil)
}

// NotFound marks a lookup miss for an entity id.
func NotFound(entityType, id string) *Error {
	return New(CategoryData, SeverityLow, StrategyNone,
		fmt.Sprintf("%s %s not found", entityType, id), nil)
}

// FileIO wraps a storage read or write failure; retrying is reasonable.
func FileIO(message string, cause error) *Error {
	return New(CategoryFileIO, SeverityHigh, StrategyRetry, message, cause)
}

// System wraps an unexpected internal failure; callers should abort.
func System(message string, cause error) *Error {
	return New(CategorySystem, SeverityCritical, StrategyAbort, message, cause)
}

// CategoryOf extracts the category from an error chain,
// or CategorySystem when the chain carries no taxonomy error.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategorySystem
}

// IsBusiness reports whether the error chain contains a business-rule
// violation.
func IsBusiness(err error) bool {
	return CategoryOf(err) == CategoryBusiness
}

// IsNotFound reports whether the error chain contains a data-category
// lookup miss.
func IsNotFound(err error) bool {
	return CategoryOf(err) == CategoryData
}
