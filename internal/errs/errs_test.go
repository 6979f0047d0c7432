package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := FileIO("save projects", cause)

	if e.Error() != "save projects: disk full" {
		t.Errorf("message = %q", e.Error())
	}
	if !errors.Is(e, cause) {
		t.Error("cause not reachable via errors.Is")
	}

	plain := Validation("progress must be 0-100, got %v", 120)
	if plain.Error() != "progress must be 0-100, got 120" {
		t.Errorf("message = %q", plain.Error())
	}
	if plain.Unwrap() != nil {
		t.Error("validation error should have no cause")
	}
}

func TestConstructors_Taxonomy(t *testing.T) {
	cases := []struct {
		err      *Error
		category Category
		severity Severity
		strategy Strategy
	}{
		{Validation("bad"), CategoryValidation, SeverityLow, StrategyNone},
		{Business("rule"), CategoryBusiness, SeverityMedium, StrategyNone},
		{NotFound("Project", "abc"), CategoryData, SeverityLow, StrategyNone},
		{FileIO("io", nil), CategoryFileIO, SeverityHigh, StrategyRetry},
		{System("boom", nil), CategorySystem, SeverityCritical, StrategyAbort},
	}
	for _, c := range cases {
		if c.err.Category != c.category || c.err.Severity != c.severity || c.err.Strategy != c.strategy {
			t.Errorf("%s: got (%s, %s, %s)", c.err.Message, c.err.Category, c.err.Severity, c.err.Strategy)
		}
	}
}

func TestCategoryOf_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("create phase: %w", Business("project %s not found", "x"))
	if CategoryOf(wrapped) != CategoryBusiness {
		t.Errorf("category = %s", CategoryOf(wrapped))
	}
	if !IsBusiness(wrapped) {
		t.Error("IsBusiness missed wrapped error")
	}
	if !IsNotFound(NotFound("Task", "t1")) {
		t.Error("IsNotFound missed direct error")
	}
	if CategoryOf(errors.New("plain")) != CategorySystem {
		t.Error("plain errors should default to system")
	}
}

func TestHandler_RetrySucceedsEventually(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	attempts := 0
	err := h.Handle(func() error {
		attempts++
		if attempts < 3 {
			return FileIO("flaky write", errors.New("busy"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	// Initial call plus two retries.
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestHandler_RetryExhausted(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	attempts := 0
	err := h.Handle(func() error {
		attempts++
		return FileIO("flaky write", errors.New("busy"))
	})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if attempts != 1+h.MaxRetries {
		t.Errorf("attempts = %d, want %d", attempts, 1+h.MaxRetries)
	}
}

func TestHandler_IgnoreSwallows(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	err := h.Handle(func() error {
		return New(CategoryData, SeverityLow, StrategyIgnore, "stale cache", nil)
	})
	if err != nil {
		t.Errorf("ignore strategy returned %v", err)
	}
}

func TestHandler_NonTaxonomyPassesThrough(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	plain := errors.New("plain failure")
	if err := h.Handle(func() error { return plain }); !errors.Is(err, plain) {
		t.Errorf("got %v, want original error", err)
	}
}

func TestHandler_Fallback(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	ran := false
	err := h.HandleFallback(
		func() error {
			return New(CategoryFileIO, SeverityMedium, StrategyFallback, "primary unreadable", nil)
		},
		func() error {
			ran = true
			return nil
		},
	)
	if err != nil || !ran {
		t.Errorf("fallback: err=%v ran=%v", err, ran)
	}

	// Non-fallback errors take the normal path instead.
	ran = false
	err = h.HandleFallback(
		func() error { return Business("no parent") },
		func() error { ran = true; return nil },
	)
	if err == nil || ran {
		t.Errorf("business error should not trigger fallback: err=%v ran=%v", err, ran)
	}
}
