package errs

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Handler applies an error's recovery strategy: retry re-invokes the
// operation a bounded number of times, fallback substitutes a default,
// ignore swallows, abort logs and re-raises. Strategy none passes the
// error through untouched.
type Handler struct {
	Logger     zerolog.Logger
	MaxRetries int
	RetryDelay time.Duration
}

// NewHandler builds a handler with three retries and no delay between
// attempts.
func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{Logger: logger, MaxRetries: 3}
}

// Handle runs op and applies the strategy of any taxonomy error it
// returns. Non-taxonomy errors pass through unchanged.
func (h *Handler) Handle(op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	h.log(e)
	switch e.Strategy {
	case StrategyRetry:
		return h.retry(op, e)
	case StrategyIgnore:
		return nil
	case StrategyAbort:
		return err
	default:
		return err
	}
}

// HandleFallback runs op; when it fails with a fallback-strategy error
// the fallback function runs instead and its error becomes the result.
func (h *Handler) HandleFallback(op func() error, fallback func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) || e.Strategy != StrategyFallback {
		return h.Handle(func() error { return err })
	}
	h.log(e)
	return fallback()
}

func (h *Handler) retry(op func() error, first *Error) error {
	err := error(first)
	for attempt := 1; attempt <= h.MaxRetries; attempt++ {
		if h.RetryDelay > 0 {
			time.Sleep(h.RetryDelay)
		}
		if err = op(); err == nil {
			return nil
		}
		h.Logger.Warn().
			Int("attempt", attempt).
			Err(err).
			Msg("retry failed")
	}
	return err
}

func (h *Handler) log(e *Error) {
	ev := h.Logger.Error()
	if e.Severity <= SeverityMedium {
		ev = h.Logger.Warn()
	}
	ev.Str("category", string(e.Category)).
		Str("severity", e.Severity.String()).
		Str("strategy", string(e.Strategy)).
		Err(e).
		Msg(e.Message)
}
