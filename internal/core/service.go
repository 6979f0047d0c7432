package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// NotificationService periodically runs the notification check on a
// background goroutine. Cleanup of expired notifications piggybacks on
// the loop at most once per day.
type NotificationService struct {
	manager *Manager
	log     zerolog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	lastCleanup time.Time
}

// joinTimeout bounds how long Stop waits for the loop to exit.
const joinTimeout = 5 * time.Second

// NewNotificationService builds a stopped service.
func NewNotificationService(manager *Manager, log zerolog.Logger) *NotificationService {
	return &NotificationService{manager: manager, log: log}
}

// Start launches the background loop. Returns false when already running.
func (s *NotificationService) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	s.log.Info().
		Int("interval_hours", s.manager.Settings().CheckIntervalHours).
		Msg("notification service started")
	return true
}

// Stop signals the loop and waits for it, bounded by joinTimeout.
// Returns false when the service was not running.
func (s *NotificationService) Stop() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
	case <-time.After(joinTimeout):
		s.log.Warn().Msg("notification service did not stop in time")
	}
	s.log.Info().Msg("notification service stopped")
	return true
}

// Running reports whether the loop is active.
func (s *NotificationService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *NotificationService) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		s.runCheck()
		interval := time.Duration(s.manager.Settings().CheckIntervalHours) * time.Hour
		timer := time.NewTimer(interval)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *NotificationService) runCheck() {
	generated := s.manager.CheckAllNotifications()
	s.log.Debug().Int("generated", generated).Msg("background notification check")
	if time.Since(s.lastCleanup) < 24*time.Hour {
		return
	}
	removed, err := s.manager.CleanupNotifications()
	if err != nil {
		s.log.Error().Err(err).Msg("notification cleanup failed")
		return
	}
	s.lastCleanup = time.Now()
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("expired notifications removed")
	}
}
