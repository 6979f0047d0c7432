package core

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNotificationService_StartStop(t *testing.T) {
	m := testManager(t)
	s := NewNotificationService(m, zerolog.Nop())

	if s.Running() {
		t.Fatal("fresh service reports running")
	}
	if !s.Start() {
		t.Fatal("Start returned false")
	}
	if s.Start() {
		t.Error("second Start should return false")
	}
	if !s.Running() {
		t.Error("service not running after Start")
	}

	if !s.Stop() {
		t.Fatal("Stop returned false")
	}
	if s.Stop() {
		t.Error("second Stop should return false")
	}
	if s.Running() {
		t.Error("service still running after Stop")
	}

	// Restartable after a full stop.
	if !s.Start() {
		t.Error("restart failed")
	}
	s.Stop()
}

func TestNotificationService_RunsInitialCheck(t *testing.T) {
	m := testManager(t)
	overdueProject(t, m)
	list := m.ListNotifications(NotificationFilter{})
	for _, n := range list {
		m.DismissNotification(n.ID)
	}

	s := NewNotificationService(m, zerolog.Nop())
	s.Start()
	defer s.Stop()

	// The loop runs one check synchronously before its first wait, but
	// from another goroutine; Stop joins it.
	s.Stop()
	if active := m.ListNotifications(NotificationFilter{ActiveOnly: true}); len(active) == 0 {
		t.Error("background check generated nothing")
	}
}
