package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"beautycita/models"
)

func newTestRegistry(status string) (*SessionRegistry, *testEnv) {
	_, env := newTestWorkflow(status)
	r := NewSessionRegistry(Dependencies{
		Search:        env.search,
		Appointments:  env.creator,
		Confirmations: env.channel,
		Notifier:      env.notifier,
		Clock:         env.clock,
	}, 30*time.Minute)
	return r, env
}

func TestSessionRegistryOwnership(t *testing.T) {
	r, _ := newTestRegistry(models.AppointmentConfirmed)
	w := r.Start("client-1", "nails")

	got, err := r.Get(w.ID(), "client-1")
	if err != nil || got != w {
		t.Fatalf("Get owner = %v, %v", got, err)
	}
	if got.Snapshot().Draft.Category != "nails" {
		t.Fatalf("category not pre-seeded")
	}
	if _, err := r.Get(w.ID(), "client-2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Get other user err = %v", err)
	}
	if err := r.Close(w.ID(), "client-2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Close other user err = %v", err)
	}
	mustNil(t, r.Close(w.ID(), "client-1"))
	if r.Len() != 0 || !w.Snapshot().Closed {
		t.Fatalf("Close did not cancel and remove the session")
	}
}

func TestSessionRegistrySweep(t *testing.T) {
	r, env := newTestRegistry(models.AppointmentPending)
	idle := r.Start("client-1", "")
	pending := r.Start("client-2", "")
	driveToConfirming(t, pending)
	mustNil(t, pending.Advance(context.Background()))

	env.clock.Advance(31 * time.Minute)
	// Timers for the pending session have expired by now, so both go.
	if n := r.Sweep(); n != 2 {
		t.Fatalf("Sweep = %d, want 2", n)
	}
	if !idle.Snapshot().Closed {
		t.Fatalf("idle session not cancelled")
	}
}

func TestSessionRegistryKeepsAwaitingSessions(t *testing.T) {
	r, env := newTestRegistry(models.AppointmentPending)
	w := r.Start("client-1", "")
	driveToConfirming(t, w)
	mustNil(t, w.Advance(context.Background()))

	env.clock.Advance(3 * time.Minute)
	r.idle = time.Minute
	if n := r.Sweep(); n != 0 {
		t.Fatalf("Sweep removed a session awaiting confirmation")
	}

	r.CloseAll()
	if r.Len() != 0 || w.AwaitingConfirmation() || env.clock.pending() != 0 {
		t.Fatalf("CloseAll left state behind")
	}
}
