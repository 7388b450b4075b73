package booking

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type transitionLog struct {
	mu     sync.Mutex
	states []ConfirmationState
}

func (l *transitionLog) record(t ConfirmationTimer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, t.State)
}

func (l *transitionLog) get() []ConfirmationState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ConfirmationState(nil), l.states...)
}

func newTestProtocol() (*ConfirmationProtocol, *fakeClock, *transitionLog) {
	clock := newFakeClock(frozenNow)
	log := &transitionLog{}
	return NewConfirmationProtocol(clock, nil, log.record), clock, log
}

func TestConfirmationFullExpiryPath(t *testing.T) {
	p, clock, log := newTestProtocol()

	timer, err := p.Start("appt-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !timer.SoftDeadline.Equal(frozenNow.Add(5*time.Minute)) || !timer.HardDeadline.Equal(frozenNow.Add(10*time.Minute)) {
		t.Fatalf("deadlines = %v / %v", timer.SoftDeadline, timer.HardDeadline)
	}

	clock.Advance(4*time.Minute + 59*time.Second)
	if got, _ := p.Get("appt-1"); got.State != AwaitingSoftConfirm {
		t.Fatalf("before soft deadline state = %s", got.State)
	}

	clock.Advance(time.Second)
	if got, _ := p.Get("appt-1"); got.State != AwaitingHardConfirm {
		t.Fatalf("at t=5m state = %s", got.State)
	}

	clock.Advance(5 * time.Minute)
	if got, _ := p.Get("appt-1"); got.State != Expired {
		t.Fatalf("at t=10m state = %s", got.State)
	}

	clock.Advance(time.Hour)
	want := []ConfirmationState{AwaitingHardConfirm, Expired}
	if got := log.get(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	if clock.pending() != 0 {
		t.Fatalf("%d timers still pending", clock.pending())
	}
}

func TestConfirmationBeforeSoftDeadline(t *testing.T) {
	p, clock, log := newTestProtocol()
	if _, err := p.Start("appt-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	clock.Advance(4 * time.Minute)
	if !p.Confirm("appt-1") {
		t.Fatalf("Confirm returned false for a live appointment")
	}
	if clock.pending() != 0 {
		t.Fatalf("timers not cancelled: %d pending", clock.pending())
	}

	// A timer that lost the race to Stop must still be inert.
	clock.fireStopped()
	clock.Advance(20 * time.Minute)

	if p.Confirm("appt-1") {
		t.Fatalf("second Confirm should be a no-op")
	}
	if got := log.get(); len(got) != 1 || got[0] != Confirmed {
		t.Fatalf("transitions = %v, want [confirmed]", got)
	}
	if got, _ := p.Get("appt-1"); got.State != Confirmed {
		t.Fatalf("state = %s", got.State)
	}
}

func TestConfirmationDuringGraceWindow(t *testing.T) {
	p, clock, log := newTestProtocol()
	p.Start("appt-1")
	clock.Advance(7 * time.Minute)
	if !p.Confirm("appt-1") {
		t.Fatalf("Confirm during grace window failed")
	}
	clock.fireStopped()
	clock.Advance(10 * time.Minute)
	got := log.get()
	if len(got) != 2 || got[0] != AwaitingHardConfirm || got[1] != Confirmed {
		t.Fatalf("transitions = %v", got)
	}
}

func TestConfirmationAfterExpiryIgnored(t *testing.T) {
	p, clock, log := newTestProtocol()
	p.Start("appt-1")
	clock.Advance(10 * time.Minute)
	if p.Confirm("appt-1") {
		t.Fatalf("Confirm after expiry should be ignored")
	}
	if got := log.get(); got[len(got)-1] != Expired {
		t.Fatalf("transitions = %v", got)
	}
}

func TestConfirmationStartRejectsDuplicate(t *testing.T) {
	p, clock, _ := newTestProtocol()
	if _, err := p.Start("appt-1"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := p.Start("appt-1"); !errors.Is(err, ErrConfirmationInProgress) {
		t.Fatalf("second Start err = %v, want ErrConfirmationInProgress", err)
	}
	if clock.pending() != 1 {
		t.Fatalf("duplicate Start armed extra timers: %d pending", clock.pending())
	}
}

func TestConfirmationCancelAll(t *testing.T) {
	p, clock, log := newTestProtocol()
	p.Start("appt-1")
	p.Start("appt-2")
	if n := p.CancelAll(); n != 2 {
		t.Fatalf("CancelAll = %d, want 2", n)
	}
	clock.fireStopped()
	clock.Advance(time.Hour)
	if got := log.get(); len(got) != 0 {
		t.Fatalf("cancelled protocol emitted %v", got)
	}
	if p.HasLive() {
		t.Fatalf("HasLive after CancelAll")
	}
	if p.Cancel("appt-1") {
		t.Fatalf("Cancel of a cancelled appointment should report false")
	}
}
