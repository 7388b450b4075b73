package booking

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	SoftConfirmWindow = 5 * time.Minute
	GraceWindow       = 5 * time.Minute
)

// ConfirmationState is the state of one pending appointment's confirmation timers.
type ConfirmationState string

const (
	AwaitingSoftConfirm   ConfirmationState = "awaiting_soft_confirm"
	AwaitingHardConfirm   ConfirmationState = "awaiting_hard_confirm"
	Confirmed             ConfirmationState = "confirmed"
	Expired               ConfirmationState = "expired"
	ConfirmationCancelled ConfirmationState = "cancelled"
)

// Live reports whether timers may still fire for this state.
func (s ConfirmationState) Live() bool {
	return s == AwaitingSoftConfirm || s == AwaitingHardConfirm
}

// ConfirmationTimer is a snapshot of one appointment's confirmation progress.
type ConfirmationTimer struct {
	AppointmentID string            `json:"appointmentId"`
	SoftDeadline  time.Time         `json:"softDeadline"`
	HardDeadline  time.Time         `json:"hardDeadline"`
	State         ConfirmationState `json:"state"`
}

type confirmation struct {
	ConfirmationTimer
	timer Timer
}

// ConfirmationProtocol supervises the soft and grace windows of submitted appointments.
// A confirmation and a timer can race; whichever takes the lock first wins and the
// other finds a state it does not expect and does nothing.
type ConfirmationProtocol struct {
	mu           sync.Mutex
	clock        Clock
	logger       *zap.Logger
	entries      map[string]*confirmation
	onTransition func(ConfirmationTimer)
}

// NewConfirmationProtocol creates a protocol. onTransition receives every state change
// caused by a timer or a confirmation and is called without the protocol lock held.
func NewConfirmationProtocol(clock Clock, logger *zap.Logger, onTransition func(ConfirmationTimer)) *ConfirmationProtocol {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if onTransition == nil {
		onTransition = func(ConfirmationTimer) {}
	}
	return &ConfirmationProtocol{
		clock:        clock,
		logger:       logger,
		entries:      make(map[string]*confirmation),
		onTransition: onTransition,
	}
}

// Start arms the soft window for appointmentID. A second Start while timers are live
// returns ErrConfirmationInProgress and leaves the running pair alone.
func (p *ConfirmationProtocol) Start(appointmentID string) (ConfirmationTimer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.entries[appointmentID]; ok && c.State.Live() {
		return c.ConfirmationTimer, ErrConfirmationInProgress
	}

	now := p.clock.Now()
	c := &confirmation{ConfirmationTimer: ConfirmationTimer{
		AppointmentID: appointmentID,
		SoftDeadline:  now.Add(SoftConfirmWindow),
		HardDeadline:  now.Add(SoftConfirmWindow + GraceWindow),
		State:         AwaitingSoftConfirm,
	}}
	p.entries[appointmentID] = c
	c.timer = p.clock.AfterFunc(SoftConfirmWindow, func() { p.elapse(c, AwaitingSoftConfirm) })

	p.logger.Info("Confirmation timers started",
		zap.String("appointmentID", appointmentID),
		zap.Time("softDeadline", c.SoftDeadline),
		zap.Time("hardDeadline", c.HardDeadline))
	return c.ConfirmationTimer, nil
}

func (p *ConfirmationProtocol) elapse(c *confirmation, expected ConfirmationState) {
	p.mu.Lock()
	if p.entries[c.AppointmentID] != c || c.State != expected {
		p.mu.Unlock()
		return
	}
	switch expected {
	case AwaitingSoftConfirm:
		c.State = AwaitingHardConfirm
		c.timer = p.clock.AfterFunc(GraceWindow, func() { p.elapse(c, AwaitingHardConfirm) })
		p.logger.Info("Soft confirmation window elapsed", zap.String("appointmentID", c.AppointmentID))
	case AwaitingHardConfirm:
		c.State = Expired
		c.timer = nil
		p.logger.Warn("Appointment request expired", zap.String("appointmentID", c.AppointmentID))
	}
	snap := c.ConfirmationTimer
	p.mu.Unlock()

	p.onTransition(snap)
}

// Confirm moves a live appointment to Confirmed and stops its timers.
// It reports false when the appointment is unknown or already resolved.
func (p *ConfirmationProtocol) Confirm(appointmentID string) bool {
	p.mu.Lock()
	c, ok := p.entries[appointmentID]
	if !ok || !c.State.Live() {
		p.mu.Unlock()
		p.logger.Debug("Ignoring confirmation", zap.String("appointmentID", appointmentID), zap.Bool("known", ok))
		return false
	}
	p.stop(c)
	c.State = Confirmed
	snap := c.ConfirmationTimer
	p.mu.Unlock()

	p.logger.Info("Appointment confirmed", zap.String("appointmentID", appointmentID))
	p.onTransition(snap)
	return true
}

// Cancel stops the timers of a live appointment without notifying.
func (p *ConfirmationProtocol) Cancel(appointmentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.entries[appointmentID]
	if !ok || !c.State.Live() {
		return false
	}
	p.stop(c)
	c.State = ConfirmationCancelled
	return true
}

// CancelAll stops every live timer pair. It returns how many were cancelled.
func (p *ConfirmationProtocol) CancelAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.entries {
		if c.State.Live() {
			p.stop(c)
			c.State = ConfirmationCancelled
			n++
		}
	}
	return n
}

// Get returns the current snapshot for appointmentID.
func (p *ConfirmationProtocol) Get(appointmentID string) (ConfirmationTimer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.entries[appointmentID]
	if !ok {
		return ConfirmationTimer{}, false
	}
	return c.ConfirmationTimer, true
}

// HasLive reports whether any appointment still has running timers.
func (p *ConfirmationProtocol) HasLive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.entries {
		if c.State.Live() {
			return true
		}
	}
	return false
}

func (p *ConfirmationProtocol) stop(c *confirmation) {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
