package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultSessionIdle = 30 * time.Minute

// SessionRegistry owns the live booking workflows of this process, one per session id.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Workflow
	deps     Dependencies
	idle     time.Duration
	logger   *zap.Logger
}

// NewSessionRegistry creates workflows with deps. Sessions untouched for idle are swept.
func NewSessionRegistry(deps Dependencies, idle time.Duration) *SessionRegistry {
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	return &SessionRegistry{
		sessions: make(map[string]*Workflow),
		deps:     deps,
		idle:     idle,
		logger:   deps.Logger,
	}
}

// Start opens a new booking session for userID.
func (r *SessionRegistry) Start(userID, category string) *Workflow {
	id := uuid.NewString()
	w := NewWorkflow(id, userID, category, r.deps)

	r.mu.Lock()
	r.sessions[id] = w
	r.mu.Unlock()

	r.logger.Info("Booking session started", zap.String("sessionID", id), zap.String("userID", userID))
	return w
}

// Get returns the session if it exists and belongs to userID.
func (r *SessionRegistry) Get(id, userID string) (*Workflow, error) {
	r.mu.RLock()
	w, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || w.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return w, nil
}

// Close cancels and forgets a session.
func (r *SessionRegistry) Close(id, userID string) error {
	w, err := r.Get(id, userID)
	if err != nil {
		return err
	}
	w.Cancel()

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Sweep closes sessions idle for longer than the registry's limit. Sessions still
// waiting on a stylist are kept until their timers resolve.
func (r *SessionRegistry) Sweep() int {
	now := r.deps.Clock.Now()

	r.mu.Lock()
	var stale []*Workflow
	for id, w := range r.sessions {
		if w.AwaitingConfirmation() || now.Sub(w.LastActive()) < r.idle {
			continue
		}
		stale = append(stale, w)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.Cancel()
	}
	if len(stale) > 0 {
		r.logger.Info("Swept idle booking sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll cancels every session, releasing all timers and subscriptions.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Workflow)
	r.mu.Unlock()

	for _, w := range all {
		w.Cancel()
	}
	r.logger.Info("Booking sessions closed", zap.Int("count", len(all)))
}

// Len is the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
