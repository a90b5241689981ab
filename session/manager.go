package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Session is one user's coordinator plus bookkeeping.
type Session struct {
	ID          string
	Coordinator *Coordinator
	Created     time.Time

	lastSeen time.Time
}

// Manager holds the live sessions over one shared dataset.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ds       *engine.Dataset
	opts     []Option
	idle     time.Duration
	now      func() time.Time
	base     logging.Logger
	logger   logging.Logger
}

// NewManager creates a manager. Sessions idle longer than idle are removed
// by Sweep; idle <= 0 disables expiry.
func NewManager(ds *engine.Dataset, idle time.Duration, logger logging.Logger, opts ...Option) *Manager {
	logger = logging.OrDefault(logger)
	return &Manager{
		sessions: make(map[string]*Session),
		ds:       ds,
		opts:     opts,
		idle:     idle,
		now:      time.Now,
		base:     logger,
		logger:   logger.Named("sessions"),
	}
}

// Dataset returns the shared dataset.
func (m *Manager) Dataset() *engine.Dataset { return m.ds }

// Create starts a new session with a fresh coordinator.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	opts := make([]Option, 0, len(m.opts)+1)
	opts = append(opts, m.opts...)
	opts = append(opts, WithLogger(m.base.With(logging.String("session", id))))

	coord, err := New(ctx, m.ds, opts...)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{ID: id, Coordinator: coord, Created: now, lastSeen: now}

	m.mu.Lock()
	m.sessions[id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created", logging.String("session", id), logging.Int("live", n))
	return s, nil
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s, nil
}

// Delete ends a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes idle sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	removed := 0
	for id, s := range m.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()

	if removed > 0 {
		m.logger.Info("idle sessions removed", logging.Int("removed", removed))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
