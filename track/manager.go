package track

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Manager keys live trackers by session ID and evicts idle ones. It is the
// only place trackers are created, so every session gets the same
// configuration and handler wiring.
type Manager struct {
	cfg     config.TrackerConfig
	handler EventHandler
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Tracker
	closed   bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a session manager.
func NewManager(cfg config.TrackerConfig, handler EventHandler, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		handler:  handler,
		logger:   logger.With(zap.String("component", "track_manager")),
		sessions: make(map[string]*Tracker),
	}
}

// Start launches the idle-eviction sweep.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.evictLoop(ctx)
}

func (m *Manager) evictLoop(ctx context.Context) {
	defer close(m.done)

	interval := m.cfg.SessionIdleTimeout / 4
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

func (m *Manager) evictIdle(now time.Time) {
	m.mu.Lock()
	var idle []*Tracker
	for id, tr := range m.sessions {
		if now.Sub(tr.LastActivity()) > m.cfg.SessionIdleTimeout {
			idle = append(idle, tr)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, tr := range idle {
		tr.Close()
		m.logger.Info("idle session evicted", zap.String("session", tr.ID()))
	}
}

// GetOrCreate returns the tracker for the session, creating and starting
// one when absent.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) *Tracker {
	m.mu.RLock()
	tr, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return tr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if tr, ok := m.sessions[sessionID]; ok {
		return tr
	}
	if m.closed {
		return nil
	}

	tr = NewTracker(sessionID, m.cfg, m.handler, m.logger)
	tr.Start(ctx)
	m.sessions[sessionID] = tr
	m.logger.Info("session created", zap.String("session", sessionID))
	return tr
}

// Broadcast offers an external sample to every live tracker. The gaze
// source is daemon-wide and has no session affinity, so all sessions see
// its samples; each tracker arbitrates against its own pointer stream.
func (m *Manager) Broadcast(p types.AttentionPoint) {
	m.mu.RLock()
	trackers := make([]*Tracker, 0, len(m.sessions))
	for _, tr := range m.sessions {
		trackers = append(trackers, tr)
	}
	m.mu.RUnlock()

	for _, tr := range trackers {
		tr.OfferSample(p)
	}
}

// Get returns the tracker for the session, or nil.
func (m *Manager) Get(sessionID string) *Tracker {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionID]
}

// CloseSession closes and removes one session.
func (m *Manager) CloseSession(sessionID string) {
	m.mu.Lock()
	tr, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if ok {
		tr.Close()
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the eviction sweep and closes every tracker.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	trackers := make([]*Tracker, 0, len(m.sessions))
	for id, tr := range m.sessions {
		trackers = append(trackers, tr)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	for _, tr := range trackers {
		tr.Close()
	}
}
