package cart

import (
	"context"
	"sync"
	"time"

	"github.com/zeriouslyzen/cosmic-sub000/store"
)

// DefaultPollInterval matches the storefront's refresh cadence.
const DefaultPollInterval = 5 * time.Second

// Manager creates cart sessions lazily per user and tears them down on
// sign-out.
type Manager struct {
	store        store.Store
	pollInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*managedSession
}

// managedSession gates the initial load behind a once, so concurrent first
// accessors wait for one load instead of racing an unloaded session.
type managedSession struct {
	once sync.Once
	sess *Session
	err  error
}

func NewManager(s store.Store) *Manager {
	return &Manager{
		store:        s,
		pollInterval: DefaultPollInterval,
		sessions:     make(map[string]*managedSession),
	}
}

// SetPollInterval overrides the refresh cadence; zero disables polling.
// Takes effect for sessions created afterwards.
func (m *Manager) SetPollInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollInterval = d
}

// Session returns the user's session, creating and loading it on first
// access. Unauthenticated callers are rejected before any read or write.
func (m *Manager) Session(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrNotSignedIn
	}

	m.mu.Lock()
	entry, ok := m.sessions[userID]
	if !ok {
		entry = &managedSession{sess: NewSession(m.store, userID)}
		m.sessions[userID] = entry
	}
	interval := m.pollInterval
	m.mu.Unlock()

	entry.once.Do(func() {
		if entry.err = entry.sess.Load(ctx); entry.err != nil {
			m.mu.Lock()
			if m.sessions[userID] == entry {
				delete(m.sessions, userID)
			}
			m.mu.Unlock()
			entry.sess.Close()
			return
		}
		if interval > 0 {
			entry.sess.StartPolling(interval)
		}
	})
	if entry.err != nil {
		return nil, entry.err
	}
	return entry.sess, nil
}

// Refresh reloads the user's session if one is open. Used after writes that
// bypass the session, like checkout reconciliation.
func (m *Manager) Refresh(ctx context.Context, userID string) {
	m.mu.Lock()
	entry := m.sessions[userID]
	m.mu.Unlock()
	if entry != nil {
		_ = entry.sess.Load(ctx)
	}
}

// CloseSession tears down the user's session (sign-out).
func (m *Manager) CloseSession(userID string) {
	m.mu.Lock()
	entry := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if entry != nil {
		entry.sess.Close()
	}
}

// Close tears down every open session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()
	for _, entry := range sessions {
		entry.sess.Close()
	}
}
