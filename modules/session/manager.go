package session

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// Session - one workflow session: its status record plus the websocket
// clients watching it
type Session struct {
	id      string
	state   *State
	manager *Manager

	mu           sync.RWMutex
	clients      map[*Client]bool
	createdAt    time.Time
	lastActivity time.Time
}

// ID - session identifier
func (s *Session) ID() string {
	return s.id
}

// State - the session's status record
func (s *Session) State() *State {
	return s.state
}

// StartProcessing - transition + fanout
func (s *Session) StartProcessing() Token {
	token := s.state.StartProcessing()
	s.publish()
	return token
}

// Succeed - transition + fanout; stale tokens are dropped
func (s *Session) Succeed(t Token, result *Result) bool {
	if !s.state.Succeed(t, result) {
		log.Printf("⏭️ Session %s: dropped stale success (token %d)", s.id, t)
		return false
	}
	s.publish()
	return true
}

// Fail - transition + fanout; stale tokens are dropped
func (s *Session) Fail(t Token, message string) bool {
	if !s.state.Fail(t, message) {
		log.Printf("⏭️ Session %s: dropped stale failure (token %d)", s.id, t)
		return false
	}
	s.publish()
	return true
}

// Reset - transition + fanout
func (s *Session) Reset() {
	s.state.Reset()
	s.publish()
}

func (s *Session) publish() {
	snap := s.state.Snapshot()

	s.mu.Lock()
	s.lastActivity = time.Now()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.trySend(snap)
	}

	if s.manager != nil && s.manager.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.manager.store.Save(ctx, s.id, snap)
	}
}

func (s *Session) addClient(c *Client) {
	s.mu.Lock()
	s.clients[c] = true
	s.lastActivity = time.Now()
	count := len(s.clients)
	s.mu.Unlock()
	log.Printf("👤 Client joined session %s (clients: %d)", s.id, count)
}

func (s *Session) removeClient(c *Client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.lastActivity = time.Now()
	remaining := len(s.clients)
	s.mu.Unlock()
	log.Printf("👋 Client left session %s (remaining: %d)", s.id, remaining)
}

// Manager - session registry with idle cleanup
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    *SnapshotStore
}

// NewManager - store may be nil (snapshot persistence disabled)
func NewManager(store *SnapshotStore) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
	}
}

// GetOrCreate - fetch the session, creating an empty record on first use
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[id]
	if !exists {
		now := time.Now()
		sess = &Session{
			id:           id,
			state:        NewState(),
			clients:      make(map[*Client]bool),
			createdAt:    now,
			lastActivity: now,
			manager:      m,
		}
		m.sessions[id] = sess
		log.Printf("✅ Created new session: %s (total: %d)", id, len(m.sessions))
	}
	sess.mu.Lock()
	sess.lastActivity = time.Now()
	sess.mu.Unlock()
	return sess
}

// Lookup - fetch without creating
func (m *Manager) Lookup(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Remove - drop a session; navigating away resets the record first
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		sess.Reset()
	}
}

// CleanupInactive - drop sessions with no clients and no recent activity
func (m *Manager) CleanupInactive(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cleaned := 0
	for id, sess := range m.sessions {
		sess.mu.RLock()
		stale := len(sess.clients) == 0 && now.Sub(sess.lastActivity) > maxIdle
		sess.mu.RUnlock()
		if stale {
			delete(m.sessions, id)
			cleaned++
		}
	}
	if cleaned > 0 {
		log.Printf("🧹 Cleaned up %d inactive sessions (remaining: %d)", cleaned, len(m.sessions))
	}
	return cleaned
}

// Mirror - when the request carries a sessionId form field, reflect the
// request lifecycle into that session so websocket watchers see it. Returns
// (nil, 0) when no session is involved.
func (m *Manager) Mirror(r *http.Request) (*Session, Token) {
	if m == nil {
		return nil, 0
	}
	sessionID := r.FormValue("sessionId")
	if sessionID == "" {
		return nil, 0
	}
	sess := m.GetOrCreate(sessionID)
	return sess, sess.StartProcessing()
}

// StartCleanupRoutine - periodic inactive-session sweep
func (m *Manager) StartCleanupRoutine(interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			m.CleanupInactive(maxIdle)
		}
	}()
	log.Printf("🔄 Started session cleanup routine (every %v, idle > %v)", interval, maxIdle)
}
