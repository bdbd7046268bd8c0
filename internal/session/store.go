package session

import (
	"sync"
	"time"

	"telegram_booking_assistant/pkg/metrics"
)

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation history
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store owns the ordered message history of every active session, keyed by
// the transport-assigned user identifier. Nothing outside this package holds
// turns after a session ends.
type Store struct {
	sessions   map[int64][]Turn
	lastActive map[int64]time.Time
	mu         sync.RWMutex

	maxTurns int
	ttl      time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// DefaultMaxTurns bounds per-session memory. The oldest turns are evicted
// first, so extraction always sees the most recent exchange.
const DefaultMaxTurns = 200

// NewStore creates a session store. maxTurns <= 0 falls back to
// DefaultMaxTurns; ttl <= 0 disables idle expiry.
func NewStore(maxTurns int, ttl time.Duration) *Store {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	return &Store{
		sessions:   make(map[int64][]Turn),
		lastActive: make(map[int64]time.Time),
		maxTurns:   maxTurns,
		ttl:        ttl,
		done:       make(chan struct{}),
	}
}

// Append adds one turn to the user's history, creating the session if absent
func (s *Store) Append(userID int64, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[userID], Turn{Role: role, Content: content})
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.sessions[userID] = turns
	s.lastActive[userID] = time.Now()

	metrics.SetActiveSessions(float64(len(s.sessions)))
}

// History returns a copy of the user's ordered history, empty if none
func (s *Store) History(userID int64) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[userID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// End removes all state for the user. Idempotent: ending twice or ending an
// unknown user is a no-op.
func (s *Store) End(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	delete(s.lastActive, userID)

	metrics.SetActiveSessions(float64(len(s.sessions)))
}

// Len returns the number of turns in the user's history
func (s *Store) Len(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[userID])
}

// ActiveCount returns the number of live sessions
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper runs a background loop that discards sessions idle for longer
// than the TTL. An abandoned conversation is not a booking attempt, so no
// extraction runs for expired sessions.
func (s *Store) StartSweeper(interval time.Duration) {
	if s.ttl <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// sweep removes idle sessions
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	for userID, last := range s.lastActive {
		if last.Before(cutoff) {
			delete(s.sessions, userID)
			delete(s.lastActive, userID)
			metrics.RecordSessionEnd("expired")
		}
	}

	metrics.SetActiveSessions(float64(len(s.sessions)))
}

// Stop terminates the sweeper
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}
