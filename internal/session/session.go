// Package session tracks the per-user conversational state of the
// registration dialogue. State is process-local and intentionally not
// persisted: a restart drops everyone back to Idle, which is safe because
// registration is guarded by the registry check.
package session

import "sync"

// State is the position of one user inside the registration dialogue.
type State int

const (
	// Idle means no dialogue is in progress.
	Idle State = iota
	// AwaitingUsername means the bot asked for a desired username and the
	// next text message from this user is treated as the answer.
	AwaitingUsername
)

// Store maps Telegram user IDs to their dialogue state. Safe for concurrent
// use across users.
type Store struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

// Get returns the current state for a user, Idle if none was recorded.
func (s *Store) Get(userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID]
}

// Set records the state for a user.
func (s *Store) Set(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == Idle {
		delete(s.states, userID)
		return
	}
	s.states[userID] = state
}

// Clear resets a user back to Idle.
func (s *Store) Clear(userID int64) {
	s.Set(userID, Idle)
}
