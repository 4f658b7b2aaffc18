package conversation

import "sync"

// MemoryStore is an in-memory Store keyed by user id.
//
// The router processes updates sequentially, but the store is guarded anyway
// so alternative transports can call it from multiple goroutines.
type MemoryStore struct {
	mu           sync.Mutex
	systemPrompt string
	maxTurns     int
	histories    map[int64][]Turn
}

// NewMemoryStore creates a store seeding new conversations with systemPrompt
// and capping each history at maxTurns entries (system turn included).
func NewMemoryStore(systemPrompt string, maxTurns int) *MemoryStore {
	return &MemoryStore{
		systemPrompt: systemPrompt,
		maxTurns:     maxTurns,
		histories:    make(map[int64][]Turn),
	}
}

// GetOrCreate returns a copy of the user's turns, creating the conversation
// with its system turn on first access.
func (s *MemoryStore) GetOrCreate(userID int64) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.getOrCreateLocked(userID)
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}

// Append adds a turn for the user. When the cap would be exceeded, the system
// turn is kept and the oldest user/assistant turns are dropped first.
func (s *MemoryStore) Append(userID int64, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.getOrCreateLocked(userID), Turn{Role: role, Content: content})

	if s.maxTurns > 0 && len(history) > s.maxTurns {
		systemTurn := history[0]
		recent := history[len(history)-(s.maxTurns-1):]
		trimmed := make([]Turn, 0, s.maxTurns)
		trimmed = append(trimmed, systemTurn)
		trimmed = append(trimmed, recent...)
		history = trimmed
	}
	s.histories[userID] = history
}

// Reset replaces the user's conversation with a fresh single-system-turn one.
func (s *MemoryStore) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[userID] = []Turn{{Role: RoleSystem, Content: s.systemPrompt}}
}

// Length returns the number of non-system turns for the user.
func (s *MemoryStore) Length(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.getOrCreateLocked(userID)) - 1
}

func (s *MemoryStore) getOrCreateLocked(userID int64) []Turn {
	history, ok := s.histories[userID]
	if !ok {
		history = []Turn{{Role: RoleSystem, Content: s.systemPrompt}}
		s.histories[userID] = history
	}
	return history
}
