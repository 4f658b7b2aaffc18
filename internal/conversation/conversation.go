package conversation

// Turn roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a dialogue, tagged with its speaker role.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store holds per-user conversation history.
//
// Invariants for every user: the first turn, if any, has role system and is
// never evicted; total length never exceeds the configured cap.
type Store interface {
	// GetOrCreate returns a copy of the user's turns, seeding a fresh
	// conversation with the system turn on first access.
	GetOrCreate(userID int64) []Turn
	// Append adds a turn, evicting the oldest non-system turns when the
	// cap would be exceeded.
	Append(userID int64, role, content string)
	// Reset replaces the conversation with a single system turn.
	Reset(userID int64)
	// Length returns the number of non-system turns.
	Length(userID int64) int
}
