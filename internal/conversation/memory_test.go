package conversation

import (
	"fmt"
	"testing"
)

func TestGetOrCreate_SeedsSystemTurn(t *testing.T) {
	store := NewMemoryStore("be helpful", 20)

	turns := store.GetOrCreate(7)
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Role != RoleSystem || turns[0].Content != "be helpful" {
		t.Fatalf("unexpected seed turn: %+v", turns[0])
	}
	if store.Length(7) != 0 {
		t.Fatalf("expected 0 non-system turns, got %d", store.Length(7))
	}
}

func TestGetOrCreate_ReturnsCopy(t *testing.T) {
	store := NewMemoryStore("sys", 20)
	store.Append(7, RoleUser, "hello")

	turns := store.GetOrCreate(7)
	turns[1].Content = "mutated"

	again := store.GetOrCreate(7)
	if again[1].Content != "hello" {
		t.Fatalf("store state leaked through returned slice: %q", again[1].Content)
	}
}

func TestAppend_EnforcesCapKeepingSystemTurn(t *testing.T) {
	const maxTurns = 6
	store := NewMemoryStore("sys", maxTurns)

	for i := 0; i < 20; i++ {
		store.Append(1, RoleUser, fmt.Sprintf("msg-%d", i))
	}

	turns := store.GetOrCreate(1)
	if len(turns) != maxTurns {
		t.Fatalf("expected %d turns, got %d", maxTurns, len(turns))
	}
	if turns[0].Role != RoleSystem {
		t.Fatalf("expected system turn first, got %q", turns[0].Role)
	}
	// Trailing maxTurns-1 entries are the most recent appends, in order.
	for i := 1; i < maxTurns; i++ {
		want := fmt.Sprintf("msg-%d", 20-maxTurns+i)
		if turns[i].Content != want {
			t.Errorf("turn %d: expected %q, got %q", i, want, turns[i].Content)
		}
	}
}

func TestAppend_NoEvictionBelowCap(t *testing.T) {
	store := NewMemoryStore("sys", 20)
	store.Append(1, RoleUser, "a")
	store.Append(1, RoleAssistant, "b")

	turns := store.GetOrCreate(1)
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[1].Content != "a" || turns[2].Content != "b" {
		t.Fatalf("unexpected order: %+v", turns)
	}
}

func TestReset_YieldsSingleSystemTurn(t *testing.T) {
	store := NewMemoryStore("sys", 20)
	for i := 0; i < 10; i++ {
		store.Append(1, RoleUser, "x")
	}

	store.Reset(1)

	turns := store.GetOrCreate(1)
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn after reset, got %d", len(turns))
	}
	if turns[0].Role != RoleSystem || turns[0].Content != "sys" {
		t.Fatalf("unexpected turn after reset: %+v", turns[0])
	}
}

func TestLength_CountsNonSystemTurns(t *testing.T) {
	store := NewMemoryStore("sys", 20)
	store.Append(1, RoleUser, "a")
	store.Append(1, RoleAssistant, "b")
	store.Append(1, RoleUser, "c")

	if got := store.Length(1); got != 3 {
		t.Fatalf("expected length 3, got %d", got)
	}
	if got := store.Length(2); got != 0 {
		t.Fatalf("expected length 0 for fresh user, got %d", got)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	store := NewMemoryStore("sys", 20)
	store.Append(1, RoleUser, "one")
	store.Append(2, RoleUser, "two")

	if got := store.GetOrCreate(1)[1].Content; got != "one" {
		t.Fatalf("user 1 history polluted: %q", got)
	}
	if got := store.GetOrCreate(2)[1].Content; got != "two" {
		t.Fatalf("user 2 history polluted: %q", got)
	}
}
