package usage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type memStore struct {
	users   map[int64]Record
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load() (map[int64]Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.users, nil
}

func (s *memStore) Save(users map[int64]Record) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.users = users
	return nil
}

func testLedger(t *testing.T) (*Ledger, *memStore) {
	t.Helper()
	store := &memStore{}
	ledger := NewLedger(store)
	return ledger, store
}

func TestRegister_IsIdempotent(t *testing.T) {
	ledger, _ := testLedger(t)
	ledger.now = func() time.Time { return time.Date(2026, 1, 2, 10, 30, 0, 0, time.UTC) }

	ledger.Register(1, "alice")
	first := ledger.Stats(1)
	if first.RegistrationDate != "2026-01-02 10:30" {
		t.Fatalf("unexpected registration date: %q", first.RegistrationDate)
	}

	ledger.RecordMessage(1)
	ledger.now = func() time.Time { return time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC) }
	ledger.Register(1, "alice-renamed")

	second := ledger.Stats(1)
	if second.RegistrationDate != first.RegistrationDate {
		t.Fatal("second register overwrote registration_date")
	}
	if second.MessagesSent != 1 {
		t.Fatalf("second register reset counters: %d", second.MessagesSent)
	}
	if second.Username != "alice" {
		t.Fatalf("second register overwrote username: %q", second.Username)
	}
}

func TestRecord_UnknownUserIsNoOp(t *testing.T) {
	ledger, store := testLedger(t)

	ledger.RecordMessage(99)
	ledger.RecordImage(99)

	if store.saves != 0 {
		t.Fatalf("expected no persistence for unknown user, got %d saves", store.saves)
	}
	stats := ledger.Stats(99)
	if stats.MessagesSent != 0 || stats.ImagesGenerated != 0 {
		t.Fatalf("unknown user gained counters: %+v", stats)
	}
}

func TestStats_PlaceholderForUnknownUser(t *testing.T) {
	ledger, _ := testLedger(t)

	stats := ledger.Stats(42)
	if stats.Username != UnknownUsername {
		t.Fatalf("unexpected username: %q", stats.Username)
	}
	if stats.RegistrationDate != NotRegisteredText {
		t.Fatalf("unexpected registration date: %q", stats.RegistrationDate)
	}
	if stats.LastActivity != NeverText {
		t.Fatalf("unexpected last activity: %q", stats.LastActivity)
	}
}

func TestRecord_UpdatesCountersAndActivity(t *testing.T) {
	ledger, store := testLedger(t)
	ledger.Register(1, "bob")

	ledger.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 0, 0, time.UTC) }
	ledger.RecordMessage(1)
	ledger.RecordMessage(1)
	ledger.RecordImage(1)

	stats := ledger.Stats(1)
	if stats.MessagesSent != 2 || stats.ImagesGenerated != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.LastActivity != "2026-05-06 07:08" {
		t.Fatalf("unexpected last activity: %q", stats.LastActivity)
	}
	// Every mutation persisted: register + three records.
	if store.saves != 4 {
		t.Fatalf("expected 4 saves, got %d", store.saves)
	}
}

func TestTotalStats(t *testing.T) {
	ledger, _ := testLedger(t)
	ledger.Register(1, "a")
	ledger.Register(2, "b")
	ledger.RecordMessage(1)
	ledger.RecordMessage(2)
	ledger.RecordMessage(2)
	ledger.RecordImage(1)

	totals := ledger.TotalStats()
	if totals.TotalUsers != 2 {
		t.Fatalf("expected 2 users, got %d", totals.TotalUsers)
	}
	if totals.TotalMessages != 3 {
		t.Fatalf("expected 3 messages, got %d", totals.TotalMessages)
	}
	if totals.TotalImages != 1 {
		t.Fatalf("expected 1 image, got %d", totals.TotalImages)
	}
}

func TestNewLedger_LoadFailureFallsBackToEmpty(t *testing.T) {
	ledger := NewLedger(&memStore{loadErr: errors.New("disk gone")})

	stats := ledger.Stats(1)
	if stats.Username != UnknownUsername {
		t.Fatalf("expected empty ledger, got %+v", stats)
	}
	ledger.Register(1, "carol")
	if ledger.Stats(1).Username != "carol" {
		t.Fatal("ledger unusable after load failure")
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	store := &memStore{saveErr: errors.New("readonly fs")}
	ledger := NewLedger(store)

	ledger.Register(1, "dave")
	ledger.RecordMessage(1)

	// In-memory state still advances.
	if ledger.Stats(1).MessagesSent != 1 {
		t.Fatal("in-memory state lost on save failure")
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	store := NewFileStore(path)

	users := map[int64]Record{
		100: {Username: "alice", RegistrationDate: "2026-01-01 00:00", MessagesSent: 3, LastActivity: "2026-01-02 00:00"},
		200: {Username: "bob", RegistrationDate: "2026-02-01 00:00", ImagesGenerated: 1, LastActivity: "2026-02-02 00:00"},
	}
	if err := store.Save(users); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 users, got %d", len(loaded))
	}
	if loaded[100].Username != "alice" || loaded[100].MessagesSent != 3 {
		t.Fatalf("unexpected record: %+v", loaded[100])
	}
	if loaded[200].ImagesGenerated != 1 {
		t.Fatalf("unexpected record: %+v", loaded[200])
	}
}

func TestFileStore_MissingFileLoadsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(loaded))
	}
}
