package usage

import (
	"log"
	"sync"
	"time"
)

// timeLayout is how registration and activity timestamps are stored.
const timeLayout = "2006-01-02 15:04"

// Placeholder values returned for unknown users.
const (
	UnknownUsername   = "Unknown"
	NotRegisteredText = "Not registered"
	NeverText         = "Never"
)

// Record holds per-user counters and timestamps.
type Record struct {
	Username         string `json:"username"`
	RegistrationDate string `json:"registration_date"`
	MessagesSent     int    `json:"messages_sent"`
	ImagesGenerated  int    `json:"images_generated"`
	LastActivity     string `json:"last_activity"`
}

// Totals aggregates counters across all users.
type Totals struct {
	TotalUsers    int
	TotalMessages int
	TotalImages   int
}

// Store persists the full user map. Load is called once on startup; Save
// rewrites the whole store after every mutation.
type Store interface {
	Load() (map[int64]Record, error)
	Save(users map[int64]Record) error
}

// Ledger tracks per-user usage, persisting through a Store best-effort:
// load failures fall back to an empty map, save failures are logged and
// swallowed.
type Ledger struct {
	mu    sync.Mutex
	users map[int64]Record
	store Store
	now   func() time.Time
}

// NewLedger creates a Ledger backed by store.
func NewLedger(store Store) *Ledger {
	users, err := store.Load()
	if err != nil {
		log.Printf("usage store load failed, starting empty: %v", err)
		users = nil
	}
	if users == nil {
		users = make(map[int64]Record)
	}
	return &Ledger{users: users, store: store, now: time.Now}
}

// Register creates a record for the user if absent. Calling it again for a
// known user changes nothing.
func (l *Ledger) Register(userID int64, username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.users[userID]; ok {
		return
	}
	now := l.now().Format(timeLayout)
	l.users[userID] = Record{
		Username:         username,
		RegistrationDate: now,
		LastActivity:     now,
	}
	l.saveLocked()
}

// RecordMessage increments the chat counter for a registered user.
// Unknown users are ignored.
func (l *Ledger) RecordMessage(userID int64) {
	l.bump(userID, func(r *Record) { r.MessagesSent++ })
}

// RecordImage increments the image counter for a registered user.
// Unknown users are ignored.
func (l *Ledger) RecordImage(userID int64) {
	l.bump(userID, func(r *Record) { r.ImagesGenerated++ })
}

// Stats returns a copy of the user's record, or a placeholder record with
// zeroed counters for an unknown user.
func (l *Ledger) Stats(userID int64) Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.users[userID]; ok {
		return rec
	}
	return Record{
		Username:         UnknownUsername,
		RegistrationDate: NotRegisteredText,
		LastActivity:     NeverText,
	}
}

// TotalStats aggregates counters across all registered users.
func (l *Ledger) TotalStats() Totals {
	l.mu.Lock()
	defer l.mu.Unlock()
	totals := Totals{TotalUsers: len(l.users)}
	for _, rec := range l.users {
		totals.TotalMessages += rec.MessagesSent
		totals.TotalImages += rec.ImagesGenerated
	}
	return totals
}

func (l *Ledger) bump(userID int64, update func(*Record)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.users[userID]
	if !ok {
		return
	}
	update(&rec)
	rec.LastActivity = l.now().Format(timeLayout)
	l.users[userID] = rec
	l.saveLocked()
}

func (l *Ledger) saveLocked() {
	snapshot := make(map[int64]Record, len(l.users))
	for id, rec := range l.users {
		snapshot[id] = rec
	}
	if err := l.store.Save(snapshot); err != nil {
		log.Printf("usage store save failed: %v", err)
	}
}
