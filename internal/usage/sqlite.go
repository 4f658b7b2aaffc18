package usage

import (
	"database/sql"
	"fmt"
)

// SQLiteStore persists the user map in a users table, rewriting the table in
// a single transaction on every save. It mirrors FileStore semantics behind
// the same interface.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore on an opened database with the users
// table already created.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the full user map.
func (s *SQLiteStore) Load() (map[int64]Record, error) {
	rows, err := s.db.Query(
		`SELECT user_id, username, registration_date, messages_sent, images_generated, last_activity FROM users`,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make(map[int64]Record)
	for rows.Next() {
		var id int64
		var rec Record
		if err := rows.Scan(
			&id, &rec.Username, &rec.RegistrationDate,
			&rec.MessagesSent, &rec.ImagesGenerated, &rec.LastActivity,
		); err != nil {
			continue
		}
		users[id] = rec
	}
	return users, rows.Err()
}

// Save rewrites the users table from the given map.
func (s *SQLiteStore) Save(users map[int64]Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin users rewrite: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	for id, rec := range users {
		_, err := tx.Exec(
			`INSERT INTO users (user_id, username, registration_date, messages_sent, images_generated, last_activity)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, rec.Username, rec.RegistrationDate, rec.MessagesSent, rec.ImagesGenerated, rec.LastActivity,
		)
		if err != nil {
			return fmt.Errorf("insert user %d: %w", id, err)
		}
	}
	return tx.Commit()
}
