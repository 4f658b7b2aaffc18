package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// FileStore persists the user map as a JSON file, rewriting the whole file
// on every save. Keys are string-encoded user ids (JSON object keys).
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full user map. A missing file yields an empty map.
func (s *FileStore) Load() (map[int64]Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[int64]Record), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read usage file %s: %w", s.path, err)
	}

	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse usage file %s: %w", s.path, err)
	}

	users := make(map[int64]Record, len(raw))
	for key, rec := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		users[id] = rec
	}
	return users, nil
}

// Save rewrites the full user map.
func (s *FileStore) Save(users map[int64]Record) error {
	raw := make(map[string]Record, len(users))
	for id, rec := range users {
		raw[strconv.FormatInt(id, 10)] = rec
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal usage data: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write usage file %s: %w", s.path, err)
	}
	return nil
}
