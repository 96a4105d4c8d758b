package runs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// HistoryFile represents the persisted run history
type HistoryFile struct {
	Runs []*Record `json:"runs"`
}

// Store handles JSON persistence of run records
type Store struct {
	filePath string
}

// NewStore creates a new store for the given file path
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Path returns the history file path.
func (s *Store) Path() string {
	return s.filePath
}

// Save persists records to the JSON file
func (s *Store) Save(records []*Record) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(HistoryFile{Runs: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("failed to replace history file: %w", err)
	}

	return nil
}

// Load loads records from the JSON file
func (s *Store) Load() ([]*Record, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var file HistoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return file.Runs, nil
}
