package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type session struct {
	Files []string `json:"last_session_files"`
}

// LoadSession returns the files queued in the last session.
// A missing or unreadable session file yields an empty list.
func LoadSession(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var s session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}

	return s.Files
}

// SaveSession records the currently queued files.
func SaveSession(path string, files []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(session{Files: files}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ClearSession removes the session file. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
