package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"embedctl/pkg/logging"
)

const configFileName = "config.json"

// ErrNotAuthenticated is returned when an operation needs a stored Config
// and none exists.
var ErrNotAuthenticated = errors.New(`not authenticated: run "embed init" or "embed auth login" first`)

// Error is a failure reading or writing local configuration state.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to %s configuration at %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Store persists the Config as one JSON file. The zero value is not usable;
// construct it with NewStore.
type Store struct {
	path string
}

// NewStore returns a Store backed by the file at path. Nothing is touched
// on disk until the first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewStoreInDir returns a Store using the standard file name inside dir.
func NewStoreInDir(dir string) *Store {
	return NewStore(filepath.Join(dir, configFileName))
}

// Path returns the location of the config file.
func (s *Store) Path() string {
	return s.path
}

// Dir returns the directory holding the config file.
func (s *Store) Dir() string {
	return filepath.Dir(s.path)
}

// Exists reports whether a config file is present, valid or not.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Get returns the stored Config. A missing, unreadable or malformed file
// yields (nil, false); problems other than absence are logged.
func (s *Store) Get() (*Config, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn("config", "Error reading config file %s: %v", s.path, err)
		}
		return nil, false
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		logging.Warn("config", "Error parsing config file %s: %v", s.path, err)
		return nil, false
	}
	return &cfg, true
}

// Save writes cfg, creating the directory on first use.
func (s *Store) Save(cfg Config) error {
	if err := os.MkdirAll(s.Dir(), 0o700); err != nil {
		return &Error{Op: "save", Path: s.path, Err: err}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &Error{Op: "save", Path: s.path, Err: err}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return &Error{Op: "save", Path: s.path, Err: err}
	}
	logging.Debug("config", "Saved configuration to %s", s.path)
	return nil
}

// Update merges p over the stored Config and saves the result.
// It fails with ErrNotAuthenticated when there is nothing to update.
func (s *Store) Update(p Patch) error {
	current, ok := s.Get()
	if !ok {
		return ErrNotAuthenticated
	}
	return s.Save(p.apply(*current))
}

// Delete removes the config file. Deleting an absent file is a no-op.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &Error{Op: "delete", Path: s.path, Err: err}
	}
	return nil
}
