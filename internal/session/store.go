package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/reserveja/reserveja-cli/internal/api"
	"github.com/reserveja/reserveja-cli/internal/errors"
)

// Snapshot is the persisted session unit: written on every credential or
// user change, read once at startup.
type Snapshot struct {
	User            User       `json:"user"`
	Tokens          api.Tokens `json:"tokens"`
	ActiveCompanyID string     `json:"activeCompanyId,omitempty"`
}

// Store persists a single Snapshot under one durable key.
type Store interface {
	// Load returns the stored snapshot, or nil when none exists.
	Load() (*Snapshot, error)
	Save(snapshot *Snapshot) error
	Clear() error
}

// FileStore persists the snapshot as one JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored snapshot. A missing file is not an error; an
// unreadable one is reported as a corrupt-session error.
func (s *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read session file", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.NewSessionCorruptError(err)
	}
	return &snapshot, nil
}

// Save writes the snapshot with owner-only permissions.
func (s *FileStore) Save(snapshot *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create session directory", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to encode session", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write session file", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent file is a no-op.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to remove session file", err)
	}
	return nil
}

// MemoryStore keeps the snapshot in memory. Used by tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot *Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored snapshot, or nil.
func (s *MemoryStore) Load() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return nil, nil
	}
	cp := *s.snapshot
	return &cp, nil
}

// Save stores a copy of the snapshot.
func (s *MemoryStore) Save(snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snapshot
	s.snapshot = &cp
	return nil
}

// Clear drops the stored snapshot.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	return nil
}
