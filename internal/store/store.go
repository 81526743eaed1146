package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// Mode selects how lists are scoped and which file shape Save writes.
type Mode string

const (
	// ModeShared keeps one list for everybody (current file shape).
	ModeShared Mode = "shared"
	// ModePerUser keeps one list per user (per-user file shape).
	ModePerUser Mode = "per_user"
)

// ValidModes lists the accepted Mode values.
var ValidModes = []Mode{ModeShared, ModePerUser}

// ErrPersist marks every failure to write the data file.
var ErrPersist = errors.New("persist failed")

// PersistError describes a failed save step.
type PersistError struct {
	Op   string // "encode", "write", "sync", "rename", ...
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrPersist, e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}

// Store reads and writes one JSON data file.
type Store struct {
	path string
	mode Mode
	log  *zap.SugaredLogger
	lock *flock.Flock
}

// Open binds a store to path. The parent directory is created if missing;
// the file itself is only created by the first Save.
func Open(path string, mode Mode, log *zap.SugaredLogger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open store: empty path")
	}
	if !isValidMode(mode) {
		return nil, fmt.Errorf("open store: invalid mode %q: must be one of %v", mode, ValidModes)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open store: create directory: %w", err)
		}
	}

	return &Store{path: path, mode: mode, log: log.With("component", "store")}, nil
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// Mode returns the scope mode the store was opened with.
func (s *Store) Mode() Mode {
	return s.mode
}

func (s *Store) tmpPath() string {
	return s.path + ".tmp"
}

func isValidMode(m Mode) bool {
	for _, v := range ValidModes {
		if v == m {
			return true
		}
	}
	return false
}
