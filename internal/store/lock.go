package store

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by Lock when another process holds the writer lock.
var ErrLocked = errors.New("data file is locked by another writer")

// Lock takes the exclusive writer lock <file>.lock without waiting. Every
// process that mutates the data file holds it for as long as it keeps state
// in memory; a running bot holds it for its whole lifetime.
//
// Locking twice through the same Store is a no-op.
func (s *Store) Lock() error {
	if s.lock != nil {
		return nil
	}
	fl := flock.New(s.lockPath())
	ok, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("lock data file: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, fl.Path())
	}
	s.lock = fl
	s.log.Debugw("writer lock taken", "path", fl.Path())
	return nil
}

// Unlock releases the writer lock. Without a lock it does nothing.
func (s *Store) Unlock() error {
	if s.lock == nil {
		return nil
	}
	err := s.lock.Unlock()
	s.lock = nil
	return err
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}
