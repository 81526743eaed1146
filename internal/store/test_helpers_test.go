package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// createTestStore opens a store on a fresh temp path.
func createTestStore(t *testing.T, mode Mode) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data.json"), mode, nil)
	require.NoError(t, err)
	return s
}

// createObservedStore opens a store whose log output can be inspected.
func createObservedStore(t *testing.T, mode Mode) (*Store, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := Open(filepath.Join(t.TempDir(), "data.json"), mode, zap.New(core).Sugar())
	require.NoError(t, err)
	return s, logs
}

// writeDataFile puts raw content at the store's path.
func writeDataFile(t *testing.T, s *Store, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))
}
