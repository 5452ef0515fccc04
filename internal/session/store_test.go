package session

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/session.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragma_JournalMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	// NORMAL = 1
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
}

func TestMigrateToV1_FoldsLegacyKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO session_kv (key, value, updated_at) VALUES
		('currentPunch', '{"id":"p1","username":"alice","status":"PENDING"}', '2025-01-01T00:00:00Z'),
		('userData', '{"id":"alice"}', '2025-01-01T00:00:00Z'),
		('user_name', 'Admin', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rec, ok, err := s.ReadCachedPunch(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", rec.ID)

	id, ok, err := s.User(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", id.ID)

	name, err := s.AdminName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Admin", name)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM session_kv WHERE key IN ('currentPunch','userData','user_name')`).Scan(&n))
	assert.Zero(t, n)
}
