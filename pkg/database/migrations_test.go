package database

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sqlFile(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content)}
}

func TestMigrator_Apply(t *testing.T) {
	db := testDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"002_add_notes.sql":     sqlFile("ALTER TABLE widgets ADD COLUMN notes TEXT;"),
		"001_create_widget.sql": sqlFile("CREATE TABLE widgets (id INTEGER PRIMARY KEY);"),
	}

	require.NoError(t, migrator.Apply(fsys))

	// Both ran, in version order despite lexical shuffling
	_, err := db.Exec("INSERT INTO widgets (id, notes) VALUES (1, 'ok')")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestMigrator_Apply_Idempotent(t *testing.T) {
	db := testDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"001_create_widget.sql": sqlFile("CREATE TABLE widgets (id INTEGER PRIMARY KEY);"),
	}

	require.NoError(t, migrator.Apply(fsys))
	// A second pass skips the applied version; re-executing the CREATE would fail
	require.NoError(t, migrator.Apply(fsys))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrator_Apply_RejectsBadFilename(t *testing.T) {
	db := testDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"initial-schema.sql": sqlFile("CREATE TABLE widgets (id INTEGER PRIMARY KEY);"),
	}

	err := migrator.Apply(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestMigrator_Apply_RejectsDuplicateVersion(t *testing.T) {
	db := testDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"001_first.sql":  sqlFile("CREATE TABLE a (id INTEGER);"),
		"001_second.sql": sqlFile("CREATE TABLE b (id INTEGER);"),
	}

	err := migrator.Apply(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate migration version")
}

func TestMigrator_Apply_FailedMigrationRollsBack(t *testing.T) {
	db := testDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"001_broken.sql": sqlFile("CREATE TABLE nonsense ("),
	}

	require.Error(t, migrator.Apply(fsys))

	// The failed version was not recorded, so a fixed file can re-run under it
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestMigrator_Apply_ProjectSchema(t *testing.T) {
	db := testDB(t)
	migrator := NewMigrator(db, zap.NewNop())

	require.NoError(t, migrator.Apply(os.DirFS("../../migrations")))

	// The duplicate-guard backstop must come out of the real schema
	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'uq_requests_active_per_benefit'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "uq_requests_active_per_benefit", name)

	for _, table := range []string{"users", "cases", "benefits", "approval_requests", "audit_records"} {
		var found string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&found)
		assert.NoError(t, err, "table %s missing", table)
	}
}
