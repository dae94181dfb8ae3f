package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// migrationFilePattern is the required shape of a migration file name:
// a numeric version, an underscore, a snake_case name, and the .sql suffix
// (e.g. "001_initial_schema.sql"). Anything else in the migrations FS is an
// error, not a skip, so a typo cannot silently drop a schema change.
var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)

// migration is one versioned schema change, loaded from the migrations FS
type migration struct {
	version int
	name    string
	sql     string
}

// Migrator applies versioned .sql files against the database exactly once
// each, tracking what has run in a schema_migrations table. Each file runs
// inside its own transaction together with its tracking row, so a failed
// migration leaves no partial schema and no bookkeeping drift.
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a migrator bound to the given database
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// Apply runs every pending migration from fsys in ascending version order.
// Already-applied versions are skipped. The FS is typically os.DirFS over the
// configured migrations directory; tests pass an in-memory FS.
func (m *Migrator) Apply(fsys fs.FS) error {
	if err := m.ensureVersionTable(); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return fmt.Errorf("read applied versions: %w", err)
	}

	migrations, err := readMigrations(fsys)
	if err != nil {
		return err
	}

	pending := 0
	for _, mig := range migrations {
		if applied[mig.version] {
			continue
		}

		m.logger.Info("Applying schema migration",
			zap.Int("version", mig.version),
			zap.String("name", mig.name))

		if err := m.applyOne(mig); err != nil {
			return fmt.Errorf("apply migration %03d_%s: %w", mig.version, mig.name, err)
		}
		pending++
	}

	m.logger.Info("Schema up to date",
		zap.Int("applied_now", pending),
		zap.Int("total", len(migrations)))
	return nil
}

func (m *Migrator) ensureVersionTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (m *Migrator) appliedVersions() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// readMigrations loads and validates every .sql file at the root of fsys.
// Subdirectories are not descended into; versions must be unique.
func readMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	seen := make(map[int]string)
	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("migration file %q does not match NNN_name.sql", entry.Name())
		}

		version, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("migration file %q: bad version: %w", entry.Name(), err)
		}
		if prior, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d: %q and %q", version, prior, entry.Name())
		}
		seen[version] = entry.Name()

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration file %q: %w", entry.Name(), err)
		}

		migrations = append(migrations, migration{
			version: version,
			name:    match[2],
			sql:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

func (m *Migrator) applyOne(mig migration) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(mig.sql); err != nil {
			return fmt.Errorf("execute: %w", err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			mig.version, mig.name,
		); err != nil {
			return fmt.Errorf("record version: %w", err)
		}
		return nil
	})
}
