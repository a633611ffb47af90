package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// ErrDirtySchema means a previous migration stopped halfway. The database
// needs manual repair before the ledger can use it.
var ErrDirtySchema = errors.New("ledger schema is dirty")

// schemaMigrator pairs a migrator with the connection it was built on. The
// driver closes that connection too, so closing it again is a no-op.
type schemaMigrator struct {
	*migrate.Migrate
	db *sql.DB
}

func openSchemaMigrator(dbPath string) (*schemaMigrator, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger schema: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema driver: %w", err)
	}
	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("embedded schema: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migrator: %w", err)
	}
	return &schemaMigrator{Migrate: m, db: db}, nil
}

func (m *schemaMigrator) close() {
	m.Close()
	m.db.Close()
}

// RunMigrations applies pending schema changes to the ledger database at
// dbPath and returns the resulting schema version. An up-to-date database is
// left untouched.
func RunMigrations(dbPath string) (uint, error) {
	m, err := openSchemaMigrator(dbPath)
	if err != nil {
		return 0, err
	}
	defer m.close()

	if _, dirty, err := m.Version(); err == nil && dirty {
		return 0, ErrDirtySchema
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply ledger schema: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return version, ErrDirtySchema
	}
	return version, nil
}
