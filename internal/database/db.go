// Package database opens the postgres connection behind the snapshot
// repository and manages the directory_snapshots schema.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/user-directory-api/internal/config"
)

const (
	pingTimeout = 5 * time.Second

	// migrationsTable records the snapshot schema version
	migrationsTable = "directory_schema_migrations"
)

// DB is the connection pool used by the postgres snapshot repository
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New opens the pool and pings the server
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	pool, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging snapshot database %s@%s: %w", cfg.Name, cfg.Host, err)
	}

	db := &DB{
		DB:  pool,
		log: log.With().Str("component", "database").Logger(),
	}
	db.log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Snapshot database connected")

	return db, nil
}

// RunMigrations brings the snapshot schema up to date
func (db *DB) RunMigrations(migrationsPath string) error {
	return db.migrate(migrationsPath, "up", func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls the snapshot schema back one version
func (db *DB) MigrateDown(migrationsPath string) error {
	return db.migrate(migrationsPath, "down", func(m *migrate.Migrate) error { return m.Steps(-1) })
}

func (db *DB) migrate(migrationsPath, direction string, step func(*migrate.Migrate) error) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("loading migrations from %s: %w", migrationsPath, err)
	}
	defer func() {
		if srcErr, _ := m.Close(); srcErr != nil {
			db.log.Warn().Err(srcErr).Msg("Failed to close migration source")
		}
	}()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrating snapshot schema %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", err)
	}

	db.log.Info().
		Str("direction", direction).
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Snapshot schema migrated")
	return nil
}

// HealthCheck pings the server and confirms the snapshot table is readable
func (db *DB) HealthCheck(ctx context.Context) error {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM directory_snapshots LIMIT 1").Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("snapshot table unavailable: %w", err)
	}
	return nil
}
