// Package db provides database schema migration management.
package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "github.com/carbontrail/backend/internal/errors"
)

// Migration represents a database schema migration.
type Migration struct {
	Version     int
	AppliedAt   time.Time
	Description string
	Checksum    string
}

// migrationStep is a schema change compiled into the binary. Steps are applied
// in version order inside a transaction each.
type migrationStep struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered list of schema changes. Append only; never edit an
// applied step, since its checksum is verified on startup.
var migrations = []migrationStep{
	{
		Version:     1,
		Description: "create emissions ledger tables",
		SQL: `
		CREATE TABLE IF NOT EXISTS emission_factors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_name TEXT NOT NULL,
			unit TEXT NOT NULL,
			co2e_factor REAL NOT NULL,
			scope INTEGER NOT NULL,
			source TEXT NOT NULL,
			valid_from TEXT NOT NULL,
			valid_to TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			UNIQUE(activity_name, unit, co2e_factor, scope, source, valid_from, valid_to)
		);

		CREATE TABLE IF NOT EXISTS emission_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_date TEXT NOT NULL,
			activity_name TEXT NOT NULL,
			activity_data REAL NOT NULL,
			unit TEXT NOT NULL,
			emission_factor_id INTEGER,
			calculated_co2e REAL NOT NULL,
			scope INTEGER NOT NULL,
			is_override INTEGER NOT NULL DEFAULT 0,
			override_reason TEXT,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (emission_factor_id) REFERENCES emission_factors(id)
		);

		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			old_value REAL,
			new_value REAL,
			reason TEXT,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (record_id) REFERENCES emission_records(id)
		);

		CREATE TABLE IF NOT EXISTS business_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			metric_name TEXT NOT NULL,
			value REAL NOT NULL,
			unit TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_factors_activity_validity
			ON emission_factors(activity_name, valid_from);
		CREATE INDEX IF NOT EXISTS idx_records_activity_date
			ON emission_records(activity_date);
		CREATE INDEX IF NOT EXISTS idx_metrics_name_date
			ON business_metrics(metric_name, date);
		`,
	},
}

// Migrator handles database schema migrations.
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new Migrator instance.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Initialize creates the schema_migrations table if it doesn't exist.
func (m *Migrator) Initialize() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY CHECK(version > 0),
		applied_at INTEGER NOT NULL CHECK(applied_at > 0),
		description TEXT NOT NULL CHECK(length(description) > 0),
		checksum TEXT NOT NULL CHECK(length(checksum) = 64)
	);`
	_, err := m.db.Exec(query)
	return err
}

// CurrentVersion returns the current schema version.
func (m *Migrator) CurrentVersion() (int, error) {
	var version int
	err := m.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

// AppliedMigrations returns all applied migrations in version order.
func (m *Migrator) AppliedMigrations() ([]Migration, error) {
	rows, err := m.db.Query("SELECT version, applied_at, description, checksum FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applied []Migration
	for rows.Next() {
		var mg Migration
		var appliedAt int64
		if err := rows.Scan(&mg.Version, &appliedAt, &mg.Description, &mg.Checksum); err != nil {
			return nil, err
		}
		mg.AppliedAt = time.Unix(appliedAt, 0)
		applied = append(applied, mg)
	}
	return applied, rows.Err()
}

// Up applies all pending migrations. Applied steps are verified against their
// recorded checksum so a silently edited migration fails loudly.
func (m *Migrator) Up() error {
	if err := m.Initialize(); err != nil {
		return apperrors.Wrap(apperrors.ErrMigration, "failed to initialize migration table", err)
	}

	applied, err := m.AppliedMigrations()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrMigration, "failed to read applied migrations", err)
	}
	appliedByVersion := make(map[int]Migration, len(applied))
	for _, mg := range applied {
		appliedByVersion[mg.Version] = mg
	}

	for _, step := range migrations {
		sum := checksum(step.SQL)
		if prev, ok := appliedByVersion[step.Version]; ok {
			if prev.Checksum != sum {
				return apperrors.New(apperrors.ErrMigration,
					fmt.Sprintf("migration %d checksum mismatch: applied %s, compiled %s", step.Version, prev.Checksum, sum))
			}
			continue
		}

		tx, err := m.db.Begin()
		if err != nil {
			return apperrors.Wrap(apperrors.ErrMigration, "failed to begin migration transaction", err)
		}
		if _, err := tx.Exec(step.SQL); err != nil {
			tx.Rollback()
			return apperrors.Wrap(apperrors.ErrMigration,
				fmt.Sprintf("migration %d (%s) failed", step.Version, step.Description), err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description, checksum) VALUES (?, ?, ?, ?)",
			step.Version, time.Now().Unix(), step.Description, sum,
		); err != nil {
			tx.Rollback()
			return apperrors.Wrap(apperrors.ErrMigration,
				fmt.Sprintf("failed to record migration %d", step.Version), err)
		}
		if err := tx.Commit(); err != nil {
			return apperrors.Wrap(apperrors.ErrMigration,
				fmt.Sprintf("failed to commit migration %d", step.Version), err)
		}
	}
	return nil
}

func checksum(sqlText string) string {
	sum := sha256.Sum256([]byte(sqlText))
	return hex.EncodeToString(sum[:])
}
