// Package db provides repository operations for the emissions ledger models.
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/carbontrail/backend/internal/models"
)

// Repository provides persistence operations for all ledger models.
type Repository struct {
	db *sql.DB

	// Prepared statement cache for frequently used queries. Statements are
	// prepared on first use and reused.
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PrepareStmt gets or creates a prepared statement from cache.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		// Another goroutine already prepared this, close our duplicate
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}
	return stmt, nil
}

// Close closes all cached prepared statements.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// =====================================================
// EmissionFactor Operations
// =====================================================

// CreateFactor inserts a factor version. Inserts are idempotent: a row that is
// identical in every business column is silently skipped. Returns whether a
// row was actually inserted. On insert the factor's ID and CreatedAt are set.
func (r *Repository) CreateFactor(factor *models.EmissionFactor) (bool, error) {
	factor.CreatedAt = time.Now().Unix()

	query := `
	INSERT OR IGNORE INTO emission_factors
		(activity_name, unit, co2e_factor, scope, source, valid_from, valid_to, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.Exec(query, factor.ActivityName, factor.Unit, factor.CO2eFactor,
		factor.Scope, factor.Source, factor.ValidFrom, factor.ValidTo, factor.CreatedAt)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	factor.ID = id
	return true, nil
}

// FindApplicableFactor returns the factor version applicable to the activity
// on the given date: activity name matches exactly, the validity window
// contains the date, and among surviving candidates the most recently started
// window wins. Returns sql.ErrNoRows when no version applies; callers decide
// what that means.
func (r *Repository) FindApplicableFactor(activityName, activityDate string) (*models.EmissionFactor, error) {
	query := `
	SELECT id, activity_name, unit, co2e_factor, scope, source, valid_from, valid_to, created_at
	FROM emission_factors
	WHERE activity_name = ?
	  AND valid_from <= ?
	  AND (valid_to = '' OR valid_to >= ?)
	ORDER BY valid_from DESC
	LIMIT 1
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	var f models.EmissionFactor
	err = stmt.QueryRow(activityName, activityDate, activityDate).Scan(
		&f.ID, &f.ActivityName, &f.Unit, &f.CO2eFactor, &f.Scope, &f.Source,
		&f.ValidFrom, &f.ValidTo, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFactors returns all factor versions ordered by activity name, then by
// most recent validity start first.
func (r *Repository) ListFactors() ([]*models.EmissionFactor, error) {
	query := `
	SELECT id, activity_name, unit, co2e_factor, scope, source, valid_from, valid_to, created_at
	FROM emission_factors
	ORDER BY activity_name, valid_from DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var factors []*models.EmissionFactor
	for rows.Next() {
		var f models.EmissionFactor
		if err := rows.Scan(&f.ID, &f.ActivityName, &f.Unit, &f.CO2eFactor, &f.Scope,
			&f.Source, &f.ValidFrom, &f.ValidTo, &f.CreatedAt); err != nil {
			return nil, err
		}
		factors = append(factors, &f)
	}
	return factors, rows.Err()
}

// CountFactors returns the number of stored factor versions.
func (r *Repository) CountFactors() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM emission_factors").Scan(&count)
	return count, err
}
