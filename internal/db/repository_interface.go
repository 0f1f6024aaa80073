// Package db provides repository interfaces for the emissions ledger models.
package db

import (
	"github.com/carbontrail/backend/internal/models"
)

// FactorRepository defines persistence operations for emission factor
// versions. The calculation engine depends on this interface rather than the
// concrete Repository so tests can substitute fakes.
type FactorRepository interface {
	// CreateFactor inserts a factor version idempotently and reports whether
	// a row was inserted.
	CreateFactor(factor *models.EmissionFactor) (bool, error)

	// FindApplicableFactor returns the version applicable to the activity on
	// the date, or sql.ErrNoRows.
	FindApplicableFactor(activityName, activityDate string) (*models.EmissionFactor, error)

	// ListFactors returns all versions, activity name ascending then
	// valid_from descending.
	ListFactors() ([]*models.EmissionFactor, error)
}

// RecordRepository defines persistence operations for emission records and
// their audit trail.
type RecordRepository interface {
	// CreateRecord appends a record to the ledger.
	CreateRecord(record *models.EmissionRecord) error

	// CreateRecordWithAudit appends a record and its audit entry atomically.
	CreateRecordWithAudit(record *models.EmissionRecord, entry *models.AuditEntry) error

	// ListRecords returns records newest activity first, joined with factor
	// display fields.
	ListRecords() ([]*models.EmissionRecord, error)

	// ListAuditEntries returns the audit trail for one record.
	ListAuditEntries(recordID int64) ([]*models.AuditEntry, error)
}

// MetricRepository defines persistence operations for business metrics.
type MetricRepository interface {
	CreateBusinessMetric(metric *models.BusinessMetric) error
	ListBusinessMetrics() ([]*models.BusinessMetric, error)
}

// AnalyticsRepository defines the read-only aggregation queries.
type AnalyticsRepository interface {
	YearScopeTotals(years ...string) ([]YearScopeTotal, error)
	YearScopeBreakdownAll() ([]YearScopeBreakdown, error)
	TotalEmissionsForYear(year string) (float64, error)
	ProductionTotalForYear(metricName, year string) (float64, error)
	HotspotTotals(year string) ([]HotspotTotal, error)
	MonthlyTotals(year string) ([]MonthScopeTotal, error)
	MetricSummariesForYear(year string) ([]MetricSummary, error)
}

// Ensure *Repository implements the interfaces at compile time.
var (
	_ FactorRepository    = (*Repository)(nil)
	_ RecordRepository    = (*Repository)(nil)
	_ MetricRepository    = (*Repository)(nil)
	_ AnalyticsRepository = (*Repository)(nil)
)
