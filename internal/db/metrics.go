package db

import (
	"time"

	"github.com/carbontrail/backend/internal/models"
)

// =====================================================
// BusinessMetric Operations
// =====================================================

// CreateBusinessMetric inserts a business metric row. The metric's ID and
// CreatedAt are set on success.
func (r *Repository) CreateBusinessMetric(metric *models.BusinessMetric) error {
	metric.CreatedAt = time.Now().Unix()

	res, err := r.db.Exec(`
	INSERT INTO business_metrics (date, metric_name, value, unit, created_at)
	VALUES (?, ?, ?, ?, ?)
	`, metric.Date, metric.MetricName, metric.Value, metric.Unit, metric.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	metric.ID = id
	return nil
}

// ListBusinessMetrics returns all business metrics newest first.
func (r *Repository) ListBusinessMetrics() ([]*models.BusinessMetric, error) {
	rows, err := r.db.Query(`
	SELECT id, date, metric_name, value, unit, created_at
	FROM business_metrics
	ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*models.BusinessMetric
	for rows.Next() {
		var m models.BusinessMetric
		if err := rows.Scan(&m.ID, &m.Date, &m.MetricName, &m.Value, &m.Unit, &m.CreatedAt); err != nil {
			return nil, err
		}
		metrics = append(metrics, &m)
	}
	return metrics, rows.Err()
}
