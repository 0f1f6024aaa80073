package db

// Read-only aggregation queries over the ledger. Overridden values take part
// in every sum exactly like factor-derived ones; only the record-level
// is_override flag keeps the distinction.

// YearScopeTotal is one (activity year, scope) emissions bucket.
type YearScopeTotal struct {
	Year      string  `json:"year"`
	Scope     int     `json:"scope"`
	TotalCO2e float64 `json:"total_co2e"`
}

// YearScopeBreakdown is a YearScopeTotal with a record count, used by the
// health/debug report.
type YearScopeBreakdown struct {
	Year      string  `json:"year"`
	Scope     int     `json:"scope"`
	Count     int     `json:"count"`
	TotalCO2e float64 `json:"total_emissions"`
}

// HotspotTotal is one (activity, scope) emissions bucket for a year.
type HotspotTotal struct {
	ActivityName string  `json:"activity_name"`
	Scope        int     `json:"scope"`
	TotalCO2e    float64 `json:"total_co2e"`
	RecordCount  int     `json:"record_count"`
}

// MonthScopeTotal is one (year-month, scope) emissions bucket.
type MonthScopeTotal struct {
	Month     string  `json:"month"`
	Scope     int     `json:"scope"`
	TotalCO2e float64 `json:"total_co2e"`
}

// MetricSummary is the per-name rollup of a business metric for a year.
type MetricSummary struct {
	MetricName  string  `json:"metric_name"`
	TotalValue  float64 `json:"total_value"`
	AvgValue    float64 `json:"avg_value"`
	RecordCount int     `json:"record_count"`
	Unit        string  `json:"unit"`
}

// YearScopeTotals sums calculated_co2e grouped by (year, scope). With years
// given, only those years are included; with none, all years are returned.
// Ordered by year then scope.
func (r *Repository) YearScopeTotals(years ...string) ([]YearScopeTotal, error) {
	query := `
	SELECT strftime('%Y', activity_date) AS year, scope, SUM(calculated_co2e) AS total_co2e
	FROM emission_records
	`
	args := make([]interface{}, 0, len(years))
	if len(years) > 0 {
		query += "WHERE strftime('%Y', activity_date) IN (?"
		for range years[1:] {
			query += ", ?"
		}
		query += ")\n"
		for _, y := range years {
			args = append(args, y)
		}
	}
	query += "GROUP BY year, scope ORDER BY year, scope"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []YearScopeTotal
	for rows.Next() {
		var t YearScopeTotal
		if err := rows.Scan(&t.Year, &t.Scope, &t.TotalCO2e); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// YearScopeBreakdownAll returns count and total per (year, scope) across the
// whole ledger, newest year first.
func (r *Repository) YearScopeBreakdownAll() ([]YearScopeBreakdown, error) {
	rows, err := r.db.Query(`
	SELECT strftime('%Y', activity_date) AS year, scope, COUNT(*) AS count,
	       SUM(calculated_co2e) AS total_emissions
	FROM emission_records
	GROUP BY year, scope
	ORDER BY year DESC, scope
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []YearScopeBreakdown
	for rows.Next() {
		var b YearScopeBreakdown
		if err := rows.Scan(&b.Year, &b.Scope, &b.Count, &b.TotalCO2e); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, b)
	}
	return breakdown, rows.Err()
}

// TotalEmissionsForYear sums calculated_co2e over one activity year.
func (r *Repository) TotalEmissionsForYear(year string) (float64, error) {
	stmt, err := r.PrepareStmt(`
	SELECT COALESCE(SUM(calculated_co2e), 0)
	FROM emission_records
	WHERE strftime('%Y', activity_date) = ?
	`)
	if err != nil {
		return 0, err
	}
	var total float64
	err = stmt.QueryRow(year).Scan(&total)
	return total, err
}

// ProductionTotalForYear sums a business metric series over one year.
func (r *Repository) ProductionTotalForYear(metricName, year string) (float64, error) {
	stmt, err := r.PrepareStmt(`
	SELECT COALESCE(SUM(value), 0)
	FROM business_metrics
	WHERE metric_name = ? AND strftime('%Y', date) = ?
	`)
	if err != nil {
		return 0, err
	}
	var total float64
	err = stmt.QueryRow(metricName, year).Scan(&total)
	return total, err
}

// HotspotTotals sums and counts emissions grouped by (activity, scope) for a
// year, largest total first.
func (r *Repository) HotspotTotals(year string) ([]HotspotTotal, error) {
	stmt, err := r.PrepareStmt(`
	SELECT activity_name, scope, SUM(calculated_co2e) AS total_co2e, COUNT(*) AS record_count
	FROM emission_records
	WHERE strftime('%Y', activity_date) = ?
	GROUP BY activity_name, scope
	ORDER BY total_co2e DESC
	`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []HotspotTotal
	for rows.Next() {
		var h HotspotTotal
		if err := rows.Scan(&h.ActivityName, &h.Scope, &h.TotalCO2e, &h.RecordCount); err != nil {
			return nil, err
		}
		totals = append(totals, h)
	}
	return totals, rows.Err()
}

// MonthlyTotals sums emissions grouped by (year-month, scope) for a year,
// ascending by month then scope.
func (r *Repository) MonthlyTotals(year string) ([]MonthScopeTotal, error) {
	stmt, err := r.PrepareStmt(`
	SELECT strftime('%Y-%m', activity_date) AS month, scope, SUM(calculated_co2e) AS total_co2e
	FROM emission_records
	WHERE strftime('%Y', activity_date) = ?
	GROUP BY month, scope
	ORDER BY month, scope
	`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []MonthScopeTotal
	for rows.Next() {
		var m MonthScopeTotal
		if err := rows.Scan(&m.Month, &m.Scope, &m.TotalCO2e); err != nil {
			return nil, err
		}
		totals = append(totals, m)
	}
	return totals, rows.Err()
}

// MetricSummariesForYear rolls up business metrics per (name, unit) for a
// year, ordered by metric name.
func (r *Repository) MetricSummariesForYear(year string) ([]MetricSummary, error) {
	stmt, err := r.PrepareStmt(`
	SELECT metric_name, SUM(value) AS total_value, AVG(value) AS avg_value,
	       COUNT(*) AS record_count, unit
	FROM business_metrics
	WHERE strftime('%Y', date) = ?
	GROUP BY metric_name, unit
	ORDER BY metric_name
	`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []MetricSummary
	for rows.Next() {
		var s MetricSummary
		if err := rows.Scan(&s.MetricName, &s.TotalValue, &s.AvgValue, &s.RecordCount, &s.Unit); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
