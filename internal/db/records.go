package db

import (
	"database/sql"
	"time"

	"github.com/carbontrail/backend/internal/models"
)

// =====================================================
// EmissionRecord / AuditEntry Operations
// =====================================================

// CreateRecord appends an emission record to the ledger. The record's ID and
// CreatedAt are set on success.
func (r *Repository) CreateRecord(record *models.EmissionRecord) error {
	record.CreatedAt = time.Now().Unix()

	query := `
	INSERT INTO emission_records
		(activity_date, activity_name, activity_data, unit, emission_factor_id,
		 calculated_co2e, scope, is_override, override_reason, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.Exec(query, record.ActivityDate, record.ActivityName,
		record.ActivityData, record.Unit, record.EmissionFactorID,
		record.CalculatedCO2e, record.Scope, record.IsOverride,
		record.OverrideReason, record.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = id
	return nil
}

// CreateRecordWithAudit appends a record and its audit entry as one
// transaction. The audit entry's RecordID is filled from the new record.
// Either both rows commit or neither does.
func (r *Repository) CreateRecordWithAudit(record *models.EmissionRecord, entry *models.AuditEntry) error {
	now := time.Now().Unix()
	record.CreatedAt = now
	entry.CreatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
	INSERT INTO emission_records
		(activity_date, activity_name, activity_data, unit, emission_factor_id,
		 calculated_co2e, scope, is_override, override_reason, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ActivityDate, record.ActivityName, record.ActivityData, record.Unit,
		record.EmissionFactorID, record.CalculatedCO2e, record.Scope,
		record.IsOverride, record.OverrideReason, record.CreatedAt)
	if err != nil {
		return err
	}
	recordID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = recordID
	entry.RecordID = recordID

	res, err = tx.Exec(`
	INSERT INTO audit_log (record_id, action, old_value, new_value, reason, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`, entry.RecordID, entry.Action, entry.OldValue, entry.NewValue, entry.Reason, entry.CreatedAt)
	if err != nil {
		return err
	}
	entryID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = entryID

	return tx.Commit()
}

// ListRecords returns all emission records newest activity first, each joined
// with the name and coefficient of the factor version it referenced.
func (r *Repository) ListRecords() ([]*models.EmissionRecord, error) {
	query := `
	SELECT er.id, er.activity_date, er.activity_name, er.activity_data, er.unit,
	       er.emission_factor_id, er.calculated_co2e, er.scope, er.is_override,
	       COALESCE(er.override_reason, ''), er.created_at,
	       ef.activity_name, ef.co2e_factor
	FROM emission_records er
	LEFT JOIN emission_factors ef ON er.emission_factor_id = ef.id
	ORDER BY er.activity_date DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.EmissionRecord
	for rows.Next() {
		var rec models.EmissionRecord
		var factorID sql.NullInt64
		var factorName sql.NullString
		var factorUsed sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.ActivityDate, &rec.ActivityName,
			&rec.ActivityData, &rec.Unit, &factorID, &rec.CalculatedCO2e,
			&rec.Scope, &rec.IsOverride, &rec.OverrideReason, &rec.CreatedAt,
			&factorName, &factorUsed); err != nil {
			return nil, err
		}
		if factorID.Valid {
			rec.EmissionFactorID = &factorID.Int64
		}
		if factorName.Valid {
			rec.FactorName = factorName.String
		}
		if factorUsed.Valid {
			rec.FactorUsed = &factorUsed.Float64
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountRecords returns the number of stored emission records. A zero count is
// the bootstrap collaborator's trigger to seed sample data.
func (r *Repository) CountRecords() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM emission_records").Scan(&count)
	return count, err
}

// DistinctRecordYears returns the distinct activity years present in the
// ledger, ascending.
func (r *Repository) DistinctRecordYears() ([]string, error) {
	rows, err := r.db.Query(`
	SELECT DISTINCT strftime('%Y', activity_date) AS year
	FROM emission_records
	ORDER BY year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []string
	for rows.Next() {
		var year string
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	return years, rows.Err()
}

// ListAuditEntries returns the audit trail for one record, oldest first.
func (r *Repository) ListAuditEntries(recordID int64) ([]*models.AuditEntry, error) {
	query := `
	SELECT id, record_id, action, old_value, new_value, COALESCE(reason, ''), created_at
	FROM audit_log
	WHERE record_id = ?
	ORDER BY id
	`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.RecordID, &e.Action, &e.OldValue,
			&e.NewValue, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CountAuditEntries returns the number of audit entries across all records.
func (r *Repository) CountAuditEntries() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM audit_log").Scan(&count)
	return count, err
}
