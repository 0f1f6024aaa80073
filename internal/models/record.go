package models

import "time"

// EmissionRecord is one calculated emission for an activity occurrence. Rows
// are append-only: the calculated value and scope are frozen at creation and
// later factor edits never rewrite history.
type EmissionRecord struct {
	ID               int64   `db:"id" json:"id"`
	ActivityDate     string  `db:"activity_date" json:"activity_date"`
	ActivityName     string  `db:"activity_name" json:"activity_name"`
	ActivityData     float64 `db:"activity_data" json:"activity_data"`
	Unit             string  `db:"unit" json:"unit"`
	EmissionFactorID *int64  `db:"emission_factor_id" json:"emission_factor_id,omitempty"`
	CalculatedCO2e   float64 `db:"calculated_co2e" json:"calculated_co2e"`
	Scope            int     `db:"scope" json:"scope"`
	IsOverride       bool    `db:"is_override" json:"is_override"`
	OverrideReason   string  `db:"override_reason" json:"override_reason,omitempty"`
	CreatedAt        int64   `db:"created_at" json:"created_at"`

	// Joined from the referenced factor version for display; not columns of
	// the records table.
	FactorName string   `db:"-" json:"factor_name,omitempty"`
	FactorUsed *float64 `db:"-" json:"co2e_factor,omitempty"`
}

// TableName returns the table name for EmissionRecord.
func (EmissionRecord) TableName() string {
	return "emission_records"
}

// ActivityDateTime returns ActivityDate as time.Time.
func (r *EmissionRecord) ActivityDateTime() (time.Time, error) {
	return time.Parse(DateLayout, r.ActivityDate)
}

// CreatedAtTime returns CreatedAt as time.Time.
func (r *EmissionRecord) CreatedAtTime() time.Time {
	return time.Unix(r.CreatedAt, 0)
}
