// Package models provides data model definitions for the emissions ledger.
package models

import "time"

// DateLayout is the storage layout for calendar dates. Dates travel as
// YYYY-MM-DD strings so that SQLite's lexicographic comparison matches
// chronological order.
const DateLayout = "2006-01-02"

// EmissionFactor is one effective-dated version of a conversion coefficient
// for an activity. Versions for the same activity are never updated in place;
// a new validity window gets a new row.
type EmissionFactor struct {
	ID           int64   `db:"id" json:"id"`
	ActivityName string  `db:"activity_name" json:"activity_name"`
	Unit         string  `db:"unit" json:"unit"`
	CO2eFactor   float64 `db:"co2e_factor" json:"co2e_factor"`
	Scope        int     `db:"scope" json:"scope"`
	Source       string  `db:"source" json:"source"`
	ValidFrom    string  `db:"valid_from" json:"valid_from"`
	ValidTo      string  `db:"valid_to" json:"valid_to,omitempty"` // empty means open-ended
	CreatedAt    int64   `db:"created_at" json:"created_at"`
}

// TableName returns the table name for EmissionFactor.
func (EmissionFactor) TableName() string {
	return "emission_factors"
}

// ValidFromTime returns ValidFrom as time.Time.
func (f *EmissionFactor) ValidFromTime() (time.Time, error) {
	return time.Parse(DateLayout, f.ValidFrom)
}

// OpenEnded reports whether the validity window has no upper bound.
func (f *EmissionFactor) OpenEnded() bool {
	return f.ValidTo == ""
}
