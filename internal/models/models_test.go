package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorValidFromTime(t *testing.T) {
	f := &EmissionFactor{ValidFrom: "2024-01-01"}
	ts, err := f.ValidFromTime()
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, time.January, ts.Month())
}

func TestFactorOpenEnded(t *testing.T) {
	assert.True(t, (&EmissionFactor{}).OpenEnded())
	assert.False(t, (&EmissionFactor{ValidTo: "2024-12-31"}).OpenEnded())
}

func TestRecordDateHelpers(t *testing.T) {
	r := &EmissionRecord{ActivityDate: "2024-01-15", CreatedAt: 1700000000}

	ts, err := r.ActivityDateTime()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", ts.Format(DateLayout))
	assert.Equal(t, int64(1700000000), r.CreatedAtTime().Unix())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "emission_factors", EmissionFactor{}.TableName())
	assert.Equal(t, "emission_records", EmissionRecord{}.TableName())
	assert.Equal(t, "audit_log", AuditEntry{}.TableName())
	assert.Equal(t, "business_metrics", BusinessMetric{}.TableName())
}
