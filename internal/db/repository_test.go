// Package db provides unit tests for the ledger repository operations.
package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/carbontrail/backend/internal/models"
)

// setupTestDB creates a migrated in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := OpenInMemory()
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, NewMigrator(database.DB).Up(), "failed to migrate test database")
	return database.DB
}

func testFactor() *models.EmissionFactor {
	return &models.EmissionFactor{
		ActivityName: "Diesel",
		Unit:         "KL",
		CO2eFactor:   2.539,
		Scope:        1,
		Source:       "DEFRA 2024",
		ValidFrom:    "2024-01-01",
		ValidTo:      "2024-12-31",
	}
}

func TestCreateFactor(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	factor := testFactor()
	inserted, err := repo.CreateFactor(factor)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, factor.ID)
	assert.NotZero(t, factor.CreatedAt)
}

func TestCreateFactorIdempotent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.CreateFactor(testFactor())
	require.NoError(t, err)

	// A row identical in every business column is silently skipped.
	inserted, err := repo.CreateFactor(testFactor())
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := repo.CountFactors()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateFactorIdempotentOpenEnded(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	open := testFactor()
	open.ValidTo = ""
	_, err := repo.CreateFactor(open)
	require.NoError(t, err)

	dup := testFactor()
	dup.ValidTo = ""
	inserted, err := repo.CreateFactor(dup)
	require.NoError(t, err)
	assert.False(t, inserted, "open-ended duplicates must dedupe too")
}

func TestCreateFactorDifferentCoefficientIsNewRow(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.CreateFactor(testFactor())
	require.NoError(t, err)

	revised := testFactor()
	revised.CO2eFactor = 2.6
	inserted, err := repo.CreateFactor(revised)
	require.NoError(t, err)
	assert.True(t, inserted)

	count, err := repo.CountFactors()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFindApplicableFactor(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.CreateFactor(testFactor())
	require.NoError(t, err)

	factor, err := repo.FindApplicableFactor("Diesel", "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "Diesel", factor.ActivityName)
	assert.Equal(t, 2.539, factor.CO2eFactor)
}

func TestFindApplicableFactorBoundaryDates(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.CreateFactor(testFactor())
	require.NoError(t, err)

	// Both interval bounds are inclusive.
	_, err = repo.FindApplicableFactor("Diesel", "2024-01-01")
	assert.NoError(t, err)
	_, err = repo.FindApplicableFactor("Diesel", "2024-12-31")
	assert.NoError(t, err)

	_, err = repo.FindApplicableFactor("Diesel", "2023-12-31")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.FindApplicableFactor("Diesel", "2025-01-01")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFindApplicableFactorOpenEnded(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	open := testFactor()
	open.ValidTo = ""
	_, err := repo.CreateFactor(open)
	require.NoError(t, err)

	factor, err := repo.FindApplicableFactor("Diesel", "2030-06-01")
	require.NoError(t, err)
	assert.True(t, factor.OpenEnded())
}

func TestFindApplicableFactorOverlapPicksLatestStart(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	older := testFactor()
	older.ValidFrom = "2024-01-01"
	older.ValidTo = ""
	_, err := repo.CreateFactor(older)
	require.NoError(t, err)

	newer := testFactor()
	newer.CO2eFactor = 2.7
	newer.ValidFrom = "2024-07-01"
	newer.ValidTo = ""
	_, err = repo.CreateFactor(newer)
	require.NoError(t, err)

	// Overlapping windows: the most recently started one wins.
	factor, err := repo.FindApplicableFactor("Diesel", "2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, 2.7, factor.CO2eFactor)

	// Before the newer window starts, the older one still applies.
	factor, err = repo.FindApplicableFactor("Diesel", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2.539, factor.CO2eFactor)
}

func TestFindApplicableFactorCaseSensitiveName(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.CreateFactor(testFactor())
	require.NoError(t, err)

	_, err = repo.FindApplicableFactor("diesel", "2024-06-15")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListFactorsOrdering(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	for _, f := range []*models.EmissionFactor{
		{ActivityName: "Natural Gas", Unit: "kNm3", CO2eFactor: 2.425, Scope: 1, Source: "s", ValidFrom: "2024-01-01"},
		{ActivityName: "Diesel", Unit: "KL", CO2eFactor: 2.6, Scope: 1, Source: "s", ValidFrom: "2025-01-01"},
		{ActivityName: "Diesel", Unit: "KL", CO2eFactor: 2.539, Scope: 1, Source: "s", ValidFrom: "2024-01-01"},
	} {
		_, err := repo.CreateFactor(f)
		require.NoError(t, err)
	}

	factors, err := repo.ListFactors()
	require.NoError(t, err)
	require.Len(t, factors, 3)

	// Activity name ascending, then valid_from descending.
	assert.Equal(t, "Diesel", factors[0].ActivityName)
	assert.Equal(t, "2025-01-01", factors[0].ValidFrom)
	assert.Equal(t, "2024-01-01", factors[1].ValidFrom)
	assert.Equal(t, "Natural Gas", factors[2].ActivityName)
}

func TestCreateRecord(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	factor := testFactor()
	_, err := repo.CreateFactor(factor)
	require.NoError(t, err)

	record := &models.EmissionRecord{
		ActivityDate:     "2024-01-15",
		ActivityName:     "Diesel",
		ActivityData:     100,
		Unit:             "KL",
		EmissionFactorID: &factor.ID,
		CalculatedCO2e:   253.9,
		Scope:            1,
	}
	require.NoError(t, repo.CreateRecord(record))
	assert.NotZero(t, record.ID)
	assert.NotZero(t, record.CreatedAt)
}

func TestCreateRecordNotIdempotent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	record := func() *models.EmissionRecord {
		return &models.EmissionRecord{
			ActivityDate: "2024-01-15", ActivityName: "Diesel",
			ActivityData: 100, Unit: "KL", CalculatedCO2e: 253.9, Scope: 1,
		}
	}
	require.NoError(t, repo.CreateRecord(record()))
	require.NoError(t, repo.CreateRecord(record()))

	count, err := repo.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, 2, count, "resubmitting the same occurrence creates a second record")
}

func TestCreateRecordWithAudit(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	factor := testFactor()
	_, err := repo.CreateFactor(factor)
	require.NoError(t, err)

	record := &models.EmissionRecord{
		ActivityDate:     "2024-01-15",
		ActivityName:     "Diesel",
		ActivityData:     100,
		Unit:             "KL",
		EmissionFactorID: &factor.ID,
		CalculatedCO2e:   300,
		Scope:            1,
		IsOverride:       true,
		OverrideReason:   "meter recalibration",
	}
	entry := &models.AuditEntry{
		Action:   models.AuditActionOverride,
		OldValue: 253.9,
		NewValue: 300,
		Reason:   "meter recalibration",
	}
	require.NoError(t, repo.CreateRecordWithAudit(record, entry))
	assert.NotZero(t, record.ID)
	assert.Equal(t, record.ID, entry.RecordID)

	entries, err := repo.ListAuditEntries(record.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionOverride, entries[0].Action)
	assert.Equal(t, 253.9, entries[0].OldValue)
	assert.Equal(t, 300.0, entries[0].NewValue)
}

func TestListRecordsJoinsFactorDisplayFields(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	factor := testFactor()
	_, err := repo.CreateFactor(factor)
	require.NoError(t, err)

	require.NoError(t, repo.CreateRecord(&models.EmissionRecord{
		ActivityDate: "2024-01-15", ActivityName: "Diesel", ActivityData: 100,
		Unit: "KL", EmissionFactorID: &factor.ID, CalculatedCO2e: 253.9, Scope: 1,
	}))
	require.NoError(t, repo.CreateRecord(&models.EmissionRecord{
		ActivityDate: "2024-03-01", ActivityName: "Diesel", ActivityData: 50,
		Unit: "KL", EmissionFactorID: &factor.ID, CalculatedCO2e: 126.95, Scope: 1,
	}))

	records, err := repo.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest activity date first.
	assert.Equal(t, "2024-03-01", records[0].ActivityDate)
	assert.Equal(t, "Diesel", records[0].FactorName)
	require.NotNil(t, records[0].FactorUsed)
	assert.Equal(t, 2.539, *records[0].FactorUsed)
}

func TestListRecordsWithoutFactorReference(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.CreateRecord(&models.EmissionRecord{
		ActivityDate: "2024-01-15", ActivityName: "Diesel", ActivityData: 100,
		Unit: "KL", CalculatedCO2e: 253.9, Scope: 1,
	}))

	records, err := repo.ListRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].EmissionFactorID)
	assert.Empty(t, records[0].FactorName)
	assert.Nil(t, records[0].FactorUsed)
}

func TestDistinctRecordYears(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	for _, date := range []string{"2024-01-15", "2024-06-01", "2023-03-10"} {
		require.NoError(t, repo.CreateRecord(&models.EmissionRecord{
			ActivityDate: date, ActivityName: "Diesel", ActivityData: 1,
			Unit: "KL", CalculatedCO2e: 2.539, Scope: 1,
		}))
	}

	years, err := repo.DistinctRecordYears()
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2024"}, years)
}

func TestBusinessMetrics(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	metric := &models.BusinessMetric{
		Date:       "2024-01-31",
		MetricName: models.MetricSteelProduction,
		Value:      5000,
		Unit:       "tonnes",
	}
	require.NoError(t, repo.CreateBusinessMetric(metric))
	assert.NotZero(t, metric.ID)

	require.NoError(t, repo.CreateBusinessMetric(&models.BusinessMetric{
		Date: "2024-02-29", MetricName: models.MetricSteelProduction, Value: 4800, Unit: "tonnes",
	}))

	metrics, err := repo.ListBusinessMetrics()
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "2024-02-29", metrics[0].Date, "newest first")
}
