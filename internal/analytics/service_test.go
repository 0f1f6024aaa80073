// Package analytics provides unit tests for aggregate reporting.
package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbontrail/backend/internal/db"
	"github.com/carbontrail/backend/internal/models"
)

func setupService(t *testing.T) (*Service, *db.Repository) {
	t.Helper()
	database, err := db.OpenInMemory()
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.NewMigrator(database.DB).Up())

	repo := db.NewRepository(database.DB)
	return NewService(repo), repo
}

func addRecord(t *testing.T, repo *db.Repository, date, name string, co2e float64, scope int) {
	t.Helper()
	require.NoError(t, repo.CreateRecord(&models.EmissionRecord{
		ActivityDate: date, ActivityName: name, ActivityData: 1,
		Unit: "u", CalculatedCO2e: co2e, Scope: scope,
	}))
}

func TestYearOverYear(t *testing.T) {
	svc, repo := setupService(t)
	addRecord(t, repo, "2024-01-15", "Diesel", 253.9, 1)
	addRecord(t, repo, "2023-06-01", "Diesel", 500, 1)
	addRecord(t, repo, "2022-06-01", "Diesel", 900, 1)

	result, err := svc.YearOverYear(2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, result.CurrentYear)
	assert.Equal(t, 2023, result.PreviousYear)
	require.Len(t, result.Data, 2, "2022 must be excluded")
	assert.Equal(t, "2023", result.Data[0].Year)
	assert.Equal(t, "2024", result.Data[1].Year)
}

func TestYearOverYearAllYears(t *testing.T) {
	svc, repo := setupService(t)
	addRecord(t, repo, "2024-01-15", "Diesel", 253.9, 1)
	addRecord(t, repo, "2022-06-01", "Diesel", 900, 1)

	rows, err := svc.YearOverYearAllYears()
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestIntensity(t *testing.T) {
	svc, repo := setupService(t)
	addRecord(t, repo, "2024-01-15", "Diesel", 253.9, 1)
	addRecord(t, repo, "2024-01-20", "Grid Electricity", 8000, 2)
	require.NoError(t, repo.CreateBusinessMetric(&models.BusinessMetric{
		Date: "2024-01-31", MetricName: models.MetricSteelProduction, Value: 5000, Unit: "tonnes",
	}))

	result, err := svc.Intensity(2024)
	require.NoError(t, err)

	assert.InDelta(t, 8253.9, result.TotalEmissions, 1e-9)
	assert.Equal(t, 5000.0, result.TotalProduction)
	assert.InDelta(t, 8253.9/5000, result.Intensity, 1e-9)
	assert.Equal(t, IntensityUnit, result.Unit)
}

func TestIntensityZeroProduction(t *testing.T) {
	svc, repo := setupService(t)
	addRecord(t, repo, "2024-01-15", "Diesel", 261.9, 1)

	// No production series at all: intensity is 0, not an error.
	result, err := svc.Intensity(2024)
	require.NoError(t, err)
	assert.InDelta(t, 261.9, result.TotalEmissions, 1e-9)
	assert.Zero(t, result.TotalProduction)
	assert.Zero(t, result.Intensity)
}

func TestHotspots(t *testing.T) {
	svc, repo := setupService(t)
	addRecord(t, repo, "2024-01-15", "Diesel", 750, 1)
	addRecord(t, repo, "2024-02-15", "Grid Electricity", 250, 2)

	result, err := svc.Hotspots(2024)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, result.TotalEmissions)
	require.Len(t, result.Hotspots, 2)
	assert.Equal(t, "Diesel", result.Hotspots[0].ActivityName)
	assert.Equal(t, 75.0, result.Hotspots[0].Percentage)
	assert.Equal(t, 25.0, result.Hotspots[1].Percentage)
}

func TestHotspotPercentagesSumToHundred(t *testing.T) {
	svc, repo := setupService(t)
	addRecord(t, repo, "2024-01-15", "Diesel", 253.9, 1)
	addRecord(t, repo, "2024-02-15", "Grid Electricity", 8000, 2)
	addRecord(t, repo, "2024-03-15", "Natural Gas", 121.25, 1)

	result, err := svc.Hotspots(2024)
	require.NoError(t, err)

	var sum float64
	for _, h := range result.Hotspots {
		sum += h.Percentage
	}
	assert.InDelta(t, 100, sum, 0.05, "percentages sum to ~100 within rounding")
}

func TestHotspotsEmptyYear(t *testing.T) {
	svc, _ := setupService(t)

	result, err := svc.Hotspots(2024)
	require.NoError(t, err)
	assert.Zero(t, result.TotalEmissions)
	assert.Empty(t, result.Hotspots)
}

func TestHotspotsZeroTotalPercentages(t *testing.T) {
	svc, repo := setupService(t)
	// Overridden-to-low and regular rows that sum to zero total.
	addRecord(t, repo, "2024-01-15", "Diesel", 0, 1)
	addRecord(t, repo, "2024-02-15", "Grid Electricity", 0, 2)

	result, err := svc.Hotspots(2024)
	require.NoError(t, err)
	assert.Zero(t, result.TotalEmissions)
	for _, h := range result.Hotspots {
		assert.Zero(t, h.Percentage, "percentage is 0 when the grand total is 0")
	}
}

func TestMonthlyTrends(t *testing.T) {
	svc, repo := setupService(t)
	addRecord(t, repo, "2024-02-15", "Diesel", 100, 1)
	addRecord(t, repo, "2024-01-15", "Diesel", 200, 1)
	addRecord(t, repo, "2024-01-20", "Grid Electricity", 300, 2)

	result, err := svc.MonthlyTrends(2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, result.Year)
	require.Len(t, result.Data, 3)
	assert.Equal(t, "2024-01", result.Data[0].Month)
	assert.Equal(t, 1, result.Data[0].Scope)
	assert.Equal(t, "2024-01", result.Data[1].Month)
	assert.Equal(t, 2, result.Data[1].Scope)
	assert.Equal(t, "2024-02", result.Data[2].Month)
}

func TestMetricsSummary(t *testing.T) {
	svc, repo := setupService(t)
	require.NoError(t, repo.CreateBusinessMetric(&models.BusinessMetric{
		Date: "2024-01-31", MetricName: models.MetricSteelProduction, Value: 5000, Unit: "tonnes",
	}))
	require.NoError(t, repo.CreateBusinessMetric(&models.BusinessMetric{
		Date: "2024-02-29", MetricName: models.MetricSteelProduction, Value: 4800, Unit: "tonnes",
	}))

	result, err := svc.MetricsSummary(2024)
	require.NoError(t, err)
	require.Len(t, result.Metrics, 1)
	assert.Equal(t, 9800.0, result.Metrics[0].TotalValue)
	assert.Equal(t, 4900.0, result.Metrics[0].AvgValue)
	assert.Equal(t, 2, result.Metrics[0].RecordCount)
}

func TestQuickCheck(t *testing.T) {
	svc, repo := setupService(t)

	report, err := svc.QuickCheck()
	require.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Zero(t, report.TotalRecords)

	addRecord(t, repo, "2024-01-15", "Diesel", 253.9, 1)

	report, err = svc.QuickCheck()
	require.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.Equal(t, 1, report.TotalRecords)
	require.Len(t, report.Breakdown, 1)
	assert.Equal(t, "2024", report.Breakdown[0].Year)
}
