package db

import (
	"github.com/carbontrail/backend/internal/models"
)

// SeedSampleData loads a small fixed dataset: three 2024 factors, two
// calculated records, and nine business-metric rows. The caller is expected
// to invoke this only when CountRecords reports an empty ledger.
func (r *Repository) SeedSampleData() error {
	factors := []*models.EmissionFactor{
		{ActivityName: "Diesel", Unit: "KL", CO2eFactor: 2.539, Scope: 1, Source: "Sample Data", ValidFrom: "2024-01-01", ValidTo: "2024-12-31"},
		{ActivityName: "Natural Gas", Unit: "kNm3", CO2eFactor: 2.425, Scope: 1, Source: "Sample Data", ValidFrom: "2024-01-01", ValidTo: "2024-12-31"},
		{ActivityName: "Grid Electricity", Unit: "kWh", CO2eFactor: 0.8, Scope: 2, Source: "Sample Data", ValidFrom: "2024-01-01", ValidTo: "2024-12-31"},
	}
	for _, f := range factors {
		inserted, err := r.CreateFactor(f)
		if err != nil {
			return err
		}
		if !inserted {
			// Factor rows may survive a wiped record ledger; reuse them.
			existing, err := r.FindApplicableFactor(f.ActivityName, f.ValidFrom)
			if err != nil {
				return err
			}
			f.ID = existing.ID
		}
	}

	dieselID := factors[0].ID
	electricityID := factors[2].ID
	records := []*models.EmissionRecord{
		{ActivityDate: "2024-01-15", ActivityName: "Diesel", ActivityData: 100, Unit: "KL",
			EmissionFactorID: &dieselID, CalculatedCO2e: 253.9, Scope: 1},
		{ActivityDate: "2024-01-15", ActivityName: "Grid Electricity", ActivityData: 10000, Unit: "kWh",
			EmissionFactorID: &electricityID, CalculatedCO2e: 8000, Scope: 2},
	}
	for _, rec := range records {
		if err := r.CreateRecord(rec); err != nil {
			return err
		}
	}

	metrics := []*models.BusinessMetric{
		{Date: "2024-01-31", MetricName: models.MetricSteelProduction, Value: 5000, Unit: "tonnes"},
		{Date: "2024-02-29", MetricName: models.MetricSteelProduction, Value: 4800, Unit: "tonnes"},
		{Date: "2024-03-31", MetricName: models.MetricSteelProduction, Value: 5200, Unit: "tonnes"},
		{Date: "2024-04-30", MetricName: models.MetricSteelProduction, Value: 4900, Unit: "tonnes"},
		{Date: "2024-05-31", MetricName: models.MetricSteelProduction, Value: 5100, Unit: "tonnes"},
		{Date: "2024-06-30", MetricName: models.MetricSteelProduction, Value: 4850, Unit: "tonnes"},
		{Date: "2024-07-31", MetricName: models.MetricSteelProduction, Value: 5300, Unit: "tonnes"},
		{Date: "2024-08-31", MetricName: models.MetricSteelProduction, Value: 5000, Unit: "tonnes"},
		{Date: "2024-08-31", MetricName: "Employee Count", Value: 920, Unit: "employees"},
	}
	for _, m := range metrics {
		if err := r.CreateBusinessMetric(m); err != nil {
			return err
		}
	}

	return nil
}
