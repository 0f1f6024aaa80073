// Package analytics provides read-only aggregate reporting over the emission
// ledger and the business-metrics series.
package analytics

import (
	"math"
	"strconv"
	"time"

	"github.com/carbontrail/backend/internal/db"
	apperrors "github.com/carbontrail/backend/internal/errors"
	"github.com/carbontrail/backend/internal/models"
)

// IntensityUnit labels the intensity ratio: emissions per tonne of steel.
const IntensityUnit = "kgCO2e/tonne"

// Repository captures the aggregation queries the service needs.
type Repository interface {
	YearScopeTotals(years ...string) ([]db.YearScopeTotal, error)
	YearScopeBreakdownAll() ([]db.YearScopeBreakdown, error)
	TotalEmissionsForYear(year string) (float64, error)
	ProductionTotalForYear(metricName, year string) (float64, error)
	HotspotTotals(year string) ([]db.HotspotTotal, error)
	MonthlyTotals(year string) ([]db.MonthScopeTotal, error)
	MetricSummariesForYear(year string) ([]db.MetricSummary, error)
	CountRecords() (int, error)
}

// Service answers aggregate queries. It never writes.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// YoYResult is the year-over-year comparison for two calendar years.
type YoYResult struct {
	CurrentYear  int                `json:"current_year"`
	PreviousYear int                `json:"previous_year"`
	Data         []db.YearScopeTotal `json:"data"`
}

// YearOverYear sums emissions by (year, scope) for the given year and the one
// before it. A zero year means the current calendar year.
func (s *Service) YearOverYear(year int) (*YoYResult, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	current := strconv.Itoa(year)
	previous := strconv.Itoa(year - 1)

	rows, err := s.repo.YearScopeTotals(previous, current)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "year-over-year query failed", err)
	}
	return &YoYResult{CurrentYear: year, PreviousYear: year - 1, Data: rows}, nil
}

// YearOverYearAllYears returns the unfiltered (year, scope) totals for every
// year in the ledger. Debug variant of YearOverYear.
func (s *Service) YearOverYearAllYears() ([]db.YearScopeTotal, error) {
	rows, err := s.repo.YearScopeTotals()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "all-years query failed", err)
	}
	return rows, nil
}

// IntensityResult is emissions normalized by steel production for one year.
type IntensityResult struct {
	Year            int     `json:"year"`
	TotalEmissions  float64 `json:"total_emissions"`
	TotalProduction float64 `json:"total_production"`
	Intensity       float64 `json:"intensity"`
	Unit            string  `json:"unit"`
}

// Intensity divides the year's emissions by its steel production. Zero or
// absent production yields an intensity of 0, never an error or infinity.
func (s *Service) Intensity(year int) (*IntensityResult, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	yearStr := strconv.Itoa(year)

	emissions, err := s.repo.TotalEmissionsForYear(yearStr)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "emissions total query failed", err)
	}
	production, err := s.repo.ProductionTotalForYear(models.MetricSteelProduction, yearStr)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "production total query failed", err)
	}

	intensity := 0.0
	if production != 0 {
		intensity = emissions / production
	}
	return &IntensityResult{
		Year:            year,
		TotalEmissions:  emissions,
		TotalProduction: production,
		Intensity:       intensity,
		Unit:            IntensityUnit,
	}, nil
}

// Hotspot is one (activity, scope) bucket with its share of the year total.
type Hotspot struct {
	db.HotspotTotal
	Percentage float64 `json:"percentage"`
}

// HotspotsResult ranks activity/scope pairs by their share of a year's total.
type HotspotsResult struct {
	Year           int       `json:"year"`
	TotalEmissions float64   `json:"total_emissions"`
	Hotspots       []Hotspot `json:"hotspots"`
}

// Hotspots returns the year's emissions grouped by (activity, scope), largest
// first, each with its percentage of the grand total rounded to two decimals.
// Percentages are 0 when the grand total is 0.
func (s *Service) Hotspots(year int) (*HotspotsResult, error) {
	if year == 0 {
		year = time.Now().Year()
	}

	rows, err := s.repo.HotspotTotals(strconv.Itoa(year))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "hotspot query failed", err)
	}

	var total float64
	for _, row := range rows {
		total += row.TotalCO2e
	}

	hotspots := make([]Hotspot, 0, len(rows))
	for _, row := range rows {
		pct := 0.0
		if total > 0 {
			pct = math.Round(row.TotalCO2e/total*100*100) / 100
		}
		hotspots = append(hotspots, Hotspot{HotspotTotal: row, Percentage: pct})
	}
	return &HotspotsResult{Year: year, TotalEmissions: total, Hotspots: hotspots}, nil
}

// TrendsResult is the month-by-month emissions breakdown for one year.
type TrendsResult struct {
	Year int                  `json:"year"`
	Data []db.MonthScopeTotal `json:"data"`
}

// MonthlyTrends sums emissions by (year-month, scope), ascending.
func (s *Service) MonthlyTrends(year int) (*TrendsResult, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	rows, err := s.repo.MonthlyTotals(strconv.Itoa(year))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "monthly trends query failed", err)
	}
	return &TrendsResult{Year: year, Data: rows}, nil
}

// SummaryResult is the per-metric rollup of the business series for one year.
type SummaryResult struct {
	Year    int                `json:"year"`
	Metrics []db.MetricSummary `json:"metrics"`
}

// MetricsSummary rolls up business metrics per name for one year.
func (s *Service) MetricsSummary(year int) (*SummaryResult, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	rows, err := s.repo.MetricSummariesForYear(strconv.Itoa(year))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "metrics summary query failed", err)
	}
	return &SummaryResult{Year: year, Metrics: rows}, nil
}

// HealthReport is the quick-check snapshot of ledger state.
type HealthReport struct {
	TotalRecords int                     `json:"total_records"`
	Breakdown    []db.YearScopeBreakdown `json:"breakdown_by_year_scope"`
	CurrentDate  string                  `json:"current_date"`
	Healthy      bool                    `json:"database_seems_healthy"`
}

// QuickCheck reports the record count and the per-year/scope breakdown.
func (s *Service) QuickCheck() (*HealthReport, error) {
	total, err := s.repo.CountRecords()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "record count query failed", err)
	}
	breakdown, err := s.repo.YearScopeBreakdownAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "breakdown query failed", err)
	}
	return &HealthReport{
		TotalRecords: total,
		Breakdown:    breakdown,
		CurrentDate:  time.Now().UTC().Format(time.RFC3339),
		Healthy:      total > 0,
	}, nil
}
