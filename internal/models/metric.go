package models

// MetricSteelProduction is the production series used for emission intensity.
const MetricSteelProduction = "Tons of Steel Produced"

// BusinessMetric is a production/operational series row. It has no foreign key
// into the emission tables; analytics joins it to emissions by calendar year
// and metric name only.
type BusinessMetric struct {
	ID         int64   `db:"id" json:"id"`
	Date       string  `db:"date" json:"date"`
	MetricName string  `db:"metric_name" json:"metric_name"`
	Value      float64 `db:"value" json:"value"`
	Unit       string  `db:"unit" json:"unit"`
	CreatedAt  int64   `db:"created_at" json:"created_at"`
}

// TableName returns the table name for BusinessMetric.
func (BusinessMetric) TableName() string {
	return "business_metrics"
}
