// Package observability exposes Prometheus metrics for the emissions ledger.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	submissionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "emissions_ledger",
		Subsystem: "engine",
		Name:      "submissions_total",
		Help:      "Emission records created, by GHG scope and override flag.",
	}, []string{"scope", "override"})
	missingFactorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "emissions_ledger",
		Subsystem: "engine",
		Name:      "missing_factor_total",
		Help:      "Submissions rejected because no factor version applied.",
	}, []string{"activity_name"})
)

func init() {
	prometheus.MustRegister(submissionCounter, missingFactorCounter)
}

// RecordSubmission counts a stored emission record.
func RecordSubmission(scope int, override bool) {
	submissionCounter.WithLabelValues(strconv.Itoa(scope), strconv.FormatBool(override)).Inc()
}

// RecordMissingFactor counts a submission rejected for lack of a factor.
func RecordMissingFactor(activityName string) {
	missingFactorCounter.WithLabelValues(activityName).Inc()
}
