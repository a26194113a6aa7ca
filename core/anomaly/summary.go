package anomaly

import (
	"hydrospark/core/series"
)

// Severity classifies how far the worst anomaly strays from the mean
const (
	SeverityNone     = "none"
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Summary aggregates a detection run
type Summary struct {
	// TotalAnomalies is the number of flagged readings
	TotalAnomalies int `json:"total_anomalies"`

	// AvgDeviationPercent is the mean deviation of the flagged readings
	AvgDeviationPercent float64 `json:"avg_deviation_percent"`

	// MaxDeviationPercent is the worst deviation seen
	MaxDeviationPercent float64 `json:"max_deviation_percent"`

	// Severity is a step function of MaxDeviationPercent
	Severity string `json:"severity"`

	// MostRecent is the latest flagged record, nil when none
	MostRecent *Record `json:"most_recent,omitempty"`
}

// Summarize reduces a detection result to counts, deviation aggregates
// and a severity class. An empty input yields severity "none" with all
// numeric fields zero.
func Summarize(records []Record) Summary {
	if len(records) == 0 {
		return Summary{Severity: SeverityNone}
	}

	deviations := make([]float64, len(records))
	for i, r := range records {
		deviations[i] = r.DeviationPercent
	}
	maxDeviation := series.Max(deviations)

	severity := SeverityLow
	switch {
	case maxDeviation > 200:
		severity = SeverityCritical
	case maxDeviation > 100:
		severity = SeverityHigh
	case maxDeviation > 50:
		severity = SeverityMedium
	}

	mostRecent := records[len(records)-1]
	return Summary{
		TotalAnomalies:      len(records),
		AvgDeviationPercent: series.Round1(series.Mean(deviations)),
		MaxDeviationPercent: series.Round1(maxDeviation),
		Severity:            severity,
		MostRecent:          &mostRecent,
	}
}
