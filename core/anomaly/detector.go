// Package anomaly flags outlier daily readings using population
// statistics over an entire observation series.
//
// Detection is deliberately one-sided: only unusually high usage is
// flagged (a leak pushes consumption up, never down). Low outliers pass
// through unreported.
package anomaly

import (
	"time"

	"hydrospark/core/series"
)

// DefaultSigmaThreshold is the number of standard deviations above the
// series mean at which a reading is flagged.
const DefaultSigmaThreshold = 2.0

// minObservations is the shortest series with enough statistical power
// for detection.
const minObservations = 30

// Record is one flagged reading together with the series-wide statistics
// it was judged against.
type Record struct {
	// Date of the flagged reading
	Date time.Time `json:"date"`

	// Usage is the observed quantity in CCF
	Usage float64 `json:"usage_ccf"`

	// AverageUsage is the mean of the full series
	AverageUsage float64 `json:"average_usage"`

	// StdDeviation is the population standard deviation of the full series
	StdDeviation float64 `json:"std_deviation"`

	// SigmaValue is how many standard deviations the reading lies above
	// the mean
	SigmaValue float64 `json:"sigma_value"`

	// DeviationPercent is the reading's deviation from the mean, as a
	// percentage of the mean
	DeviationPercent float64 `json:"deviation_percent"`
}

// Detect flags every observation whose sigma value exceeds
// sigmaThreshold, ordered by date ascending.
//
// Series shorter than 30 observations return an empty list (insufficient
// statistical power), as does a series with zero variance: no variance
// means no meaningful outliers, and it keeps the sigma computation away
// from a zero divisor.
func Detect(s series.Series, sigmaThreshold float64) []Record {
	if len(s) < minObservations {
		return nil
	}

	vals := s.Quantities()
	mean := series.Mean(vals)
	std := series.StdDev(vals)
	if std == 0 {
		return nil
	}

	var out []Record
	for _, obs := range s.SortedByDate() {
		sigma := (obs.Quantity - mean) / std
		if sigma <= sigmaThreshold {
			continue
		}
		out = append(out, Record{
			Date:             obs.Date,
			Usage:            obs.Quantity,
			AverageUsage:     series.Round2(mean),
			StdDeviation:     series.Round2(std),
			SigmaValue:       series.Round2(sigma),
			DeviationPercent: series.Round1((obs.Quantity - mean) / mean * 100),
		})
	}
	return out
}

// DetectRecent runs Detect over only the observations falling within the
// trailing `days` window ending at `now`.
func DetectRecent(s series.Series, days int, sigmaThreshold float64, now time.Time) []Record {
	cutoff := now.AddDate(0, 0, -days)
	var recent series.Series
	for _, obs := range s {
		if !obs.Date.Before(cutoff) {
			recent = append(recent, obs)
		}
	}
	return Detect(recent, sigmaThreshold)
}
