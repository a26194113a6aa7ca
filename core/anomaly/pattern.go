package anomaly

import (
	"hydrospark/core/series"
	"hydrospark/internal/errors"
)

// minPatternObservations is the shortest series for which descriptive
// statistics are meaningful rather than misleading.
const minPatternObservations = 7

// trendWindow is the comparison window for the trend block: the most
// recent 30 observations against the 30 before them.
const trendWindow = 30

// Trend compares the most recent 30 observations to the prior 30
type Trend struct {
	// RecentAvg is the mean of the most recent 30 observations
	RecentAvg float64 `json:"recent_avg"`

	// PreviousAvg is the mean of the 30 observations before those
	PreviousAvg float64 `json:"previous_avg"`

	// ChangePercent is the relative change between the two means
	ChangePercent float64 `json:"change_percent"`

	// Direction is "increasing" (>5%), "decreasing" (<-5%) or "stable"
	Direction string `json:"direction"`
}

// PatternStats describes a usage series
type PatternStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Total  float64 `json:"total"`
	Count  int     `json:"count"`

	Percentile25 float64 `json:"percentile_25"`
	Percentile75 float64 `json:"percentile_75"`
	Percentile90 float64 `json:"percentile_90"`

	// Trend is present only when the series has at least 60 observations
	Trend *Trend `json:"trend,omitempty"`
}

// AnalyzePattern computes descriptive statistics over a usage series.
// Fewer than 7 observations returns an INSUFFICIENT_DATA error rather
// than a computed but misleading result.
func AnalyzePattern(s series.Series) (*PatternStats, error) {
	if len(s) < minPatternObservations {
		return nil, errors.InsufficientData("pattern analysis", minPatternObservations, len(s))
	}

	sorted := s.SortedByDate()
	vals := sorted.Quantities()

	stats := &PatternStats{
		Mean:         series.Round2(series.Mean(vals)),
		Median:       series.Round2(series.Median(vals)),
		StdDev:       series.Round2(series.StdDev(vals)),
		Min:          series.Round2(series.Min(vals)),
		Max:          series.Round2(series.Max(vals)),
		Total:        series.Round2(series.Sum(vals)),
		Count:        len(vals),
		Percentile25: series.Round2(series.Percentile(vals, 25)),
		Percentile75: series.Round2(series.Percentile(vals, 75)),
		Percentile90: series.Round2(series.Percentile(vals, 90)),
	}

	if len(vals) >= 2*trendWindow {
		recent := vals[len(vals)-trendWindow:]
		previous := vals[len(vals)-2*trendWindow : len(vals)-trendWindow]

		recentAvg := series.Mean(recent)
		previousAvg := series.Mean(previous)
		change := 0.0
		if previousAvg > 0 {
			change = (recentAvg - previousAvg) / previousAvg * 100
		}

		direction := "stable"
		if change > 5 {
			direction = "increasing"
		} else if change < -5 {
			direction = "decreasing"
		}

		stats.Trend = &Trend{
			RecentAvg:     series.Round2(recentAvg),
			PreviousAvg:   series.Round2(previousAvg),
			ChangePercent: series.Round1(change),
			Direction:     direction,
		}
	}

	return stats, nil
}
