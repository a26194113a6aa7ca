package forecast

import (
	"hydrospark/core/series"
	"hydrospark/internal/errors"
)

// minInsightObservations is the shortest series insights are drawn from
const minInsightObservations = 30

// Consistency classification of a usage series, by coefficient of
// variation
const (
	ConsistencyVery     = "Very Consistent"
	ConsistencyModerate = "Moderately Consistent"
	ConsistencyVariable = "Highly Variable"
)

// highDailyUsageCCF is the absolute average daily usage above which a
// conservation recommendation fires.
const highDailyUsageCCF = 0.5

// highVariabilityPercent is the coefficient of variation above which an
// irregular-usage recommendation fires.
const highVariabilityPercent = 50

var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Insights describes an account's usage habits over its whole history
type Insights struct {
	// DayOfWeekPatterns maps day names to average usage on that day
	DayOfWeekPatterns map[string]float64 `json:"day_of_week_patterns"`

	// HighestUsageDay is the weekday with the highest average
	HighestUsageDay string `json:"highest_usage_day"`

	// LowestUsageDay is the weekday with the lowest average
	LowestUsageDay string `json:"lowest_usage_day"`

	// UsageConsistency classifies the coefficient of variation
	UsageConsistency string `json:"usage_consistency"`

	// CoefficientOfVariation is std/mean, in percent
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`

	// AvgDailyUsage is the whole-series mean
	AvgDailyUsage float64 `json:"avg_daily_usage"`

	// Recommendations are additive and order-stable
	Recommendations []string `json:"recommendations"`
}

// UsageInsights buckets the entire series by weekday, classifies how
// consistent consumption is and emits rule-based recommendations. It
// requires at least 30 observations.
func UsageInsights(s series.Series) (*Insights, error) {
	if len(s) < minInsightObservations {
		return nil, errors.InsufficientData("usage insights", minInsightObservations, len(s))
	}

	sorted := s.SortedByDate()
	vals := sorted.Quantities()

	buckets := make([][]float64, 7)
	for _, obs := range sorted {
		day := weekdayIndex(obs.Date)
		buckets[day] = append(buckets[day], obs.Quantity)
	}

	patterns := make(map[string]float64, 7)
	highest, lowest := -1, -1
	for day := 0; day < 7; day++ {
		if len(buckets[day]) == 0 {
			continue
		}
		avg := series.Mean(buckets[day])
		patterns[dayNames[day]] = series.Round2(avg)
		if highest < 0 || avg > series.Mean(buckets[highest]) {
			highest = day
		}
		if lowest < 0 || avg < series.Mean(buckets[lowest]) {
			lowest = day
		}
	}

	highestDay, lowestDay := "Unknown", "Unknown"
	if highest >= 0 {
		highestDay = dayNames[highest]
	}
	if lowest >= 0 {
		lowestDay = dayNames[lowest]
	}

	mean := series.Mean(vals)
	std := series.StdDev(vals)
	variation := 0.0
	if mean > 0 {
		variation = std / mean * 100
	}

	consistency := ConsistencyVariable
	if variation < 20 {
		consistency = ConsistencyVery
	} else if variation < 40 {
		consistency = ConsistencyModerate
	}

	return &Insights{
		DayOfWeekPatterns:      patterns,
		HighestUsageDay:        highestDay,
		LowestUsageDay:         lowestDay,
		UsageConsistency:       consistency,
		CoefficientOfVariation: series.Round1(variation),
		AvgDailyUsage:          series.Round2(mean),
		Recommendations:        recommendations(mean, variation),
	}, nil
}

// recommendations is a small additive rule set: rules that fire are
// appended in a fixed order, and a neutral message stands in when none
// fire.
func recommendations(avgUsage, variation float64) []string {
	var recs []string

	if avgUsage > highDailyUsageCCF {
		recs = append(recs, "Your daily usage is above average. Consider checking for leaks or reducing shower times.")
	}
	if variation > highVariabilityPercent {
		recs = append(recs, "Your usage varies significantly. This could indicate irregular usage patterns or potential leaks.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Your usage patterns look normal. Keep up the water conservation efforts!")
	}
	return recs
}
