// Package forecast projects future usage and charges from historical
// observations using day-of-week patterns and a recent-vs-previous
// trend factor. It composes with core/rates to turn a usage forecast
// into a bill forecast.
package forecast

import (
	"time"

	"hydrospark/core/rates"
	"hydrospark/core/series"
	"hydrospark/internal/errors"
)

const (
	// minObservations is the shortest series a forecast can be fit on
	minObservations = 60

	// fittingWindow restricts pattern fitting to the most recent readings
	fittingWindow = 90

	// trendWindow sizes the recent-vs-previous trend comparison
	trendWindow = 30

	// confidenceZ is the z-score for the 95% confidence band
	confidenceZ = 1.96

	// confidenceLevel reported with every forecast point
	confidenceLevel = 95
)

// Point is a single forecast day
type Point struct {
	// Date of the predicted reading
	Date time.Time `json:"date"`

	// Predicted usage in CCF
	Predicted float64 `json:"predicted_usage"`

	// LowerBound of the confidence band, clamped at 0
	LowerBound float64 `json:"lower_bound"`

	// UpperBound of the confidence band
	UpperBound float64 `json:"upper_bound"`

	// Confidence level of the band, in percent
	Confidence int `json:"confidence"`
}

// Summary aggregates a usage forecast
type Summary struct {
	// TotalPredicted is the summed predicted usage over the horizon
	TotalPredicted float64 `json:"total_predicted_usage"`

	// AvgDaily is TotalPredicted / horizon
	AvgDaily float64 `json:"avg_daily_prediction"`

	// HorizonDays is the forecast length
	HorizonDays int `json:"forecast_days"`

	// TrendFactor is recent 30-day mean over the previous 30-day mean
	TrendFactor float64 `json:"trend_factor"`

	// TrendDirection is "increasing" (>1.05), "decreasing" (<0.95) or
	// "stable"
	TrendDirection string `json:"trend_direction"`
}

// HistoricalContext reports what the forecast was fit on
type HistoricalContext struct {
	Recent30DayAvg   float64 `json:"recent_30_day_avg"`
	Previous30DayAvg float64 `json:"previous_30_day_avg"`
	DataPointsUsed   int     `json:"data_points_used"`
}

// UsageForecast is a complete usage projection
type UsageForecast struct {
	Points     []Point           `json:"forecast"`
	Summary    Summary           `json:"summary"`
	Historical HistoricalContext `json:"historical_context"`
}

// weekdayPattern holds the fitted mean/std for one day of the week
type weekdayPattern struct {
	mean float64
	std  float64
}

// ForecastUsage projects horizonDays of future usage from the series.
// It requires at least 60 observations and returns an INSUFFICIENT_DATA
// error naming the shortfall otherwise.
//
// The series is sorted internally; caller ordering is not trusted.
func ForecastUsage(s series.Series, horizonDays int) (*UsageForecast, error) {
	if len(s) < minObservations {
		return nil, errors.InsufficientData("forecasting", minObservations, len(s))
	}
	if horizonDays < 1 {
		return nil, errors.Input("forecast horizon must be at least 1 day")
	}

	sorted := s.SortedByDate()
	window := sorted.Last(fittingWindow)
	patterns := fitWeekdayPatterns(window)

	recent := sorted.Last(trendWindow).Quantities()
	previous := sorted[len(sorted)-2*trendWindow : len(sorted)-trendWindow].Quantities()

	recentAvg := series.Mean(recent)
	previousAvg := series.Mean(previous)
	trendFactor := 1.0
	if previousAvg > 0 {
		trendFactor = recentAvg / previousAvg
	}

	lastDate := sorted[len(sorted)-1].Date
	points := make([]Point, 0, horizonDays)
	var totalPredicted float64

	for i := 1; i <= horizonDays; i++ {
		date := lastDate.AddDate(0, 0, i)
		pattern := patterns[weekdayIndex(date)]

		predicted := pattern.mean * trendFactor
		lower := predicted - confidenceZ*pattern.std
		if lower < 0 {
			lower = 0
		}
		upper := predicted + confidenceZ*pattern.std

		totalPredicted += series.Round2(predicted)
		points = append(points, Point{
			Date:       date,
			Predicted:  series.Round2(predicted),
			LowerBound: series.Round2(lower),
			UpperBound: series.Round2(upper),
			Confidence: confidenceLevel,
		})
	}

	direction := "stable"
	if trendFactor > 1.05 {
		direction = "increasing"
	} else if trendFactor < 0.95 {
		direction = "decreasing"
	}

	return &UsageForecast{
		Points: points,
		Summary: Summary{
			TotalPredicted: series.Round2(totalPredicted),
			AvgDaily:       series.Round2(totalPredicted / float64(horizonDays)),
			HorizonDays:    horizonDays,
			TrendFactor:    series.Round3(trendFactor),
			TrendDirection: direction,
		},
		Historical: HistoricalContext{
			Recent30DayAvg:   series.Round2(recentAvg),
			Previous30DayAvg: series.Round2(previousAvg),
			DataPointsUsed:   len(sorted),
		},
	}, nil
}

// fitWeekdayPatterns buckets the window by day of week and computes each
// bucket's mean and population std. A weekday with no observations falls
// back to the whole window's statistics so no future date is left
// undefined.
func fitWeekdayPatterns(window series.Series) [7]weekdayPattern {
	buckets := make([][]float64, 7)
	for _, obs := range window {
		day := weekdayIndex(obs.Date)
		buckets[day] = append(buckets[day], obs.Quantity)
	}

	all := window.Quantities()
	fallback := weekdayPattern{mean: series.Mean(all), std: series.StdDev(all)}

	var patterns [7]weekdayPattern
	for day := 0; day < 7; day++ {
		if len(buckets[day]) == 0 {
			patterns[day] = fallback
			continue
		}
		patterns[day] = weekdayPattern{
			mean: series.Mean(buckets[day]),
			std:  series.StdDev(buckets[day]),
		}
	}
	return patterns
}

// weekdayIndex maps a date to 0=Monday .. 6=Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ForecastInfo is the metadata attached to a bill forecast
type ForecastInfo struct {
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	DaysInMonth int    `json:"days_in_month"`
	IsForecast  bool   `json:"is_forecast"`
	Confidence  int    `json:"confidence"`
	Trend       string `json:"trend"`
}

// BillForecast is a bill breakdown computed from predicted usage
type BillForecast struct {
	rates.Bill

	// Forecast carries the projection metadata
	Forecast ForecastInfo `json:"forecast_info"`
}

// ForecastMonthlyBill projects the bill for a future month: it forecasts
// usage over that month's calendar days (leap-aware), then prices the
// total predicted quantity with the month's seasonal rates. An
// insufficient-data error from the usage forecast propagates unchanged.
func ForecastMonthlyBill(s series.Series, month time.Month, year int, sched *rates.Schedule) (*BillForecast, error) {
	days := daysInMonth(month, year)

	usage, err := ForecastUsage(s, days)
	if err != nil {
		return nil, err
	}

	bill := rates.ComputeBill(usage.Summary.TotalPredicted, month, sched)
	return &BillForecast{
		Bill: bill,
		Forecast: ForecastInfo{
			Month:       int(month),
			Year:        year,
			DaysInMonth: days,
			IsForecast:  true,
			Confidence:  confidenceLevel,
			Trend:       usage.Summary.TrendDirection,
		},
	}, nil
}

// daysInMonth resolves the calendar length of a month, accounting for
// leap years.
func daysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
