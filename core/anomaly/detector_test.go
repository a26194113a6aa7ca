package anomaly

import (
	"math"
	"reflect"
	"testing"
	"time"

	"hydrospark/core/series"
)

func daily(start time.Time, quantities ...float64) series.Series {
	s := make(series.Series, len(quantities))
	for i, q := range quantities {
		s[i] = series.Observation{Date: start.AddDate(0, 0, i), Quantity: q}
	}
	return s
}

func constantSeries(n int, q float64) series.Series {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = q
	}
	return daily(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), vals...)
}

func TestDetectShortSeriesReturnsEmpty(t *testing.T) {
	s := constantSeries(29, 5)
	s[10].Quantity = 500 // would be a blatant outlier with enough data

	if got := Detect(s, DefaultSigmaThreshold); got != nil {
		t.Errorf("expected no anomalies for a 29-point series, got %d", len(got))
	}
}

func TestDetectZeroVarianceReturnsEmpty(t *testing.T) {
	if got := Detect(constantSeries(30, 5), DefaultSigmaThreshold); got != nil {
		t.Errorf("expected no anomalies for a zero-variance series, got %d", len(got))
	}
}

func TestDetectSingleSpike(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 32)
	for i := range vals {
		vals[i] = 1
	}
	vals[20] = 100
	s := daily(start, vals...)

	records := Detect(s, DefaultSigmaThreshold)
	if len(records) != 1 {
		t.Fatalf("expected exactly 1 anomaly, got %d", len(records))
	}

	rec := records[0]
	if !rec.Date.Equal(start.AddDate(0, 0, 20)) {
		t.Errorf("anomaly date = %v, want day 20", rec.Date)
	}
	if rec.SigmaValue <= DefaultSigmaThreshold {
		t.Errorf("sigma value %v should exceed the threshold", rec.SigmaValue)
	}

	// Statistics must be the population statistics of the full 32-point
	// series: mean 131/32 = 4.09375, population std ~17.2253.
	if math.Abs(rec.AverageUsage-4.09) > 0.005 {
		t.Errorf("AverageUsage = %v, want 4.09", rec.AverageUsage)
	}
	if math.Abs(rec.StdDeviation-17.23) > 0.005 {
		t.Errorf("StdDeviation = %v, want 17.23", rec.StdDeviation)
	}
}

func TestDetectIsOneSided(t *testing.T) {
	// A deep low outlier must not be flagged; only high outliers are.
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = 10 + 0.1*float64(i%5)
	}
	vals[7] = 0.01
	s := daily(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), vals...)

	for _, rec := range Detect(s, DefaultSigmaThreshold) {
		if rec.Usage <= rec.AverageUsage {
			t.Errorf("low reading %v was flagged; detection must be one-sided", rec.Usage)
		}
	}
}

func TestDetectOrdersByDateAscending(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = 1
	}
	vals[5] = 50
	vals[30] = 60
	s := daily(start, vals...)

	// Feed the series in reverse order; output must still be ascending.
	reversed := make(series.Series, len(s))
	for i, obs := range s {
		reversed[len(s)-1-i] = obs
	}

	records := Detect(reversed, DefaultSigmaThreshold)
	if len(records) != 2 {
		t.Fatalf("expected 2 anomalies, got %d", len(records))
	}
	if !records[0].Date.Before(records[1].Date) {
		t.Errorf("anomalies not ordered by date: %v, %v", records[0].Date, records[1].Date)
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	vals := make([]float64, 35)
	for i := range vals {
		vals[i] = float64(i % 7)
	}
	vals[12] = 90
	s := daily(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), vals...)

	first := Detect(s, DefaultSigmaThreshold)
	second := Detect(s, DefaultSigmaThreshold)
	if !reflect.DeepEqual(first, second) {
		t.Error("Detect is not deterministic for identical inputs")
	}
}

func TestDetectRecentFiltersWindow(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 90)
	for i := range vals {
		vals[i] = 1 + 0.01*float64(i%3)
	}
	vals[2] = 80 // old spike, outside the window
	s := daily(start, vals...)

	now := start.AddDate(0, 0, 89)
	records := DetectRecent(s, 30, DefaultSigmaThreshold, now)
	for _, rec := range records {
		if rec.Date.Before(now.AddDate(0, 0, -30)) {
			t.Errorf("record %v falls outside the recent window", rec.Date)
		}
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.Severity != SeverityNone {
		t.Errorf("Severity = %q, want %q", sum.Severity, SeverityNone)
	}
	if sum.TotalAnomalies != 0 || sum.AvgDeviationPercent != 0 || sum.MaxDeviationPercent != 0 {
		t.Errorf("empty summary should be all zeros: %+v", sum)
	}
	if sum.MostRecent != nil {
		t.Error("empty summary should have no most-recent record")
	}
}

func TestSummarizeSeveritySteps(t *testing.T) {
	cases := []struct {
		maxDeviation float64
		want         string
	}{
		{30, SeverityLow},
		{51, SeverityMedium},
		{101, SeverityHigh},
		{201, SeverityCritical},
	}
	for _, c := range cases {
		sum := Summarize([]Record{{DeviationPercent: c.maxDeviation}})
		if sum.Severity != c.want {
			t.Errorf("max deviation %v: severity = %q, want %q", c.maxDeviation, sum.Severity, c.want)
		}
	}
}

func TestSummarizeAggregates(t *testing.T) {
	records := []Record{
		{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), DeviationPercent: 60},
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), DeviationPercent: 120},
	}
	sum := Summarize(records)

	if sum.TotalAnomalies != 2 {
		t.Errorf("TotalAnomalies = %d, want 2", sum.TotalAnomalies)
	}
	if sum.AvgDeviationPercent != 90 {
		t.Errorf("AvgDeviationPercent = %v, want 90", sum.AvgDeviationPercent)
	}
	if sum.MaxDeviationPercent != 120 {
		t.Errorf("MaxDeviationPercent = %v, want 120", sum.MaxDeviationPercent)
	}
	if sum.MostRecent == nil || !sum.MostRecent.Date.Equal(records[1].Date) {
		t.Errorf("MostRecent should be the latest record, got %+v", sum.MostRecent)
	}
}
