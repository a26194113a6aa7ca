package anomaly

import (
	"testing"
	"time"

	"hydrospark/internal/errors"
)

func TestAnalyzePatternInsufficientData(t *testing.T) {
	_, err := AnalyzePattern(constantSeries(6, 1))
	if err == nil {
		t.Fatal("expected an error for a 6-point series")
	}
	if !errors.IsType(err, errors.TypeInsufficientData) {
		t.Errorf("expected INSUFFICIENT_DATA, got %v", err)
	}
}

func TestAnalyzePatternDescriptiveStats(t *testing.T) {
	s := daily(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 1, 2, 3, 4, 5, 6, 7)

	stats, err := AnalyzePattern(s)
	if err != nil {
		t.Fatalf("AnalyzePattern failed: %v", err)
	}

	if stats.Mean != 4 || stats.Median != 4 {
		t.Errorf("mean/median = %v/%v, want 4/4", stats.Mean, stats.Median)
	}
	if stats.Min != 1 || stats.Max != 7 {
		t.Errorf("min/max = %v/%v, want 1/7", stats.Min, stats.Max)
	}
	if stats.Total != 28 || stats.Count != 7 {
		t.Errorf("total/count = %v/%v, want 28/7", stats.Total, stats.Count)
	}
	if stats.Percentile25 != 2.5 || stats.Percentile75 != 5.5 {
		t.Errorf("p25/p75 = %v/%v, want 2.5/5.5", stats.Percentile25, stats.Percentile75)
	}
	if stats.Trend != nil {
		t.Error("7-point series should not carry a trend block")
	}
}

func TestAnalyzePatternTrend(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// 30 days at 1.0 followed by 30 days at 2.0: a 100% increase.
	vals := make([]float64, 60)
	for i := range vals {
		if i < 30 {
			vals[i] = 1
		} else {
			vals[i] = 2
		}
	}

	stats, err := AnalyzePattern(daily(start, vals...))
	if err != nil {
		t.Fatalf("AnalyzePattern failed: %v", err)
	}
	if stats.Trend == nil {
		t.Fatal("60-point series should carry a trend block")
	}
	if stats.Trend.RecentAvg != 2 || stats.Trend.PreviousAvg != 1 {
		t.Errorf("trend means = %v/%v, want 2/1", stats.Trend.RecentAvg, stats.Trend.PreviousAvg)
	}
	if stats.Trend.ChangePercent != 100 {
		t.Errorf("ChangePercent = %v, want 100", stats.Trend.ChangePercent)
	}
	if stats.Trend.Direction != "increasing" {
		t.Errorf("Direction = %q, want increasing", stats.Trend.Direction)
	}
}

func TestAnalyzePatternStableTrend(t *testing.T) {
	stats, err := AnalyzePattern(constantSeries(60, 3))
	if err != nil {
		t.Fatalf("AnalyzePattern failed: %v", err)
	}
	if stats.Trend == nil || stats.Trend.Direction != "stable" {
		t.Errorf("constant series should trend stable, got %+v", stats.Trend)
	}
}
