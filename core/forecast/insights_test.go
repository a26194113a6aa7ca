package forecast

import (
	"testing"
	"time"

	"hydrospark/core/series"
	"hydrospark/internal/errors"
)

func TestUsageInsightsInsufficientData(t *testing.T) {
	_, err := UsageInsights(constantSeries(29, 1))
	if err == nil {
		t.Fatal("expected an error for a 29-point series")
	}
	if !errors.IsType(err, errors.TypeInsufficientData) {
		t.Errorf("expected INSUFFICIENT_DATA, got %v", err)
	}
}

func TestUsageInsightsConsistentSeries(t *testing.T) {
	insights, err := UsageInsights(constantSeries(30, 1))
	if err != nil {
		t.Fatalf("UsageInsights failed: %v", err)
	}

	if insights.UsageConsistency != ConsistencyVery {
		t.Errorf("consistency = %q, want %q", insights.UsageConsistency, ConsistencyVery)
	}
	if insights.CoefficientOfVariation != 0 {
		t.Errorf("CV = %v, want 0", insights.CoefficientOfVariation)
	}
	if insights.AvgDailyUsage != 1 {
		t.Errorf("AvgDailyUsage = %v, want 1", insights.AvgDailyUsage)
	}
	if len(insights.DayOfWeekPatterns) != 7 {
		t.Errorf("expected all 7 weekdays, got %d", len(insights.DayOfWeekPatterns))
	}
}

func TestUsageInsightsFindsExtremeDays(t *testing.T) {
	// Five weeks starting on a Monday; Saturdays run high, Tuesdays low.
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // Monday
	var s series.Series
	for i := 0; i < 35; i++ {
		q := 0.3
		switch i % 7 {
		case 5: // Saturday
			q = 0.45
		case 1: // Tuesday
			q = 0.2
		}
		s = append(s, series.Observation{Date: start.AddDate(0, 0, i), Quantity: q})
	}

	insights, err := UsageInsights(s)
	if err != nil {
		t.Fatalf("UsageInsights failed: %v", err)
	}
	if insights.HighestUsageDay != "Saturday" {
		t.Errorf("HighestUsageDay = %q, want Saturday", insights.HighestUsageDay)
	}
	if insights.LowestUsageDay != "Tuesday" {
		t.Errorf("LowestUsageDay = %q, want Tuesday", insights.LowestUsageDay)
	}
}

func TestRecommendationsAreAdditiveAndOrderStable(t *testing.T) {
	// Low, steady usage: only the neutral message.
	recs := recommendations(0.3, 10)
	if len(recs) != 1 {
		t.Fatalf("expected the single neutral message, got %v", recs)
	}

	// High usage only.
	recs = recommendations(0.8, 10)
	if len(recs) != 1 || recs[0] == "" {
		t.Fatalf("expected one high-usage recommendation, got %v", recs)
	}
	highUsageMsg := recs[0]

	// High usage and high variability: both fire, high-usage first.
	recs = recommendations(0.8, 60)
	if len(recs) != 2 {
		t.Fatalf("expected two recommendations, got %v", recs)
	}
	if recs[0] != highUsageMsg {
		t.Error("recommendation order is not stable")
	}
}

func TestUsageInsightsHighVariabilitySeries(t *testing.T) {
	// Alternate 0.1 and 2.0: CV well above 50%.
	vals := make([]float64, 40)
	for i := range vals {
		if i%2 == 0 {
			vals[i] = 0.1
		} else {
			vals[i] = 2.0
		}
	}
	s := daily(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), vals...)

	insights, err := UsageInsights(s)
	if err != nil {
		t.Fatalf("UsageInsights failed: %v", err)
	}
	if insights.UsageConsistency != ConsistencyVariable {
		t.Errorf("consistency = %q, want %q", insights.UsageConsistency, ConsistencyVariable)
	}
	if len(insights.Recommendations) != 2 {
		// avg is above 0.5 and variation above 50: both rules fire
		t.Errorf("expected 2 recommendations, got %v", insights.Recommendations)
	}
}
