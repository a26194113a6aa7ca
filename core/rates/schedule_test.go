package rates

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"hydrospark/internal/errors"
)

func TestDefaultScheduleIsValid(t *testing.T) {
	if err := DefaultSchedule().Validate(); err != nil {
		t.Fatalf("default schedule failed validation: %v", err)
	}
}

func TestValidateRejectsMalformedSchedules(t *testing.T) {
	base := func() *Schedule { return DefaultSchedule() }

	cases := []struct {
		name   string
		mutate func(*Schedule)
	}{
		{"no tiers", func(s *Schedule) { s.Tiers = nil }},
		{"first tier not at 0", func(s *Schedule) { s.Tiers[0].Lower = 1 }},
		{"gap between tiers", func(s *Schedule) { s.Tiers[1].Lower = 12 }},
		{"overlapping tiers", func(s *Schedule) { s.Tiers[1].Lower = 8 }},
		{"bounded last tier", func(s *Schedule) { s.Tiers[2].Upper = 100 }},
		{"negative rate", func(s *Schedule) { s.Tiers[0].Rate = -1 }},
		{"missing season", func(s *Schedule) { delete(s.Multipliers, SeasonWinter) }},
		{"non-positive multiplier", func(s *Schedule) { s.Multipliers[SeasonSummer] = 0 }},
		{"negative fee", func(s *Schedule) { s.Fees.BaseService = -5 }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := base()
			c.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}

const validScheduleHCL = `
tier {
  lower = 0
  upper = 10
  rate  = 2.50
}

tier {
  lower = 10
  upper = 20
  rate  = 3.00
}

tier {
  lower = 20
  rate  = 3.50
}

season "summer" {
  multiplier = 1.2
}

season "winter" {
  multiplier = 0.9
}

season "shoulder" {
  multiplier = 1.0
}

fees {
  base_service   = 15.00
  infrastructure = 5.00
}
`

func writeSchedule(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.hcl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSchedule(t *testing.T) {
	s, err := LoadSchedule(writeSchedule(t, validScheduleHCL))
	if err != nil {
		t.Fatalf("LoadSchedule failed: %v", err)
	}

	if len(s.Tiers) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(s.Tiers))
	}
	if !math.IsInf(s.Tiers[2].Upper, 1) {
		t.Errorf("tier without upper should be unbounded, got %v", s.Tiers[2].Upper)
	}
	if s.Multipliers[SeasonSummer] != 1.2 {
		t.Errorf("summer multiplier = %v, want 1.2", s.Multipliers[SeasonSummer])
	}
	if s.Fees.Infrastructure != 5.00 {
		t.Errorf("infrastructure fee = %v, want 5.00", s.Fees.Infrastructure)
	}
}

func TestLoadScheduleRejectsUnknownSeason(t *testing.T) {
	content := validScheduleHCL + `
season "monsoon" {
  multiplier = 2.0
}
`
	_, err := LoadSchedule(writeSchedule(t, content))
	if err == nil {
		t.Fatal("expected an error for unknown season")
	}
	if !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestLoadScheduleRejectsUnparseableFile(t *testing.T) {
	_, err := LoadSchedule(writeSchedule(t, "tier {{{"))
	if err == nil {
		t.Fatal("expected a parse error")
	}
}
