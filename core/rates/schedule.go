// Package rates implements the tiered, seasonally-adjusted rate engine.
// It is pure computation: a usage quantity, a calendar month and an
// immutable Schedule go in, an itemized bill comes out.
package rates

import (
	"math"
	"time"

	"hydrospark/internal/errors"
)

// Season is the seasonal band a calendar month falls into
type Season string

const (
	SeasonSummer   Season = "summer"
	SeasonWinter   Season = "winter"
	SeasonShoulder Season = "shoulder"
)

// SeasonOf resolves the season for a month using the fixed calendar rule:
// summer is June-August, winter is December-February, shoulder the rest.
func SeasonOf(month time.Month) Season {
	switch month {
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.December, time.January, time.February:
		return SeasonWinter
	default:
		return SeasonShoulder
	}
}

// Tier is a contiguous usage band with its own unit rate. The band covers
// [Lower, Upper); the final tier of a schedule is unbounded
// (Upper = +Inf).
type Tier struct {
	// Lower is the inclusive lower bound in CCF
	Lower float64 `json:"lower"`

	// Upper is the exclusive upper bound in CCF (+Inf for the last tier)
	Upper float64 `json:"upper"`

	// Rate is the unit price per CCF within this band
	Rate float64 `json:"rate"`
}

// Unbounded reports whether this is the open-ended final tier
func (t Tier) Unbounded() bool {
	return math.IsInf(t.Upper, 1)
}

// Fees are the fixed per-bill charges, independent of usage
type Fees struct {
	// BaseService is the flat service fee per bill
	BaseService float64 `json:"base_service"`

	// Infrastructure is the flat infrastructure fee per bill
	Infrastructure float64 `json:"infrastructure"`
}

// Schedule is a complete rate configuration. It must be treated as
// read-only for the duration of any computation using it.
type Schedule struct {
	// Tiers are the usage bands, ascending and contiguous from 0
	Tiers []Tier `json:"tiers"`

	// Multipliers maps each season to its positive multiplier
	Multipliers map[Season]float64 `json:"seasonal_multipliers"`

	// Fees are the fixed per-bill charges
	Fees Fees `json:"fees"`
}

// DefaultSchedule returns the utility's standard residential schedule.
func DefaultSchedule() *Schedule {
	return &Schedule{
		Tiers: []Tier{
			{Lower: 0, Upper: 10, Rate: 2.50},
			{Lower: 10, Upper: 20, Rate: 3.00},
			{Lower: 20, Upper: math.Inf(1), Rate: 3.50},
		},
		Multipliers: map[Season]float64{
			SeasonSummer:   1.2,
			SeasonWinter:   0.9,
			SeasonShoulder: 1.0,
		},
		Fees: Fees{
			BaseService:    15.00,
			Infrastructure: 5.00,
		},
	}
}

// Validate checks the configuration invariants: tiers cover [0, +Inf)
// contiguously with strictly increasing bounds and non-negative rates,
// every season has a positive multiplier, and fees are non-negative.
func (s *Schedule) Validate() error {
	if len(s.Tiers) == 0 {
		return errors.Config("rate schedule has no tiers")
	}
	if s.Tiers[0].Lower != 0 {
		return errors.Newf(errors.TypeConfig,
			"first tier must start at 0, starts at %g", s.Tiers[0].Lower)
	}
	for i, t := range s.Tiers {
		if t.Rate < 0 {
			return errors.Newf(errors.TypeConfig, "tier %d has negative rate %g", i, t.Rate)
		}
		if t.Upper <= t.Lower {
			return errors.Newf(errors.TypeConfig,
				"tier %d bounds not increasing: [%g, %g)", i, t.Lower, t.Upper)
		}
		if i > 0 && t.Lower != s.Tiers[i-1].Upper {
			return errors.Newf(errors.TypeConfig,
				"tier %d is not contiguous: previous ends at %g, tier starts at %g",
				i, s.Tiers[i-1].Upper, t.Lower)
		}
	}
	if !s.Tiers[len(s.Tiers)-1].Unbounded() {
		return errors.Config("last tier must be unbounded")
	}

	for _, season := range []Season{SeasonSummer, SeasonWinter, SeasonShoulder} {
		m, ok := s.Multipliers[season]
		if !ok {
			return errors.Newf(errors.TypeConfig, "missing multiplier for season %q", season)
		}
		if m <= 0 {
			return errors.Newf(errors.TypeConfig,
				"multiplier for season %q must be positive, got %g", season, m)
		}
	}

	if s.Fees.BaseService < 0 || s.Fees.Infrastructure < 0 {
		return errors.Config("fees must be non-negative")
	}
	return nil
}
