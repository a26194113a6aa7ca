package rates

import (
	"math"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"hydrospark/internal/errors"
)

// scheduleFile is the HCL representation of a rate schedule:
//
//	tier {
//	  lower = 0
//	  upper = 10
//	  rate  = 2.50
//	}
//
//	tier {
//	  lower = 20 # no upper: unbounded final tier
//	  rate  = 3.50
//	}
//
//	season "summer" {
//	  multiplier = 1.2
//	}
//
//	fees {
//	  base_service   = 15.00
//	  infrastructure = 5.00
//	}
type scheduleFile struct {
	Tiers   []tierBlock   `hcl:"tier,block"`
	Seasons []seasonBlock `hcl:"season,block"`
	Fees    feesBlock     `hcl:"fees,block"`
}

type tierBlock struct {
	Lower float64  `hcl:"lower"`
	Upper *float64 `hcl:"upper,optional"`
	Rate  float64  `hcl:"rate"`
}

type seasonBlock struct {
	Name       string  `hcl:"name,label"`
	Multiplier float64 `hcl:"multiplier"`
}

type feesBlock struct {
	BaseService    float64 `hcl:"base_service"`
	Infrastructure float64 `hcl:"infrastructure"`
}

// LoadSchedule parses and validates a rate schedule from an HCL file.
func LoadSchedule(path string) (*Schedule, error) {
	var raw scheduleFile
	if err := hclsimple.DecodeFile(path, nil, &raw); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to parse rate schedule", err)
	}

	s := &Schedule{
		Multipliers: make(map[Season]float64, len(raw.Seasons)),
		Fees: Fees{
			BaseService:    raw.Fees.BaseService,
			Infrastructure: raw.Fees.Infrastructure,
		},
	}

	for _, t := range raw.Tiers {
		upper := math.Inf(1)
		if t.Upper != nil {
			upper = *t.Upper
		}
		s.Tiers = append(s.Tiers, Tier{Lower: t.Lower, Upper: upper, Rate: t.Rate})
	}

	for _, season := range raw.Seasons {
		switch Season(season.Name) {
		case SeasonSummer, SeasonWinter, SeasonShoulder:
			s.Multipliers[Season(season.Name)] = season.Multiplier
		default:
			return nil, errors.Newf(errors.TypeConfig, "unknown season %q", season.Name)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
