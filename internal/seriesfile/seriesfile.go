// Package seriesfile loads observation series from YAML usage files,
// the input format of the CLI:
//
//	readings:
//	  - date: 2026-06-01
//	    usage_ccf: 0.42
//	  - date: 2026-06-02
//	    usage_ccf: 0.39
package seriesfile

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hydrospark/core/series"
	"hydrospark/internal/errors"
)

const dateLayout = "2006-01-02"

type usageFile struct {
	Readings []reading `yaml:"readings"`
}

type reading struct {
	Date     string  `yaml:"date"`
	UsageCCF float64 `yaml:"usage_ccf"`
}

// Load reads a usage file into a series.
func Load(path string) (series.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "cannot read usage file %s", path)
	}
	return Parse(data)
}

// Parse decodes YAML usage data into a series.
func Parse(data []byte) (series.Series, error) {
	var file usageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.TypeInput, "cannot parse usage file", err)
	}

	out := make(series.Series, 0, len(file.Readings))
	for i, r := range file.Readings {
		date, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return nil, errors.Wrapf(errors.TypeInput, err,
				"reading %d has invalid date %q (want YYYY-MM-DD)", i, r.Date)
		}
		if r.UsageCCF < 0 {
			return nil, errors.Newf(errors.TypeInput,
				"reading %d has negative usage %g", i, r.UsageCCF)
		}
		out = append(out, series.Observation{Date: date, Quantity: r.UsageCCF})
	}
	return out, nil
}
