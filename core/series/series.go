// Package series defines the observation series shared by the analytics
// components: an ordered-or-not sequence of daily (date, quantity) readings
// for a single account.
package series

import (
	"sort"
	"time"
)

// Observation is a single metered reading. Quantity is in CCF (hundred
// cubic feet) and is assumed non-negative; negative readings are a data
// quality problem upstream of this package.
type Observation struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"usage_ccf"`
}

// Series is a sequence of observations for one account. The analytics
// components never mutate a Series they are given.
type Series []Observation

// SortedByDate returns a copy of the series sorted by date ascending.
// Caller ordering is never trusted by the windowed computations.
func (s Series) SortedByDate() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Quantities extracts the quantity values in series order.
func (s Series) Quantities() []float64 {
	vals := make([]float64, len(s))
	for i, obs := range s {
		vals[i] = obs.Quantity
	}
	return vals
}

// Last returns the trailing n observations (the whole series if n exceeds
// its length).
func (s Series) Last(n int) Series {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
