package rates

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TierCharge is a single line item of the tier walk
type TierCharge struct {
	// Tier is the human-readable band label, e.g. "10-20 CCF"
	Tier string `json:"tier"`

	// Usage is the quantity consumed within this band
	Usage float64 `json:"usage"`

	// Rate is the unit price applied
	Rate float64 `json:"rate"`

	// Charge is Usage x Rate, rounded for output
	Charge float64 `json:"charge"`
}

// UsageCharge is the itemized usage portion of a bill, before fees.
// All monetary fields are rounded to 2 decimal places at this boundary;
// the walk itself accumulates at full precision.
type UsageCharge struct {
	// TierBreakdown lists the per-tier line items in ascending tier order
	TierBreakdown []TierCharge `json:"tier_breakdown"`

	// BaseCharge is the pre-multiplier subtotal of all tier charges
	BaseCharge float64 `json:"base_charge"`

	// Season resolved from the billing month
	Season Season `json:"season"`

	// SeasonalMultiplier applied to the subtotal
	SeasonalMultiplier float64 `json:"seasonal_multiplier"`

	// SeasonalAdjustment is the multiplier-induced delta, reported
	// separately for transparency
	SeasonalAdjustment float64 `json:"seasonal_adjustment"`

	// Total is the seasonally adjusted usage charge
	Total float64 `json:"usage_charge"`
}

// Bill is a complete bill breakdown: adjusted usage charge plus the
// fixed fees.
type Bill struct {
	// TotalUsage is the billed quantity in CCF
	TotalUsage float64 `json:"total_usage"`

	// UsageCharge is the seasonally adjusted usage total
	UsageCharge float64 `json:"usage_charge"`

	// BaseServiceFee is the flat service fee
	BaseServiceFee float64 `json:"base_service_fee"`

	// InfrastructureFee is the flat infrastructure fee
	InfrastructureFee float64 `json:"infrastructure_fee"`

	// TotalFees is the sum of the fixed fees
	TotalFees float64 `json:"total_fees"`

	// Total is the grand total due
	Total float64 `json:"total_amount"`

	// Breakdown itemizes the usage charge
	Breakdown UsageCharge `json:"breakdown"`
}

// ComputeUsageCharge walks the schedule's tiers in ascending order,
// consuming min(remaining, tier width) units at each tier's rate, then
// applies the month's seasonal multiplier to the subtotal.
//
// A quantity exactly on a tier boundary bills in the lower tier. The
// schedule is assumed valid (see Schedule.Validate); a malformed one
// produces undefined charges, not a runtime error.
func ComputeUsageCharge(quantity float64, month time.Month, s *Schedule) UsageCharge {
	charge, _ := computeUsageCharge(quantity, month, s)
	return charge
}

// computeUsageCharge additionally returns the unrounded adjusted total so
// ComputeBill can keep accumulating at full precision.
func computeUsageCharge(quantity float64, month time.Month, s *Schedule) (UsageCharge, decimal.Decimal) {
	season := SeasonOf(month)
	multiplier := decimal.NewFromFloat(s.Multipliers[season])

	remaining := decimal.NewFromFloat(quantity)
	subtotal := decimal.Zero
	breakdown := []TierCharge{}

	for _, tier := range s.Tiers {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		usage := remaining
		if !tier.Unbounded() {
			width := decimal.NewFromFloat(tier.Upper).Sub(decimal.NewFromFloat(tier.Lower))
			if width.LessThan(usage) {
				usage = width
			}
		}

		rate := decimal.NewFromFloat(tier.Rate)
		lineCharge := usage.Mul(rate)
		subtotal = subtotal.Add(lineCharge)
		remaining = remaining.Sub(usage)

		breakdown = append(breakdown, TierCharge{
			Tier:   tierLabel(tier),
			Usage:  round2(usage),
			Rate:   tier.Rate,
			Charge: round2(lineCharge),
		})
	}

	adjusted := subtotal.Mul(multiplier)
	adjustment := adjusted.Sub(subtotal)

	return UsageCharge{
		TierBreakdown:      breakdown,
		BaseCharge:         round2(subtotal),
		Season:             season,
		SeasonalMultiplier: s.Multipliers[season],
		SeasonalAdjustment: round2(adjustment),
		Total:              round2(adjusted),
	}, adjusted
}

// ComputeBill computes the complete bill for a usage quantity in a given
// month: the seasonally adjusted usage charge plus the fixed fees.
func ComputeBill(quantity float64, month time.Month, s *Schedule) Bill {
	breakdown, adjusted := computeUsageCharge(quantity, month, s)

	baseFee := decimal.NewFromFloat(s.Fees.BaseService)
	infraFee := decimal.NewFromFloat(s.Fees.Infrastructure)
	totalFees := baseFee.Add(infraFee)
	total := adjusted.Add(totalFees)

	return Bill{
		TotalUsage:        round2(decimal.NewFromFloat(quantity)),
		UsageCharge:       breakdown.Total,
		BaseServiceFee:    s.Fees.BaseService,
		InfrastructureFee: s.Fees.Infrastructure,
		TotalFees:         round2(totalFees),
		Total:             round2(total),
		Breakdown:         breakdown,
	}
}

func tierLabel(t Tier) string {
	if t.Unbounded() {
		return fmt.Sprintf("%g+ CCF", t.Lower)
	}
	return fmt.Sprintf("%g-%g CCF", t.Lower, t.Upper)
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
