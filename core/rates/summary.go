package rates

import (
	"fmt"
	"strings"
)

// Summary renders a human-readable bill for statements and CLI output.
func (b Bill) Summary() string {
	var sb strings.Builder

	sb.WriteString("HYDROSPARK WATER BILL SUMMARY\n")
	sb.WriteString("================================\n\n")
	fmt.Fprintf(&sb, "Total Water Usage: %g CCF\n\n", b.TotalUsage)

	fmt.Fprintf(&sb, "USAGE CHARGES (%s)\n", strings.ToUpper(string(b.Breakdown.Season)))
	fmt.Fprintf(&sb, "Season Multiplier: %gx\n", b.Breakdown.SeasonalMultiplier)

	for _, tier := range b.Breakdown.TierBreakdown {
		fmt.Fprintf(&sb, "  %s: %g CCF x $%.2f/CCF = $%.2f\n",
			tier.Tier, tier.Usage, tier.Rate, tier.Charge)
	}
	if b.Breakdown.SeasonalAdjustment != 0 {
		fmt.Fprintf(&sb, "  Seasonal Adjustment: $%.2f\n", b.Breakdown.SeasonalAdjustment)
	}

	sb.WriteString("\nFEES & CHARGES\n")
	fmt.Fprintf(&sb, "  Base Service Fee: $%.2f\n", b.BaseServiceFee)
	fmt.Fprintf(&sb, "  Infrastructure Fee: $%.2f\n", b.InfrastructureFee)

	fmt.Fprintf(&sb, "\nTOTAL AMOUNT DUE: $%.2f\n", b.Total)
	sb.WriteString("================================\n")

	return sb.String()
}
