// Package cmd - insights and pattern commands
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hydrospark/core/anomaly"
	"hydrospark/core/forecast"
	"hydrospark/internal/seriesfile"
)

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights <usage-file>",
	Short: "Summarize usage habits and recommendations",
	Args:  cobra.ExactArgs(1),
	RunE:  runInsights,
}

// patternCmd represents the pattern command
var patternCmd = &cobra.Command{
	Use:   "pattern <usage-file>",
	Short: "Print descriptive statistics for a usage series",
	Args:  cobra.ExactArgs(1),
	RunE:  runPattern,
}

func runInsights(cmd *cobra.Command, args []string) error {
	obs, err := seriesfile.Load(args[0])
	if err != nil {
		return err
	}

	insights, err := forecast.UsageInsights(obs)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(insights)
	}

	fmt.Printf("Average daily usage: %.2f CCF (%s, variation %.1f%%)\n",
		insights.AvgDailyUsage, insights.UsageConsistency, insights.CoefficientOfVariation)
	fmt.Printf("Highest usage day: %s, lowest: %s\n\n",
		insights.HighestUsageDay, insights.LowestUsageDay)
	for day, avg := range insights.DayOfWeekPatterns {
		fmt.Printf("  %-9s %.2f CCF\n", day, avg)
	}
	fmt.Println()
	for _, rec := range insights.Recommendations {
		fmt.Printf("- %s\n", rec)
	}
	return nil
}

func runPattern(cmd *cobra.Command, args []string) error {
	obs, err := seriesfile.Load(args[0])
	if err != nil {
		return err
	}

	stats, err := anomaly.AnalyzePattern(obs)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(stats)
	}

	fmt.Printf("Readings: %d, total %.2f CCF\n", stats.Count, stats.Total)
	fmt.Printf("Mean %.2f, median %.2f, std %.2f, min %.2f, max %.2f\n",
		stats.Mean, stats.Median, stats.StdDev, stats.Min, stats.Max)
	fmt.Printf("Percentiles: p25 %.2f, p75 %.2f, p90 %.2f\n",
		stats.Percentile25, stats.Percentile75, stats.Percentile90)
	if stats.Trend != nil {
		fmt.Printf("Trend: %s (%.1f%% change, %.2f vs %.2f CCF)\n",
			stats.Trend.Direction, stats.Trend.ChangePercent,
			stats.Trend.RecentAvg, stats.Trend.PreviousAvg)
	}
	return nil
}
