// Package cmd - forecast commands
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hydrospark/core/forecast"
	"hydrospark/internal/seriesfile"
)

var (
	forecastDays      int
	forecastBillYear  int
	forecastBillMonth int
)

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast <usage-file>",
	Short: "Forecast future usage from historical readings",
	Long: `Project daily usage forward using day-of-week patterns and a
recent-trend factor. Requires at least 60 readings.

Examples:
  hydrospark forecast --days 30 usage.yml
  hydrospark forecast bill --year 2027 --month 7 usage.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runForecast,
}

// forecastBillCmd forecasts a future month's bill
var forecastBillCmd = &cobra.Command{
	Use:   "bill <usage-file>",
	Short: "Forecast the bill for a future month",
	Args:  cobra.ExactArgs(1),
	RunE:  runForecastBill,
}

func init() {
	forecastCmd.Flags().IntVarP(&forecastDays, "days", "d", 30, "forecast horizon in days")

	forecastBillCmd.Flags().IntVar(&forecastBillYear, "year", 0, "target year (required)")
	forecastBillCmd.Flags().IntVar(&forecastBillMonth, "month", 0, "target month 1-12 (required)")
	_ = forecastBillCmd.MarkFlagRequired("year")
	_ = forecastBillCmd.MarkFlagRequired("month")

	forecastCmd.AddCommand(forecastBillCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	if forecastDays < 1 || forecastDays > 365 {
		return fmt.Errorf("days must be 1-365, got %d", forecastDays)
	}

	obs, err := seriesfile.Load(args[0])
	if err != nil {
		return err
	}

	result, err := forecast.ForecastUsage(obs, forecastDays)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Printf("Forecast for the next %d days (trend: %s, factor %.3f)\n\n",
		result.Summary.HorizonDays, result.Summary.TrendDirection, result.Summary.TrendFactor)
	for _, p := range result.Points {
		fmt.Printf("  %s  %.2f CCF  [%.2f - %.2f]\n",
			p.Date.Format("2006-01-02"), p.Predicted, p.LowerBound, p.UpperBound)
	}
	fmt.Printf("\nTotal predicted: %.2f CCF (%.2f/day)\n",
		result.Summary.TotalPredicted, result.Summary.AvgDaily)
	fmt.Printf("Recent 30-day average: %.2f CCF, previous: %.2f CCF\n",
		result.Historical.Recent30DayAvg, result.Historical.Previous30DayAvg)
	return nil
}

func runForecastBill(cmd *cobra.Command, args []string) error {
	if forecastBillMonth < 1 || forecastBillMonth > 12 {
		return fmt.Errorf("month must be 1-12, got %d", forecastBillMonth)
	}

	schedule, err := loadSchedule()
	if err != nil {
		return err
	}
	obs, err := seriesfile.Load(args[0])
	if err != nil {
		return err
	}

	result, err := forecast.ForecastMonthlyBill(obs, time.Month(forecastBillMonth), forecastBillYear, schedule)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Printf("Forecast bill for %04d-%02d (%d days, trend: %s)\n\n",
		result.Forecast.Year, result.Forecast.Month, result.Forecast.DaysInMonth, result.Forecast.Trend)
	fmt.Print(result.Summary())
	return nil
}
