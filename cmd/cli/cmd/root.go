// Package cmd provides the CLI commands for hydrospark.
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"hydrospark/core/rates"
	"hydrospark/internal/logging"
)

var (
	schedulePath string
	verbose      bool
	jsonOutput   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hydrospark",
	Short: "Analyze metered water usage: bills, anomalies and forecasts",
	Long: `hydrospark is the analytics toolkit of the HydroSpark utility platform.

It prices usage against a tiered, seasonally adjusted rate schedule,
flags statistically anomalous readings and forecasts future usage and
charges from a YAML usage file.

Examples:
  hydrospark bill --month 7 usage.yml
  hydrospark detect --sigma 2.5 usage.yml
  hydrospark forecast --days 30 usage.yml
  hydrospark forecast bill --year 2027 --month 7 usage.yml`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&schedulePath, "schedule", "", "rate schedule HCL file (default is the built-in schedule)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of text")

	rootCmd.AddCommand(billCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(patternCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogging() {
	cfg := logging.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	} else {
		cfg.Level = "warn"
	}
	_ = logging.Initialize(cfg)
}

// loadSchedule resolves the rate schedule for a command run.
func loadSchedule() (*rates.Schedule, error) {
	if schedulePath == "" {
		return rates.DefaultSchedule(), nil
	}
	return rates.LoadSchedule(schedulePath)
}

// printJSON renders a result as indented JSON.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hydrospark version 1.0.0")
	},
}
