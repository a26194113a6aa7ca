// Package cmd - detect command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"hydrospark/core/anomaly"
	"hydrospark/internal/seriesfile"
)

var detectSigma float64

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect <usage-file>",
	Short: "Flag anomalous readings in a usage file",
	Long: `Run statistical anomaly detection over a usage series.

Readings more than the sigma threshold above the series mean are
flagged. Series shorter than 30 readings, or with no variance, produce
no anomalies.

Examples:
  hydrospark detect usage.yml
  hydrospark detect --sigma 2.5 usage.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().Float64Var(&detectSigma, "sigma", anomaly.DefaultSigmaThreshold, "detection threshold in standard deviations")
}

func runDetect(cmd *cobra.Command, args []string) error {
	if detectSigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %g", detectSigma)
	}

	obs, err := seriesfile.Load(args[0])
	if err != nil {
		return err
	}

	records := anomaly.Detect(obs, detectSigma)
	summary := anomaly.Summarize(records)

	if jsonOutput {
		return printJSON(map[string]interface{}{
			"anomalies": records,
			"summary":   summary,
		})
	}

	if len(records) == 0 {
		fmt.Println("No anomalies detected.")
		return nil
	}

	fmt.Printf("%d anomalies detected (severity: %s)\n\n", summary.TotalAnomalies, summary.Severity)
	for _, r := range records {
		fmt.Printf("  %s  %.2f CCF  (%.2f sigma, +%.1f%% over the %.2f CCF mean)\n",
			r.Date.Format("2006-01-02"), r.Usage, r.SigmaValue, r.DeviationPercent, r.AverageUsage)
	}
	fmt.Printf("\nAverage deviation: %.1f%%, worst: %.1f%%\n",
		summary.AvgDeviationPercent, summary.MaxDeviationPercent)
	return nil
}
