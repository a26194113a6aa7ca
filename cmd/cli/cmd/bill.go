// Package cmd - bill command
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hydrospark/core/rates"
	"hydrospark/core/series"
	"hydrospark/internal/seriesfile"
)

var (
	billMonth    int
	billQuantity float64
)

// billCmd represents the bill command
var billCmd = &cobra.Command{
	Use:   "bill [usage-file]",
	Short: "Compute a bill from a usage file or a raw quantity",
	Long: `Price a usage quantity against the tiered, seasonally adjusted
rate schedule.

With a usage file, the readings are summed into the billed quantity.
With --quantity, the file is not needed.

Examples:
  hydrospark bill --month 7 usage.yml
  hydrospark bill --month 1 --quantity 25
  hydrospark bill --month 7 --schedule rates.hcl usage.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBill,
}

func init() {
	billCmd.Flags().IntVarP(&billMonth, "month", "m", 0, "billing month (1-12, required)")
	billCmd.Flags().Float64VarP(&billQuantity, "quantity", "q", -1, "bill this quantity in CCF instead of summing a usage file")
	_ = billCmd.MarkFlagRequired("month")
}

func runBill(cmd *cobra.Command, args []string) error {
	if billMonth < 1 || billMonth > 12 {
		return fmt.Errorf("month must be 1-12, got %d", billMonth)
	}

	schedule, err := loadSchedule()
	if err != nil {
		return err
	}

	quantity := billQuantity
	if quantity < 0 {
		if len(args) == 0 {
			return fmt.Errorf("either a usage file or --quantity is required")
		}
		obs, err := seriesfile.Load(args[0])
		if err != nil {
			return err
		}
		quantity = series.Sum(obs.Quantities())
	}

	bill := rates.ComputeBill(quantity, time.Month(billMonth), schedule)
	if jsonOutput {
		return printJSON(bill)
	}
	fmt.Print(bill.Summary())
	return nil
}
