package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/vanerueda/packsim/app"
	"github.com/vanerueda/packsim/config"
	"github.com/vanerueda/packsim/core/sim"
)

var reportBound int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every strategy headless and print end-of-run statistics",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportBound, "bound", app.DefaultStepBound, "maximum steps per run")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s %8s %12s %12s %12s %12s\n",
		"strategy", "steps", "mean_v", "stddev_v", "spread_v", "min_soc")

	for caseID := 1; caseID <= 4; caseID++ {
		e := sim.New(cfg.Simulation.Cells)
		if err := e.Reset(caseID); err != nil {
			return err
		}
		if err := app.RunToCompletion(e, reportBound, nil); err != nil {
			return fmt.Errorf("case %d: %w", caseID, err)
		}
		snap := e.Snapshot()

		voltages := make([]float64, len(snap.Cells))
		minSoC := 1.0
		for i, c := range snap.Cells {
			voltages[i] = c.Voltage
			if c.SoC < minSoC {
				minSoC = c.SoC
			}
		}
		mean, std := stat.MeanStdDev(voltages, nil)
		strat, _ := sim.StrategyFromCase(caseID)
		fmt.Fprintf(out, "%-12s %8d %12.4f %12.4f %12.4f %12.4f\n",
			strat, snap.Step, mean, std, snap.Spread(), minSoC)
	}
	return nil
}
