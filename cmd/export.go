package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanerueda/packsim/app"
	"github.com/vanerueda/packsim/config"
	"github.com/vanerueda/packsim/core/sim"
	"github.com/vanerueda/packsim/pkg/export"
)

var (
	exportFormat string
	exportOut    string
	exportBound  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the configured case headless and export the step history",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output file, - for stdout")
	exportCmd.Flags().IntVar(&exportBound, "bound", app.DefaultStepBound, "maximum steps")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	e := sim.New(cfg.Simulation.Cells)
	if err := e.Reset(cfg.Simulation.Case); err != nil {
		return err
	}
	history := []sim.Snapshot{e.Snapshot()}
	if err := app.RunToCompletion(e, exportBound, func(s sim.Snapshot) {
		history = append(history, s)
	}); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error while closing %s: %v\n", exportOut, cerr)
			}
		}()
		w = f
	}

	switch exportFormat {
	case "csv":
		return export.WriteCSV(w, history)
	case "json":
		return export.WriteJSON(w, history)
	default:
		return fmt.Errorf("unknown format %q", exportFormat)
	}
}
