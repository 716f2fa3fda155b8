// Package export writes simulation step histories in formats consumable by
// external plotting tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/vanerueda/packsim/core/sim"
)

// WriteJSON writes the step history to w as a JSON array of snapshots.
func WriteJSON(w io.Writer, history []sim.Snapshot) error {
	enc := json.NewEncoder(w)
	return enc.Encode(history)
}

// WriteCSV writes the step history to w with one row per cell per step.
func WriteCSV(w io.Writer, history []sim.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "phase", "charging_active", "cell", "soc", "voltage", "ocv"}); err != nil {
		return err
	}
	for _, snap := range history {
		for i, c := range snap.Cells {
			rec := []string{
				strconv.Itoa(snap.Step),
				snap.Phase.String(),
				strconv.FormatBool(snap.ChargingActive),
				strconv.Itoa(i),
				strconv.FormatFloat(c.SoC, 'f', -1, 64),
				strconv.FormatFloat(c.Voltage, 'f', -1, 64),
				strconv.FormatFloat(c.OCV, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
