package sim

import (
	"encoding/json"
	"math"
	"testing"
)

func TestCellStateLabels(t *testing.T) {
	c := CellState{SoC: 0.756, Voltage: 3.9072}
	if got := c.SoCLabel(); got != "75.6%" {
		t.Fatalf("soc label %q", got)
	}
	if got := c.VoltageLabel(); got != "3.91V" {
		t.Fatalf("voltage label %q", got)
	}
	if got := c.FillFraction(); got != 0.756 {
		t.Fatalf("fill fraction %v", got)
	}
	over := CellState{SoC: 1.2}
	if got := over.FillFraction(); got != 1 {
		t.Fatalf("fill fraction not capped: %v", got)
	}
}

func TestSnapshotSpreadAndPackVoltage(t *testing.T) {
	s := Snapshot{Cells: []CellState{{Voltage: 3.6}, {Voltage: 3.9}, {Voltage: 4.08}}}
	if got := s.Spread(); math.Abs(got-0.48) > 1e-12 {
		t.Fatalf("spread %v", got)
	}
	if got := s.PackVoltage(); math.Abs(got-11.58) > 1e-12 {
		t.Fatalf("pack voltage %v", got)
	}
	if (Snapshot{}).Spread() != 0 {
		t.Fatal("empty snapshot spread")
	}
}

func TestPhaseMarshalsAsString(t *testing.T) {
	b, err := json.Marshal(Snapshot{Phase: PhaseBalancing})
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Phase string `json:"phase"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Phase != "balancing" {
		t.Fatalf("phase encoded as %q", decoded.Phase)
	}
}
