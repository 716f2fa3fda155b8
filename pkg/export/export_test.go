package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/vanerueda/packsim/core/sim"
)

func sampleHistory(t *testing.T) []sim.Snapshot {
	t.Helper()
	e := sim.New(nil)
	if err := e.Reset(1); err != nil {
		t.Fatal(err)
	}
	history := []sim.Snapshot{e.Snapshot()}
	e.Step()
	return append(history, e.Snapshot())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleHistory(t)); err != nil {
		t.Fatal(err)
	}
	var decoded []sim.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || len(decoded[0].Cells) != 3 {
		t.Fatalf("unexpected history shape: %d snapshots", len(decoded))
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleHistory(t)); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header plus 3 cells for each of 2 snapshots.
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}
	if rows[0][0] != "step" || rows[1][1] != "charging" {
		t.Fatalf("unexpected rows: %v %v", rows[0], rows[1])
	}
}
