package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/vanerueda/packsim/core/metrics"
	"github.com/vanerueda/packsim/core/sim"
)

func newTestSink(t *testing.T) coremetrics.MetricsSink {
	t.Helper()
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	return s
}

func TestPromSinkRecordsStep(t *testing.T) {
	s := newTestSink(t)
	e := sim.New(nil)
	if err := e.Reset(1); err != nil {
		t.Fatal(err)
	}
	ev := coremetrics.StepEvent{RunID: "r1", Snapshot: e.Snapshot(), Time: time.Now()}
	if err := s.RecordStep(ev); err != nil {
		t.Fatalf("record step: %v", err)
	}
	ps := s.(*PromSink)
	if got := testutil.ToFloat64(ps.soc.WithLabelValues("0")); got != 0.70 {
		t.Fatalf("cell 0 soc gauge %v", got)
	}
	if got := testutil.ToFloat64(ps.steps); got != 1 {
		t.Fatalf("step counter %v", got)
	}
}

func TestPromSinkRecordsTransition(t *testing.T) {
	s := newTestSink(t)
	ev := coremetrics.TransitionEvent{From: sim.PhaseCharging, To: sim.PhaseBalancing}
	if err := s.(*PromSink).RecordTransition(ev); err != nil {
		t.Fatal(err)
	}
	got := testutil.ToFloat64(s.(*PromSink).transitions.WithLabelValues("charging", "balancing"))
	if got != 1 {
		t.Fatalf("transition counter %v", got)
	}
}

func TestPromSinkDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}
