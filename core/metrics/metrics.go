package metrics

import (
	"time"

	"github.com/vanerueda/packsim/core/sim"
)

// StepEvent is emitted by the driver after every engine step.
type StepEvent struct {
	RunID    string
	Snapshot sim.Snapshot
	Time     time.Time
}

// TransitionEvent captures a pack-wide phase change.
type TransitionEvent struct {
	RunID string
	From  sim.Phase
	To    sim.Phase
	Step  int
	Time  time.Time
}

// RunEvent summarizes a completed run.
type RunEvent struct {
	RunID       string
	Case        int
	Steps       int
	FinalSpread float64
	Time        time.Time
}

// MetricsSink records per-step simulation state for observability purposes.
type MetricsSink interface {
	RecordStep(ev StepEvent) error
}

// TransitionRecorder records phase transitions.
type TransitionRecorder interface {
	RecordTransition(ev TransitionEvent) error
}

// RunRecorder records run completions.
type RunRecorder interface {
	RecordRunComplete(ev RunEvent) error
}

// NopSink implements MetricsSink and both recorders with no-op methods.
type NopSink struct{}

func (NopSink) RecordStep(StepEvent) error             { return nil }
func (NopSink) RecordTransition(TransitionEvent) error { return nil }
func (NopSink) RecordRunComplete(RunEvent) error       { return nil }
