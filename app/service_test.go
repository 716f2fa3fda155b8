package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vanerueda/packsim/config"
	coremetrics "github.com/vanerueda/packsim/core/metrics"
	"github.com/vanerueda/packsim/core/sim"
)

func newTestService(t *testing.T, caseID, maxSteps int) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Simulation.Case = caseID
	cfg.Simulation.TickMS = 1
	cfg.Simulation.MaxSteps = maxSteps
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return svc
}

func TestServiceRunsToCompletion(t *testing.T) {
	svc := newTestService(t, 2, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatal("run did not finish before deadline")
	}
	snap := svc.Snapshot()
	if snap.Phase != sim.PhaseDone {
		t.Fatalf("final phase %s", snap.Phase)
	}
	if snap.Spread() >= sim.TolVoltage {
		t.Fatalf("final spread %v", snap.Spread())
	}
}

func TestServiceStopsAtStepBound(t *testing.T) {
	svc := newTestService(t, 1, 5)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := svc.Snapshot()
	if snap.Step != 5 {
		t.Fatalf("stopped at step %d, want 5", snap.Step)
	}
	if snap.Phase == sim.PhaseDone {
		t.Fatal("run should have been cut off before done")
	}
}

// runCountingSink counts completed runs so tests can observe RecordRunComplete.
type runCountingSink struct {
	mu   sync.Mutex
	runs int
}

func (s *runCountingSink) RecordStep(coremetrics.StepEvent) error { return nil }

func (s *runCountingSink) RecordRunComplete(coremetrics.RunEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	return nil
}

func (s *runCountingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func TestServiceRecordsEachCompletedRun(t *testing.T) {
	svc := newTestService(t, 3, 0)
	sink := &runCountingSink{}
	svc.sink = sink
	// An interactive service keeps ticking after done so a reset can start a
	// fresh run. Cases 3 and 4 finish with a direct charging -> done
	// transition, so the second completion must still be recorded.
	svc.wsAddr = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	waitForRuns := func(want int) {
		t.Helper()
		deadline := time.Now().Add(30 * time.Second)
		for sink.count() < want {
			if time.Now().After(deadline) {
				t.Fatalf("completed runs %d, want %d", sink.count(), want)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitForRuns(1)
	if err := svc.Reset(4); err != nil {
		t.Fatalf("reset: %v", err)
	}
	waitForRuns(2)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestServiceResetSwitchesCase(t *testing.T) {
	svc := newTestService(t, 1, 0)
	first := svc.runID
	if err := svc.Reset(4); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if svc.runID == first {
		t.Fatal("reset did not rotate run id")
	}
	snap := svc.Snapshot()
	if snap.Case != 4 || snap.Step != 0 {
		t.Fatalf("snapshot after reset: case %d step %d", snap.Case, snap.Step)
	}
}

func TestServiceResetRejectsInvalidCase(t *testing.T) {
	svc := newTestService(t, 1, 0)
	err := svc.Reset(0)
	var ice *sim.InvalidCaseError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InvalidCaseError, got %v", err)
	}
}
