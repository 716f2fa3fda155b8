// Package app wires the simulation engine to its drivers: the tick loop, the
// websocket renderer feed, the MQTT telemetry publisher and the metrics
// sinks. The engine itself never sees any of them.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vanerueda/packsim/config"
	coremetrics "github.com/vanerueda/packsim/core/metrics"
	"github.com/vanerueda/packsim/core/sim"
	"github.com/vanerueda/packsim/infra/logger"
	"github.com/vanerueda/packsim/infra/metrics"
	"github.com/vanerueda/packsim/infra/mqtt"
	"github.com/vanerueda/packsim/infra/ws"
	"github.com/vanerueda/packsim/internal/eventbus"
)

// Service owns the engine and drives it once per tick, fanning snapshots out
// to all configured renderers.
type Service struct {
	mu     sync.Mutex
	engine *sim.Engine
	runID  string

	tick     time.Duration
	maxSteps int

	sink      coremetrics.MetricsSink
	bus       *eventbus.TypedBus[sim.Snapshot]
	hub       *ws.Hub
	wsAddr    string
	promAddr  string
	publisher *mqtt.Publisher
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg.Logging.Level != "" {
		if err := logger.SetLevel(cfg.Logging.Level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	engine := sim.New(cfg.Simulation.Cells)
	if err := engine.Reset(cfg.Simulation.Case); err != nil {
		return nil, err
	}

	svc := &Service{
		engine:   engine,
		runID:    uuid.NewString(),
		tick:     time.Duration(cfg.Simulation.TickMS) * time.Millisecond,
		maxSteps: cfg.Simulation.MaxSteps,
		sink:     sink,
		bus:      eventbus.NewTyped[sim.Snapshot](),
		hub:      ws.NewHub(),
		wsAddr:   cfg.Server.WSAddress,
		promAddr: cfg.Server.PromAddress,
		log:      logg,
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT, svc.runID)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Reset restarts the run under the given case. It satisfies ws.Driver so
// connected renderers can switch strategies.
func (s *Service) Reset(caseID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Reset(caseID); err != nil {
		return err
	}
	s.runID = uuid.NewString()
	s.log.Infof("run %s: case %d restarted", s.runID, caseID)
	return nil
}

// Snapshot returns the current engine state.
func (s *Service) Snapshot() sim.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// Run drives the simulation until the context is cancelled. Without a
// websocket server the loop also ends once the run reaches the terminal
// phase or the step bound; with one it keeps serving so clients can reset
// and watch further runs.
func (s *Service) Run(ctx context.Context) error {
	interactive := s.wsAddr != ""

	if interactive {
		handler := ws.NewHandler(s.hub, s)
		srv := &http.Server{Addr: s.wsAddr, Handler: handler}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Errorf("ws server shutdown: %v", err)
			}
		}()
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.log.Errorf("ws server: %v", err)
			}
		}()
	}
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	go s.forwardToHub(ctx)
	if s.publisher != nil {
		go s.forwardToPublisher(ctx)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	completed := false
	lastRunID := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			runID, snap, transitioned, from := s.advance()
			now := time.Now()
			if runID != lastRunID {
				// A reset started a fresh run; its completion counts again.
				completed = false
				lastRunID = runID
			}

			if err := s.sink.RecordStep(coremetrics.StepEvent{RunID: runID, Snapshot: snap, Time: now}); err != nil {
				s.log.Errorf("record step: %v", err)
			}
			if transitioned {
				s.recordTransition(runID, from, snap, now)
			}
			s.bus.Publish(snap)

			if snap.Phase == sim.PhaseDone && !completed {
				completed = true
				s.recordRunComplete(runID, snap, now)
				s.log.Infof("run %s: case %d done after %d steps, spread %.4fV",
					runID, snap.Case, snap.Step, snap.Spread())
				if !interactive {
					return nil
				}
			}
			if s.maxSteps > 0 && snap.Step >= s.maxSteps && !interactive {
				s.log.Warnf("run %s: step bound %d reached in phase %s", runID, s.maxSteps, snap.Phase)
				return nil
			}
		}
	}
}

// advance performs one engine step under the lock and reports any phase
// transition it caused.
func (s *Service) advance() (runID string, snap sim.Snapshot, transitioned bool, from sim.Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from = s.engine.Phase()
	s.engine.Step()
	snap = s.engine.Snapshot()
	return s.runID, snap, snap.Phase != from, from
}

func (s *Service) recordTransition(runID string, from sim.Phase, snap sim.Snapshot, now time.Time) {
	rec, ok := s.sink.(coremetrics.TransitionRecorder)
	if !ok {
		return
	}
	ev := coremetrics.TransitionEvent{
		RunID: runID,
		From:  from,
		To:    snap.Phase,
		Step:  snap.Step,
		Time:  now,
	}
	if err := rec.RecordTransition(ev); err != nil {
		s.log.Errorf("record transition: %v", err)
	}
}

func (s *Service) recordRunComplete(runID string, snap sim.Snapshot, now time.Time) {
	rec, ok := s.sink.(coremetrics.RunRecorder)
	if !ok {
		return
	}
	ev := coremetrics.RunEvent{
		RunID:       runID,
		Case:        snap.Case,
		Steps:       snap.Step,
		FinalSpread: snap.Spread(),
		Time:        now,
	}
	if err := rec.RecordRunComplete(ev); err != nil {
		s.log.Errorf("record run: %v", err)
	}
}

func (s *Service) forwardToHub(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			msg, err := ws.SnapshotMessage(snap)
			if err != nil {
				s.log.Errorf("encode snapshot: %v", err)
				continue
			}
			s.hub.Broadcast(msg)
		}
	}
}

func (s *Service) forwardToPublisher(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			if err := s.publisher.PublishSnapshot(snap); err != nil {
				s.log.Errorf("publish snapshot: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	return nil
}
