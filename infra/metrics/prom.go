package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/vanerueda/packsim/core/metrics"
)

// PromSink exposes simulation state as Prometheus metrics.
type PromSink struct {
	soc         *prometheus.GaugeVec
	voltage     *prometheus.GaugeVec
	spread      prometheus.Gauge
	packVoltage prometheus.Gauge
	steps       prometheus.Counter
	transitions *prometheus.CounterVec
	runs        *prometheus.CounterVec
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		soc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "packsim_cell_soc",
			Help: "State of charge per cell",
		}, []string{"cell"}),
		voltage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "packsim_cell_voltage_volts",
			Help: "Measured terminal voltage per cell",
		}, []string{"cell"}),
		spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "packsim_voltage_spread_volts",
			Help: "Max-min measured voltage difference across the pack",
		}),
		packVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "packsim_pack_voltage_volts",
			Help: "Series terminal voltage of the pack",
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "packsim_steps_total",
			Help: "Total number of simulation steps executed",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "packsim_phase_transitions_total",
			Help: "Phase transitions by source and target phase",
		}, []string{"from", "to"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "packsim_runs_completed_total",
			Help: "Completed simulation runs by case",
		}, []string{"case"}),
	}
	for _, c := range []prometheus.Collector{
		s.soc, s.voltage, s.spread, s.packVoltage, s.steps, s.transitions, s.runs,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordStep updates the per-cell gauges from the snapshot.
func (s *PromSink) RecordStep(ev coremetrics.StepEvent) error {
	for i, c := range ev.Snapshot.Cells {
		cell := strconv.Itoa(i)
		s.soc.WithLabelValues(cell).Set(c.SoC)
		s.voltage.WithLabelValues(cell).Set(c.Voltage)
	}
	s.spread.Set(ev.Snapshot.Spread())
	s.packVoltage.Set(ev.Snapshot.PackVoltage())
	s.steps.Inc()
	return nil
}

// RecordTransition counts the phase change.
func (s *PromSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	s.transitions.WithLabelValues(ev.From.String(), ev.To.String()).Inc()
	return nil
}

// RecordRunComplete counts the finished run.
func (s *PromSink) RecordRunComplete(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(strconv.Itoa(ev.Case)).Inc()
	return nil
}
