package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/vanerueda/packsim/core/metrics"
	"github.com/vanerueda/packsim/infra/logger"
)

// InfluxSink writes simulation state to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep writes one point per cell plus a pack-level point.
func (s *InfluxSink) RecordStep(ev coremetrics.StepEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap := ev.Snapshot
	for i, c := range snap.Cells {
		p := write.NewPointWithMeasurement("cell_state").
			AddTag("run_id", ev.RunID).
			AddTag("cell", strconv.Itoa(i)).
			AddTag("case", strconv.Itoa(snap.Case)).
			AddField("soc", c.SoC).
			AddField("voltage", c.Voltage).
			AddField("ocv", c.OCV).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	p := write.NewPointWithMeasurement("pack_state").
		AddTag("run_id", ev.RunID).
		AddTag("case", strconv.Itoa(snap.Case)).
		AddTag("phase", snap.Phase.String()).
		AddField("step", snap.Step).
		AddField("spread", snap.Spread()).
		AddField("pack_voltage", snap.PackVoltage()).
		AddField("charging_active", snap.ChargingActive).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTransition writes the phase change as a point.
func (s *InfluxSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("phase_transition").
		AddTag("run_id", ev.RunID).
		AddTag("from", ev.From.String()).
		AddTag("to", ev.To.String()).
		AddField("step", ev.Step).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRunComplete writes the run summary.
func (s *InfluxSink) RecordRunComplete(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_complete").
		AddTag("run_id", ev.RunID).
		AddTag("case", strconv.Itoa(ev.Case)).
		AddField("steps", ev.Steps).
		AddField("final_spread", ev.FinalSpread).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
