package metrics

import (
	coremetrics "github.com/LanderU/rmf-core/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records schedule change events in Prometheus metrics.
type PromSink struct {
	changes     *prometheus.CounterVec
	syncLatency *prometheus.HistogramVec
	entries     prometheus.Gauge
}

// NewPromSink registers schedule metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	changes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_changes_total",
		Help: "Total number of Changes committed to the schedule database",
	}, []string{"mode", "map_name"})
	syncLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_patch_sync_latency_seconds",
		Help:    "Time between a Query being sent and its Patch response arriving",
		Buckets: prometheus.DefBuckets,
	}, []string{"participant_id", "success"})
	entries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_live_entries",
		Help: "Number of live entries currently held by the schedule database",
	})

	if err := reg.Register(changes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			changes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(syncLatency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			syncLatency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(entries); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			entries = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{changes: changes, syncLatency: syncLatency, entries: entries}, nil
}

// RecordChange increments the per-mode, per-map change counter.
func (s *PromSink) RecordChange(ev coremetrics.ChangeEvent) error {
	s.changes.WithLabelValues(ev.Mode, ev.MapName).Inc()
	return nil
}

// RecordPatchSync records the round-trip latency of a Query/Patch exchange.
func (s *PromSink) RecordPatchSync(ev coremetrics.PatchSyncEvent) error {
	success := "false"
	if ev.Success {
		success = "true"
	}
	s.syncLatency.WithLabelValues(ev.ParticipantID, success).Observe(ev.Latency.Seconds())
	return nil
}

// RecordDatabaseSize sets the live-entries gauge.
func (s *PromSink) RecordDatabaseSize(ev coremetrics.DatabaseSizeEvent) error {
	s.entries.Set(float64(ev.EntryCount))
	return nil
}
