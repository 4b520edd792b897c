// Package sync implements the reference participant-sync adapter: a
// background process that periodically asks a remote
// participant's schedule, over MQTT, for everything that changed since
// the last watermark it saw, and merges the resulting Patch into a local
// mirror Database. This is a sample transport, not a required component
// — a deployment is free to replace it with any mechanism that keeps two
// Databases converged.
package sync

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/LanderU/rmf-core/config"
	coremetrics "github.com/LanderU/rmf-core/core/metrics"
	"github.com/LanderU/rmf-core/core/monitoring"
	"github.com/LanderU/rmf-core/core/schedule"
	"github.com/LanderU/rmf-core/infra/logger"
	"github.com/LanderU/rmf-core/infra/mqtt"
)

// Manager polls a set of remote participants for schedule Patches and
// applies them to a local mirror Database.
type Manager struct {
	cfg          config.SyncConfig
	cli          mqtt.Client
	db           *schedule.Database
	sink         coremetrics.PatchSyncRecorder
	log          logger.Logger
	participants []string

	watermarks map[string]uint64

	pollReq     prometheus.Counter
	pollResp    prometheus.Counter
	pollTimeout prometheus.Counter
	lastCollect prometheus.Gauge
	latency     prometheus.Histogram
}

// NewManager prepares a Manager that syncs db against the given
// participants using cli as the query/patch transport.
func NewManager(cli mqtt.Client, db *schedule.Database, cfg config.SyncConfig, sink coremetrics.PatchSyncRecorder, participants []string) *Manager {
	m := &Manager{
		cfg:          cfg,
		cli:          cli,
		db:           db,
		sink:         sink,
		log:          logger.New("sync"),
		participants: participants,
		watermarks:   make(map[string]uint64),
		pollReq:      prometheus.NewCounter(prometheus.CounterOpts{Name: "sync_poll_requests_total", Help: "Number of schedule sync poll requests"}),
		pollResp:     prometheus.NewCounter(prometheus.CounterOpts{Name: "sync_poll_responses_total", Help: "Number of schedule sync poll responses"}),
		pollTimeout:  prometheus.NewCounter(prometheus.CounterOpts{Name: "sync_poll_timeout_total", Help: "Number of schedule sync poll timeouts"}),
		lastCollect:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "sync_last_collect_timestamp_seconds", Help: "Unix timestamp of the last successful sync"}),
		latency:      prometheus.NewHistogram(prometheus.HistogramOpts{Name: "sync_latency_seconds", Help: "Latency of a sync round trip", Buckets: prometheus.DefBuckets}),
	}
	prometheus.MustRegister(m.pollReq, m.pollResp, m.pollTimeout, m.lastCollect, m.latency)
	return m
}

// Start runs the poll loop until ctx is done. Each tick, every configured
// participant is queried in turn; a failure or timeout against one
// participant does not stop the others.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(m.cfg.Interval()) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, p := range m.participants {
				m.syncOne(ctx, p)
			}
		case <-ctx.Done():
			return
		}
	}
}

// syncOne runs a single query/patch round trip against participantID.
// This goroutine has no caller to return an error to, so failures are
// reported through the monitoring package rather than an error return.
func (m *Manager) syncOne(ctx context.Context, participantID string) {
	start := time.Now()
	m.pollReq.Inc()

	q := schedule.MakeQuery(m.watermarks[participantID])
	requestID, err := m.cli.SendQuery(participantID, q)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"participant_id": participantID, "module": "sync"})
		m.recordFailure(participantID, start)
		return
	}

	patch, err := m.cli.WaitForPatch(requestID, time.Duration(m.cfg.Timeout())*time.Second)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{"participant_id": participantID, "module": "sync", "request_id": requestID})
		m.pollTimeout.Inc()
		m.recordFailure(participantID, start)
		return
	}

	if err := m.db.ApplyPatch(patch); err != nil {
		monitoring.CaptureException(err, map[string]string{"participant_id": participantID, "module": "sync", "request_id": requestID})
		m.recordFailure(participantID, start)
		return
	}

	m.watermarks[participantID] = patch.LatestVersion
	m.pollResp.Inc()
	m.latency.Observe(time.Since(start).Seconds())
	m.lastCollect.SetToCurrentTime()

	if m.sink != nil {
		_ = m.sink.RecordPatchSync(coremetrics.PatchSyncEvent{
			ParticipantID: participantID,
			RequestID:     requestID,
			ChangeCount:   len(patch.Changes),
			Latency:       time.Since(start),
			Success:       true,
			Time:          time.Now(),
		})
	}
}

func (m *Manager) recordFailure(participantID string, start time.Time) {
	if m.sink == nil {
		return
	}
	_ = m.sink.RecordPatchSync(coremetrics.PatchSyncEvent{
		ParticipantID: participantID,
		Success:       false,
		Latency:       time.Since(start),
		Time:          time.Now(),
	})
}
