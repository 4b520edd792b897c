// Package app wires the core schedule database to its reference
// transport, persistence and observability adapters, and exposes the
// resulting Service to cmd/.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	scheduleapi "github.com/LanderU/rmf-core/api/schedule"
	"github.com/LanderU/rmf-core/config"
	"github.com/LanderU/rmf-core/core/changelog"
	coremetrics "github.com/LanderU/rmf-core/core/metrics"
	coremon "github.com/LanderU/rmf-core/core/monitoring"
	"github.com/LanderU/rmf-core/core/schedule"
	"github.com/LanderU/rmf-core/infra/logger"
	"github.com/LanderU/rmf-core/infra/metrics"
	"github.com/LanderU/rmf-core/infra/monitoring"
	"github.com/LanderU/rmf-core/infra/mqtt"
	"github.com/LanderU/rmf-core/infra/sync"
)

// Service orchestrates the schedule Database against its configured
// changelog store, MQTT reference transport, participant sync loop and
// metrics sinks.
type Service struct {
	DB      *schedule.Database
	Sync    *sync.Manager
	Client  *mqtt.PahoClient
	log     logger.Logger
	monitor coremon.Monitor

	promEnabled bool
	promPort    string
	apiAddr     string
}

// New wires a Service from the given configuration: it opens the
// changelog store, replays it into a fresh Database, connects the MQTT
// reference transport, builds the configured metrics sinks, and starts
// error-reporting via Sentry when configured.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("monitor: %w", err)
	}
	coremon.Init(mon)

	store, err := openChangelogStore(cfg.Changelog)
	if err != nil {
		return nil, fmt.Errorf("changelog store: %w", err)
	}

	database, err := schedule.Replay(context.Background(), store)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	sink, err := buildMetricsSink(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	syncManager := sync.NewManager(client, database, cfg.Sync, sinkAsPatchSyncRecorder(sink), cfg.Sync.Participants)

	svc := &Service{
		DB:          database,
		Sync:        syncManager,
		Client:      client,
		log:         logg,
		monitor:     mon,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
		apiAddr:     cfg.APIAddr,
	}
	metrics.StartChangeCollector(context.Background(), database, sink)
	return svc, nil
}

func sinkAsPatchSyncRecorder(sink coremetrics.MetricsSink) coremetrics.PatchSyncRecorder {
	if rec, ok := sink.(coremetrics.PatchSyncRecorder); ok {
		return rec
	}
	return nil
}

func buildMetricsSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	var sinks []coremetrics.MetricsSink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg))
	}
	if len(cfg.Sinks) > 0 {
		configured, err := coremetrics.NewMetricsSink(cfg.Sinks)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, configured)
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

func openChangelogStore(cfg config.ChangelogConfig) (changelog.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return changelog.NewSQLiteStore(cfg.Path)
	default:
		return changelog.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
}

// Run starts the participant sync loop and, if enabled, the Prometheus
// HTTP endpoint, and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.Sync.Start(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.apiAddr != "" {
		go func() {
			if err := s.serveAPI(ctx); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

func (s *Service) serveAPI(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/api/schedule/changes", scheduleapi.NewChangesHandler(s.DB))
	mux.Handle("/api/schedule/entries", scheduleapi.NewLookupHandler(s.DB))
	srv := &http.Server{Addr: s.apiAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service, flushing the monitor.
func (s *Service) Close() error {
	s.monitor.Flush(2 * time.Second)
	s.Client.Disconnect()
	return nil
}
