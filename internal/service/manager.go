package service

import (
	"context"

	"ecobot/internal/config"
	"ecobot/internal/logger"
	"ecobot/internal/metrics"
	"ecobot/internal/model"
	"ecobot/internal/repository"
	"ecobot/internal/service/broadcast"
	"ecobot/internal/service/detector"
	"ecobot/internal/service/geo"
	"ecobot/internal/service/mapview"
	"ecobot/internal/service/results"
	"ecobot/internal/service/session"
	"ecobot/internal/service/upload"
)

// Manager wires the services the HTTP handlers depend on.
type Manager struct {
	records  repository.RecordRepository
	sessions *session.Store
	detector detector.Detector
	upload   *upload.Flow
	results  *results.Service
	hub      *broadcast.Hub
	metrics  *metrics.Metrics
	config   *config.Config
	logger   *logger.Logger
}

// NewManager creates the services on top of records and d. m may be nil.
func NewManager(records repository.RecordRepository, d detector.Detector, coords results.CoordinateSource,
	m *metrics.Metrics, config *config.Config, logger *logger.Logger) *Manager {
	sessions := session.NewStore(config.SessionTTL, logger)
	hub := broadcast.NewHub(logger)

	return &Manager{
		records:  records,
		sessions: sessions,
		detector: d,
		upload:   upload.NewFlow(d, sessions, m, logger),
		results: results.NewService(sessions, records, coords, hub, m, logger, results.Options{
			ModelName:   config.ModelName,
			UseImageGPS: config.UseImageGPS,
		}),
		hub:     hub,
		metrics: m,
		config:  config,
		logger:  logger,
	}
}

// NewDetector returns the simulated detector when enabled, the backend
// client otherwise.
func NewDetector(cfg *config.Config) detector.Detector {
	if cfg.Simulate {
		return detector.NewSimulated(cfg.SimulatedDelay, nil)
	}
	return detector.NewHTTP(cfg.APIURL, cfg.DetectTimeout)
}

// NewCoordinateSource returns the ocean coordinate generator.
func NewCoordinateSource() results.CoordinateSource {
	return geo.NewGenerator(nil)
}

// Run starts the background loops and blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		m.hub.Run(ctx)
		close(done)
	}()
	m.sessions.Run(ctx)
	<-done
	m.logger.Info("Background services stopped")
}

// MapOptions returns the view options for mode.
func (m *Manager) MapOptions(mode mapview.Mode) mapview.Options {
	return mapview.Options{
		Mode:             mode,
		Token:            m.config.MapboxToken,
		TileURL:          m.config.TileURL,
		RotationInterval: m.config.RotationInterval,
		RotationStep:     m.config.RotationStep,
		RotationMaxZoom:  m.config.RotationMaxZoom,
	}
}

// ListRecords returns every stored detection record.
func (m *Manager) ListRecords(ctx context.Context) ([]model.DetectionRecord, error) {
	return m.records.List(ctx)
}

// PingStore checks the record store backend when it supports a ping.
func (m *Manager) PingStore(ctx context.Context) error {
	if p, ok := m.records.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (m *Manager) GetSessions() *session.Store {
	return m.sessions
}

func (m *Manager) GetDetector() detector.Detector {
	return m.detector
}

func (m *Manager) GetUploadFlow() *upload.Flow {
	return m.upload
}

func (m *Manager) GetResults() *results.Service {
	return m.results
}

func (m *Manager) GetHub() *broadcast.Hub {
	return m.hub
}

func (m *Manager) GetMetrics() *metrics.Metrics {
	return m.metrics
}

func (m *Manager) GetConfig() *config.Config {
	return m.config
}
