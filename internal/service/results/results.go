package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecobot/internal/logger"
	"ecobot/internal/metrics"
	"ecobot/internal/model"
	"ecobot/internal/repository"
	"ecobot/internal/service/mapview"
	"ecobot/internal/service/session"
)

// ErrNoResults is returned when the session holds no usable detection result.
var ErrNoResults = errors.New("no detection results for this session")

// DownloadName is the file name offered for the processed image.
const DownloadName = "detected-plastic.jpg"

// SessionSource hands over the detection result stored by the upload flow.
type SessionSource interface {
	Peek(sessionID, key string) ([]byte, bool)
	Take(sessionID, key string) ([]byte, bool)
}

// CoordinateSource produces a location when the image carries none.
type CoordinateSource interface {
	Generate() model.Coordinates
}

// Publisher is notified of every stored record.
type Publisher interface {
	Publish(ctx context.Context, rec model.DetectionRecord) error
}

// View is everything the results page renders.
type View struct {
	ResultImage  string
	DownloadName string
	Coordinates  model.Coordinates
	FromImageGPS bool
	Level        model.PlasticLevel
	LevelTitle   string
	Color        string
	Confidence   float64
	ItemCount    int
	ModelName    string
	Detections   []model.Detection
	Record       model.DetectionRecord
}

// Options configure a Service.
type Options struct {
	ModelName   string
	UseImageGPS bool
}

// Service turns a session's detection result into a stored record.
type Service struct {
	sessions  SessionSource
	records   repository.RecordRepository
	coords    CoordinateSource
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *logger.Logger
	opts      Options
	now       func() time.Time
	mu        sync.Mutex
}

// NewService creates a results service. publisher and m may be nil.
func NewService(sessions SessionSource, records repository.RecordRepository, coords CoordinateSource,
	publisher Publisher, m *metrics.Metrics, logger *logger.Logger, opts Options) *Service {
	return &Service{
		sessions:  sessions,
		records:   records,
		coords:    coords,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Consume stores a record for the session's detection result and returns
// the page model. The result is removed only once the record is stored,
// so a failed append can be retried by reloading.
func (s *Service) Consume(ctx context.Context, sessionID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.sessions.Peek(sessionID, session.ResultsKey)
	if !ok {
		return nil, ErrNoResults
	}

	var result model.DetectionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.logger.Warning("Discarding malformed detection result for session %s: %v", sessionID, err)
		s.sessions.Take(sessionID, session.ResultsKey)
		return nil, ErrNoResults
	}
	if result.ResultImage == "" {
		s.sessions.Take(sessionID, session.ResultsKey)
		return nil, ErrNoResults
	}

	count := result.ItemCount()
	level := model.LevelFromCount(count)
	coords, fromGPS := s.location(result)

	ts := s.now()
	if _, err := s.records.Append(ctx, coords, level, ts); err != nil {
		return nil, fmt.Errorf("failed to store detection record: %w", err)
	}
	s.sessions.Take(sessionID, session.ResultsKey)
	rec := model.NewDetectionRecord(coords, level, ts)
	s.metrics.RecordAppended(string(level))
	s.logger.Info("Stored %s plastic record at %s", level, coords)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rec); err != nil {
			s.logger.Warning("Failed to publish record: %v", err)
		}
	}

	return &View{
		ResultImage:  result.ResultImage,
		DownloadName: DownloadName,
		Coordinates:  coords,
		FromImageGPS: fromGPS,
		Level:        level,
		LevelTitle:   level.Title(),
		Color:        mapview.LevelColor(level),
		Confidence:   result.AverageConfidence * 100,
		ItemCount:    count,
		ModelName:    s.opts.ModelName,
		Detections:   result.Detections,
		Record:       rec,
	}, nil
}

func (s *Service) location(result model.DetectionResult) (model.Coordinates, bool) {
	if s.opts.UseImageGPS && result.GPSCoordinates != nil && result.GPSCoordinates.Valid() {
		return *result.GPSCoordinates, true
	}
	return s.coords.Generate(), false
}
