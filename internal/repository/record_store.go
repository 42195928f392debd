package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecobot/internal/logger"
	"ecobot/internal/model"
)

// RecordsKey is the storage key of the record collection. It matches the
// localStorage key used by the browser client.
const RecordsKey = "plasticDetectionRecords"

var (
	// ErrCorruptCollection is returned when the stored collection cannot be decoded.
	ErrCorruptCollection = errors.New("stored detection records are corrupt")
	// ErrInvalidRecord is returned when a record violates its invariants.
	ErrInvalidRecord = errors.New("invalid detection record")
)

// RecordStore keeps the whole collection as one JSON array under RecordsKey.
// Appends are serialised inside the process; processes sharing one backend
// still race with last-writer-wins.
type RecordStore struct {
	kv     KeyValueStore
	logger *logger.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewRecordStore creates a record store on top of the given provider.
func NewRecordStore(kv KeyValueStore, logger *logger.Logger) *RecordStore {
	return &RecordStore{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// Append implements RecordRepository.
func (s *RecordStore) Append(ctx context.Context, coords model.Coordinates, level model.PlasticLevel, ts time.Time) ([]model.DetectionRecord, error) {
	if ts.IsZero() {
		ts = s.now()
	}
	return s.AppendRecords(ctx, []model.DetectionRecord{model.NewDetectionRecord(coords, level, ts)})
}

// AppendRecords validates and appends records in a single write.
func (s *RecordStore) AppendRecords(ctx context.Context, records []model.DetectionRecord) ([]model.DetectionRecord, error) {
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w at index %d: %v", ErrInvalidRecord, i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	updated := make([]model.DetectionRecord, 0, len(existing)+len(records))
	updated = append(updated, existing...)
	updated = append(updated, records...)

	data, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detection records: %w", err)
	}
	if err := s.kv.Set(ctx, RecordsKey, data); err != nil {
		return nil, fmt.Errorf("failed to save detection records: %w", err)
	}

	return updated, nil
}

// List implements RecordRepository. A corrupt collection reads as empty.
func (s *RecordStore) List(ctx context.Context) ([]model.DetectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if errors.Is(err, ErrCorruptCollection) {
		s.logger.Warning("Ignoring unreadable detection records: %v", err)
		return []model.DetectionRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Ping checks that the provider is reachable, for providers that can tell.
func (s *RecordStore) Ping(ctx context.Context) error {
	if p, ok := s.kv.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *RecordStore) load(ctx context.Context) ([]model.DetectionRecord, error) {
	data, ok, err := s.kv.Get(ctx, RecordsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read detection records: %w", err)
	}
	if !ok || len(data) == 0 {
		return []model.DetectionRecord{}, nil
	}

	var records []model.DetectionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCollection, err)
	}
	if records == nil {
		records = []model.DetectionRecord{}
	}
	return records, nil
}
