package repository

import (
	"context"
	"time"

	"ecobot/internal/model"
)

// KeyValueStore is the durable storage provider behind the record store.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// RecordRepository defines the operations on detection records.
type RecordRepository interface {
	// Append stores a new record and returns the updated collection.
	// A zero ts stamps the record with the current time.
	Append(ctx context.Context, coords model.Coordinates, level model.PlasticLevel, ts time.Time) ([]model.DetectionRecord, error)

	// List returns every stored record in insertion order.
	List(ctx context.Context) ([]model.DetectionRecord, error)
}
