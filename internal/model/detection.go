package model

import (
	"fmt"
	"time"
)

// PlasticLevel is the severity classification of a detection.
type PlasticLevel string

const (
	LevelLow    PlasticLevel = "low"
	LevelMedium PlasticLevel = "medium"
	LevelHigh   PlasticLevel = "high"
)

// Detection count thresholds for the medium and high levels.
const (
	MediumThreshold = 2
	HighThreshold   = 5
)

// TimestampLayout matches the output of JavaScript's Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// LevelFromCount derives the plastic level from the number of detected items.
func LevelFromCount(count int) PlasticLevel {
	switch {
	case count >= HighThreshold:
		return LevelHigh
	case count >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Valid reports whether l is one of the known levels.
func (l PlasticLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Title returns the capitalised label shown in views.
func (l PlasticLevel) Title() string {
	switch l {
	case LevelMedium:
		return "Medium"
	case LevelHigh:
		return "High"
	default:
		return "Low"
	}
}

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether both components are inside their ranges.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// DetectionRecord is one stored observation of plastic severity at a place and time.
// The JSON layout is shared with browser localStorage exports.
type DetectionRecord struct {
	Coordinates  Coordinates  `json:"coordinates"`
	PlasticLevel PlasticLevel `json:"plasticLevel"`
	Timestamp    string       `json:"timestamp"`
}

// NewDetectionRecord builds a record stamped with ts in UTC.
func NewDetectionRecord(coords Coordinates, level PlasticLevel, ts time.Time) DetectionRecord {
	return DetectionRecord{
		Coordinates:  coords,
		PlasticLevel: level,
		Timestamp:    FormatTimestamp(ts),
	}
}

// FormatTimestamp renders ts as an ISO-8601 UTC string with millisecond precision.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(TimestampLayout)
}

// Time parses the record timestamp.
func (r DetectionRecord) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, r.Timestamp)
}

// Validate checks the record invariants.
func (r DetectionRecord) Validate() error {
	if !r.Coordinates.Valid() {
		return fmt.Errorf("coordinates out of range: %s", r.Coordinates)
	}
	if !r.PlasticLevel.Valid() {
		return fmt.Errorf("unknown plastic level %q", r.PlasticLevel)
	}
	if _, err := r.Time(); err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", r.Timestamp, err)
	}
	return nil
}
