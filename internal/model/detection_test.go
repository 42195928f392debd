package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromCount(t *testing.T) {
	tests := []struct {
		count int
		want  PlasticLevel
	}{
		{0, LevelLow},
		{1, LevelLow},
		{2, LevelMedium},
		{3, LevelMedium},
		{4, LevelMedium},
		{5, LevelHigh},
		{42, LevelHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFromCount(tt.count), "count=%d", tt.count)
	}
}

func TestCoordinates_Valid(t *testing.T) {
	assert.True(t, Coordinates{Latitude: 90, Longitude: -180}.Valid())
	assert.True(t, Coordinates{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, Coordinates{Latitude: 90.0001, Longitude: 0}.Valid())
	assert.False(t, Coordinates{Latitude: 0, Longitude: -180.5}.Valid())
}

func TestDetectionRecord_JSONLayout(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)
	rec := NewDetectionRecord(Coordinates{Latitude: -12.5, Longitude: 140.25}, LevelMedium, ts)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"coordinates":{"latitude":-12.5,"longitude":140.25},"plasticLevel":"medium","timestamp":"2025-03-14T09:26:53.589Z"}`,
		string(data))
}

func TestDetectionRecord_Validate(t *testing.T) {
	ok := NewDetectionRecord(Coordinates{Latitude: 10, Longitude: 10}, LevelHigh, time.Now())
	require.NoError(t, ok.Validate())

	badLevel := ok
	badLevel.PlasticLevel = "extreme"
	assert.Error(t, badLevel.Validate())

	badCoords := ok
	badCoords.Coordinates.Latitude = 120
	assert.Error(t, badCoords.Validate())

	badTime := ok
	badTime.Timestamp = "yesterday"
	assert.Error(t, badTime.Validate())
}

func TestPlasticLevel_Title(t *testing.T) {
	assert.Equal(t, "Low", LevelLow.Title())
	assert.Equal(t, "Medium", LevelMedium.Title())
	assert.Equal(t, "High", LevelHigh.Title())
}
