package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_URL", "STORE_DRIVER", "SIMULATE", "DETECT_TIMEOUT", "ROTATION_STEP", "MAX_UPLOAD_MB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.APIURL)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.False(t, cfg.Simulate)
	assert.Zero(t, cfg.DetectTimeout)
	assert.Equal(t, 0.25, cfg.RotationStep)
	assert.Equal(t, 4.0, cfg.RotationMaxZoom)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadSize)
	assert.Equal(t, "ecobot.pt", cfg.ModelName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_URL", "http://detector:5000/")
	t.Setenv("SIMULATE", "t")
	t.Setenv("SIMULATED_DELAY", "250ms")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("ROTATION_STEP", "0.5")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://detector:5000", cfg.APIURL)
	assert.True(t, cfg.Simulate)
	assert.Equal(t, 250*time.Millisecond, cfg.SimulatedDelay)
	assert.Equal(t, StoreRedis, cfg.StoreDriver)
	assert.Equal(t, 0.5, cfg.RotationStep)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("USE_IMAGE_GPS", "maybe")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.UseImageGPS)
}
