package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORE_DRIVER.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Port int

	APIURL         string        // Base URL of the inference backend
	DetectTimeout  time.Duration // 0 waits for the backend indefinitely
	Simulate       bool          // Skip the backend and fake a result
	SimulatedDelay time.Duration
	UseImageGPS    bool // Prefer GPS from the backend over generated coordinates
	ModelName      string
	MaxUploadSize  int64 // bytes

	MapboxToken string
	TileURL     string

	StoreDriver   string
	DBPath        string
	DataDirectory string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL time.Duration

	RotationInterval time.Duration
	RotationStep     float64 // degrees of longitude per tick
	RotationMaxZoom  float64 // rotation pauses at or above this zoom

	LogDirectory string
	LogLevel     string
}

// Load reads the configuration from the environment. A .env file in the
// working directory, if present, is applied first without overriding
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnvAsInt("PORT", 8080),
		APIURL:           strings.TrimRight(getEnv("API_URL", "http://localhost:5000"), "/"),
		DetectTimeout:    getEnvAsDuration("DETECT_TIMEOUT", 0),
		Simulate:         getEnvAsBool("SIMULATE", false),
		SimulatedDelay:   getEnvAsDuration("SIMULATED_DELAY", 2*time.Second),
		UseImageGPS:      getEnvAsBool("USE_IMAGE_GPS", false),
		ModelName:        getEnv("MODEL_NAME", "ecobot.pt"),
		MaxUploadSize:    getEnvAsInt64("MAX_UPLOAD_MB", 20) << 20,
		MapboxToken:      getEnv("MAPBOX_TOKEN", ""),
		TileURL:          getEnv("TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		DBPath:           getEnv("DB_PATH", filepath.Join(".", "data", "ecobot.db")),
		DataDirectory:    getEnv("DATA_DIR", filepath.Join(".", "data")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		RotationInterval: getEnvAsDuration("ROTATION_INTERVAL", 100*time.Millisecond),
		RotationStep:     getEnvAsFloat("ROTATION_STEP", 0.25),
		RotationMaxZoom:  getEnvAsFloat("ROTATION_MAX_ZOOM", 4),
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool accepts the same truthy spellings as the Flask backend (true, 1, t).
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
