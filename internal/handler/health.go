package handler

import (
	"encoding/json"
	"net/http"

	"ecobot/internal/logger"
	"ecobot/internal/service"
)

// Health is the body of GET /healthz.
type Health struct {
	Status       string `json:"status"`
	Store        string `json:"store"`
	Detector     string `json:"detector"`
	APIURL       string `json:"apiUrl,omitempty"`
	MapProvider  string `json:"mapProvider"`
	MapToken     bool   `json:"mapToken"`
	Records      int    `json:"records"`
	MapViewers   int    `json:"mapViewers"`
	ModelName    string `json:"model"`
	SessionItems int    `json:"sessionItems"`
}

// HealthHandler reports the configured backends. It answers 503 when the
// record store cannot be reached or read.
func HealthHandler(manager *service.Manager, provider string, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := manager.GetConfig()
		health := Health{
			Status:       "ok",
			Store:        cfg.StoreDriver,
			Detector:     manager.GetDetector().Mode(),
			MapProvider:  provider,
			MapToken:     cfg.MapboxToken != "",
			MapViewers:   manager.GetHub().Count(),
			ModelName:    cfg.ModelName,
			SessionItems: manager.GetSessions().Len(),
		}
		if health.Detector == "backend" {
			health.APIURL = cfg.APIURL
		}

		status := http.StatusOK
		if err := manager.PingStore(r.Context()); err != nil {
			logger.Error("Health check failed to reach the %s store: %v", cfg.StoreDriver, err)
			health.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		records, err := manager.ListRecords(r.Context())
		if err != nil {
			logger.Error("Health check failed to read records: %v", err)
			health.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		health.Records = len(records)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(health)
	}
}
