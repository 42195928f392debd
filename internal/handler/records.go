package handler

import (
	"encoding/json"
	"net/http"

	"ecobot/internal/logger"
	"ecobot/internal/service"
	"ecobot/internal/service/mapview"
)

// RecordsHandler returns every stored detection record as a JSON array in
// the browser storage layout.
func RecordsHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := manager.ListRecords(r.Context())
		if err != nil {
			logger.Error("Error listing detection records: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			logger.Error("Error encoding detection records: %v", err)
		}
	}
}

// RecordsGeoJSONHandler returns the records as a GeoJSON FeatureCollection.
func RecordsGeoJSONHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := manager.ListRecords(r.Context())
		if err != nil {
			logger.Error("Error listing detection records: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		data, err := mapview.EncodeRecords(records)
		if err != nil {
			logger.Error("Error encoding geojson: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)
	}
}
