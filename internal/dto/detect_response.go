package dto

import "ecobot/internal/model"

// DetectResponse is the JSON body returned by POST {API_URL}/api/detect.
type DetectResponse struct {
	Success           bool               `json:"success"`
	Image             string             `json:"image"`
	GPSCoordinates    *model.Coordinates `json:"gps_coordinates"`
	Detections        []model.Detection  `json:"detections"`
	Count             int                `json:"count"`
	AverageConfidence float64            `json:"average_confidence"`
	Error             string             `json:"error,omitempty"`
}

// ToResult converts the backend response into the session hand-off payload.
func (r DetectResponse) ToResult() model.DetectionResult {
	detections := r.Detections
	if detections == nil {
		detections = []model.Detection{}
	}
	return model.DetectionResult{
		ResultImage:       r.Image,
		GPSCoordinates:    r.GPSCoordinates,
		Detections:        detections,
		Count:             len(detections),
		AverageConfidence: r.AverageConfidence,
	}
}
