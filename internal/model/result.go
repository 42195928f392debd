package model

// Detection is one object reported by the inference backend.
type Detection struct {
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
}

// DetectionResult is the outcome of one detection run, handed from the
// upload flow to the results view through the session store.
type DetectionResult struct {
	ResultImage       string       `json:"resultImage"`
	GPSCoordinates    *Coordinates `json:"gpsCoordinates"`
	Detections        []Detection  `json:"detections"`
	Count             int          `json:"count"`
	AverageConfidence float64      `json:"averageConfidence"`
}

// ItemCount returns the number of detected items.
func (r DetectionResult) ItemCount() int {
	return len(r.Detections)
}
