package mapview

import (
	"encoding/json"
	"fmt"

	"ecobot/internal/model"

	geojson "github.com/paulmach/go.geojson"
)

// SourceID names the record source shared by the heatmap and point layers.
const SourceID = "plastic-detections"

// FeatureCollection converts records into point features carrying the
// level, its colour and heat weight, and the timestamp.
func FeatureCollection(records []model.DetectionRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rec := range records {
		f := geojson.NewPointFeature([]float64{rec.Coordinates.Longitude, rec.Coordinates.Latitude})
		f.SetProperty("plasticLevel", string(rec.PlasticLevel))
		f.SetProperty("color", LevelColor(rec.PlasticLevel))
		f.SetProperty("weight", LevelWeight(rec.PlasticLevel))
		f.SetProperty("timestamp", rec.Timestamp)
		fc.AddFeature(f)
	}
	return fc
}

// EncodeRecords returns the GeoJSON document for records.
func EncodeRecords(records []model.DetectionRecord) (json.RawMessage, error) {
	data, err := FeatureCollection(records).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode records as geojson: %w", err)
	}
	return data, nil
}
