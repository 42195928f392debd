package detector

import (
	"context"
	"encoding/base64"
	"math/rand"
	"sync"
	"time"

	"ecobot/internal/model"
)

// MaxSimulatedDetections caps the number of fabricated detections.
const MaxSimulatedDetections = 7

// Simulated waits a fixed delay and returns the uploaded image as the
// annotated result, with a random number of fabricated detections.
type Simulated struct {
	delay time.Duration
	rnd   *rand.Rand
	mu    sync.Mutex
}

// NewSimulated creates a simulated detector. A nil rnd is seeded from the clock.
func NewSimulated(delay time.Duration, rnd *rand.Rand) *Simulated {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulated{delay: delay, rnd: rnd}
}

func (d *Simulated) Mode() string {
	return "simulated"
}

func (d *Simulated) Detect(ctx context.Context, img Image) (*model.DetectionResult, error) {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	detections := d.fabricate()
	var sum float64
	for _, det := range detections {
		sum += det.Confidence
	}
	avg := 0.0
	if len(detections) > 0 {
		avg = sum / float64(len(detections))
	}

	return &model.DetectionResult{
		ResultImage:       DataURL(img.ContentType, img.Data),
		Detections:        detections,
		Count:             len(detections),
		AverageConfidence: avg,
	}, nil
}

func (d *Simulated) fabricate() []model.Detection {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.rnd.Intn(MaxSimulatedDetections + 1)
	detections := make([]model.Detection, 0, n)
	for i := 0; i < n; i++ {
		x, y := d.rnd.Intn(600), d.rnd.Intn(400)
		detections = append(detections, model.Detection{
			ClassID:    0,
			ClassName:  "plastic",
			Confidence: 0.5 + d.rnd.Float64()*0.49,
			BBox:       [4]int{x, y, x + 20 + d.rnd.Intn(80), y + 20 + d.rnd.Intn(80)},
		})
	}
	return detections
}

// DataURL encodes data as a base64 data URL.
func DataURL(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
