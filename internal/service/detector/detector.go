package detector

import (
	"context"
	"errors"
	"fmt"

	"ecobot/internal/model"
)

// ErrBackend marks failures reported by, or while talking to, the inference backend.
var ErrBackend = errors.New("detection backend failed")

// Image is an uploaded image file.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Detector runs object detection on an image.
type Detector interface {
	Detect(ctx context.Context, img Image) (*model.DetectionResult, error)
	// Mode names the implementation for status reporting.
	Mode() string
}

// BackendError carries the status and message of a failed backend call.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("server responded with %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return ErrBackend
}
