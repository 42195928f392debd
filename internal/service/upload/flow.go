package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"ecobot/internal/logger"
	"ecobot/internal/metrics"
	"ecobot/internal/model"
	"ecobot/internal/service/detector"
	"ecobot/internal/service/session"
)

var (
	// ErrNoFile is returned when Submit is called without a file.
	ErrNoFile = errors.New("no file selected")
	// ErrInvalidFileType is returned for files whose MIME type is not image/*.
	ErrInvalidFileType = errors.New("please upload an image file")
	// ErrSubmitInProgress is returned while another submit of the same session runs.
	ErrSubmitInProgress = errors.New("a detection is already running for this session")
)

// ResultStore receives the detection result for the results page.
type ResultStore interface {
	Put(sessionID, key string, value []byte)
}

// Flow validates an uploaded image, runs detection and hands the result
// over to the session.
type Flow struct {
	detector   detector.Detector
	results    ResultStore
	metrics    *metrics.Metrics
	logger     *logger.Logger
	submitting map[string]bool
	mu         sync.Mutex
}

// NewFlow creates an upload flow. metrics may be nil.
func NewFlow(d detector.Detector, results ResultStore, m *metrics.Metrics, logger *logger.Logger) *Flow {
	return &Flow{
		detector:   d,
		results:    results,
		metrics:    m,
		logger:     logger,
		submitting: make(map[string]bool),
	}
}

// ContentType returns the declared MIME type of the file, sniffing the
// content when none is declared.
func ContentType(file *detector.Image) string {
	ct := strings.TrimSpace(file.ContentType)
	if ct == "" {
		return http.DetectContentType(file.Data)
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return strings.ToLower(ct)
}

// IsImage reports whether the file has an image/* MIME type.
func IsImage(file *detector.Image) bool {
	return strings.HasPrefix(ContentType(file), "image/")
}

// Submitting reports whether a submit is in flight for the session.
func (f *Flow) Submitting(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting[sessionID]
}

// Submit runs detection on file and stores the result under
// session.ResultsKey. The record store is not touched here.
func (f *Flow) Submit(ctx context.Context, sessionID string, file *detector.Image) (*model.DetectionResult, error) {
	if file == nil || len(file.Data) == 0 {
		return nil, ErrNoFile
	}
	if !IsImage(file) {
		f.metrics.Upload(metrics.OutcomeInvalidType)
		return nil, fmt.Errorf("%w: got %q", ErrInvalidFileType, ContentType(file))
	}

	if !f.begin(sessionID) {
		f.metrics.Upload(metrics.OutcomeBusy)
		return nil, ErrSubmitInProgress
	}
	defer f.end(sessionID)

	img := *file
	img.ContentType = ContentType(file)

	start := time.Now()
	result, err := f.detector.Detect(ctx, img)
	f.metrics.ObserveDetect(f.detector.Mode(), time.Since(start))
	if err != nil {
		f.metrics.Upload(metrics.OutcomeBackendError)
		f.logger.Error("Detection failed for %s: %v", file.Filename, err)
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detection result: %w", err)
	}
	f.results.Put(sessionID, session.ResultsKey, data)

	f.metrics.Upload(metrics.OutcomeSuccess)
	f.logger.Info("Detected %d item(s) in %s (%s)", result.ItemCount(), file.Filename, f.detector.Mode())
	return result, nil
}

func (f *Flow) begin(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting[sessionID] {
		return false
	}
	f.submitting[sessionID] = true
	return true
}

func (f *Flow) end(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.submitting, sessionID)
}
