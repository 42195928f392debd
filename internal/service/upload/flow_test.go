package upload

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ecobot/internal/logger"
	"ecobot/internal/model"
	"ecobot/internal/service/detector"
	"ecobot/internal/service/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type stubDetector struct {
	result  *model.DetectionResult
	err     error
	calls   int
	gotType string
	block   chan struct{}
	started chan struct{}
}

func (d *stubDetector) Detect(ctx context.Context, img detector.Image) (*model.DetectionResult, error) {
	d.calls++
	d.gotType = img.ContentType
	if d.started != nil {
		close(d.started)
	}
	if d.block != nil {
		<-d.block
	}
	return d.result, d.err
}

func (d *stubDetector) Mode() string { return "stub" }

func newTestFlow(d detector.Detector) (*Flow, *session.Store) {
	store := session.NewStore(time.Minute, logger.Nop())
	return NewFlow(d, store, nil, logger.Nop()), store
}

func TestSubmit_StoresResult(t *testing.T) {
	det := &stubDetector{result: &model.DetectionResult{
		ResultImage: "data:image/png;base64,AA",
		Detections:  []model.Detection{{ClassName: "bottle", Confidence: 0.9}},
		Count:       1,
	}}
	flow, store := newTestFlow(det)

	result, err := flow.Submit(context.Background(), "s1", &detector.Image{Filename: "a.png", ContentType: "image/png", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.False(t, flow.Submitting("s1"))

	raw, ok := store.Peek("s1", session.ResultsKey)
	require.True(t, ok)
	var stored model.DetectionResult
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "data:image/png;base64,AA", stored.ResultImage)
	assert.Len(t, stored.Detections, 1)
}

func TestSubmit_RejectsNonImages(t *testing.T) {
	det := &stubDetector{}
	flow, store := newTestFlow(det)

	for _, ct := range []string{"application/pdf", "text/plain", "video/mp4"} {
		_, err := flow.Submit(context.Background(), "s1", &detector.Image{Filename: "doc", ContentType: ct, Data: []byte("%PDF-1.4")})
		assert.ErrorIs(t, err, ErrInvalidFileType, ct)
	}

	assert.Zero(t, det.calls)
	assert.Zero(t, store.Len())
	assert.False(t, flow.Submitting("s1"))
}

func TestSubmit_NoFile(t *testing.T) {
	flow, _ := newTestFlow(&stubDetector{})

	_, err := flow.Submit(context.Background(), "s1", nil)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = flow.Submit(context.Background(), "s1", &detector.Image{ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestSubmit_SniffsMissingContentType(t *testing.T) {
	det := &stubDetector{result: &model.DetectionResult{Detections: []model.Detection{}}}
	flow, _ := newTestFlow(det)

	_, err := flow.Submit(context.Background(), "s1", &detector.Image{Filename: "x", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "image/png", det.gotType)

	_, err = flow.Submit(context.Background(), "s1", &detector.Image{Filename: "x", Data: []byte("plain words")})
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestSubmit_BackendFailureLeavesNoResult(t *testing.T) {
	det := &stubDetector{err: &detector.BackendError{StatusCode: 500, Message: "boom"}}
	flow, store := newTestFlow(det)

	_, err := flow.Submit(context.Background(), "s1", &detector.Image{ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, detector.ErrBackend))
	assert.Zero(t, store.Len())
	assert.False(t, flow.Submitting("s1"), "guard must be reset after failure")
}

func TestSubmit_OneInFlightPerSession(t *testing.T) {
	det := &stubDetector{
		result:  &model.DetectionResult{Detections: []model.Detection{}},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	flow, _ := newTestFlow(det)
	img := &detector.Image{ContentType: "image/png", Data: pngBytes}

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), "s1", img)
		done <- err
	}()
	<-det.started

	assert.True(t, flow.Submitting("s1"))
	_, err := flow.Submit(context.Background(), "s1", img)
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(det.block)
	require.NoError(t, <-done)
	assert.False(t, flow.Submitting("s1"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentType(&detector.Image{ContentType: "image/jpeg; charset=binary"}))
	assert.Equal(t, "image/png", ContentType(&detector.Image{Data: pngBytes}))
	assert.True(t, IsImage(&detector.Image{ContentType: "IMAGE/WEBP"}))
}
