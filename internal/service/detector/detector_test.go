package detector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecobot/internal/dto"
	"ecobot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testImage = Image{Filename: "reef.jpg", ContentType: "image/jpeg", Data: []byte("\xff\xd8fake jpeg\xff\xd9")}

func TestHTTP_Detect_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DetectPath, r.URL.Path)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, testImage.Data, data)
		assert.Equal(t, "reef.jpg", header.Filename)
		assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))

		lat, lng := 10.5, -20.25
		_ = json.NewEncoder(w).Encode(dto.DetectResponse{
			Success:        true,
			Image:          "data:image/jpeg;base64,AAAA",
			GPSCoordinates: &model.Coordinates{Latitude: lat, Longitude: lng},
			Detections: []model.Detection{
				{ClassID: 1, ClassName: "bottle", Confidence: 0.9, BBox: [4]int{1, 2, 3, 4}},
				{ClassID: 2, ClassName: "bag", Confidence: 0.7, BBox: [4]int{5, 6, 7, 8}},
			},
			Count:             2,
			AverageConfidence: 0.8,
		})
	}))
	defer srv.Close()

	result, err := NewHTTP(srv.URL+"/", 0).Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", result.ResultImage)
	assert.Equal(t, 2, result.Count)
	assert.Len(t, result.Detections, 2)
	assert.Equal(t, "bottle", result.Detections[0].ClassName)
	assert.InDelta(t, 0.8, result.AverageConfidence, 1e-9)
	require.NotNil(t, result.GPSCoordinates)
	assert.Equal(t, 10.5, result.GPSCoordinates.Latitude)
}

func TestHTTP_Detect_NullGPSAndDetections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"image":"data:image/jpeg;base64,AA","gps_coordinates":null,"detections":null,"average_confidence":0}`)
	}))
	defer srv.Close()

	result, err := NewHTTP(srv.URL, 0).Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.Nil(t, result.GPSCoordinates)
	assert.NotNil(t, result.Detections)
	assert.Zero(t, result.Count)
}

func TestHTTP_Detect_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error with message", http.StatusInternalServerError, `{"success":false,"error":"Failed to load model"}`, "server responded with 500: Failed to load model"},
		{"bad request without body", http.StatusBadRequest, ``, "server responded with 400: Bad Request"},
		{"success false", http.StatusOK, `{"success":false,"error":"cannot identify image file"}`, "cannot identify image file"},
		{"success false without message", http.StatusOK, `{"success":false}`, "Failed to process image"},
		{"malformed json", http.StatusOK, `<html>`, "invalid response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTP(srv.URL, 0).Detect(context.Background(), testImage)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBackend)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestHTTP_Detect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTP(url, time.Second).Detect(context.Background(), testImage)
	assert.ErrorIs(t, err, ErrBackend)
}

func TestHTTP_Detect_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTP(srv.URL, 0).Detect(ctx, testImage)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBackend))
}

func TestBackendError_Unwrap(t *testing.T) {
	err := &BackendError{StatusCode: 502, Message: "Bad Gateway"}
	assert.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, "server responded with 502: Bad Gateway", err.Error())
}

func TestSimulated_ReusesImage(t *testing.T) {
	d := NewSimulated(0, rand.New(rand.NewSource(1)))
	assert.Equal(t, "simulated", d.Mode())

	result, err := d.Detect(context.Background(), testImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.ResultImage, "data:image/jpeg;base64,"))
	assert.Equal(t, DataURL("image/jpeg", testImage.Data), result.ResultImage)
	assert.Equal(t, len(result.Detections), result.Count)
	assert.LessOrEqual(t, result.Count, MaxSimulatedDetections)
	assert.Nil(t, result.GPSCoordinates)
	for _, det := range result.Detections {
		assert.GreaterOrEqual(t, det.Confidence, 0.5)
		assert.Less(t, det.Confidence, 1.0)
	}
}

func TestSimulated_CoversAllLevels(t *testing.T) {
	d := NewSimulated(0, rand.New(rand.NewSource(99)))
	seen := make(map[model.PlasticLevel]bool)

	for i := 0; i < 200; i++ {
		result, err := d.Detect(context.Background(), testImage)
		require.NoError(t, err)
		seen[model.LevelFromCount(result.ItemCount())] = true
	}
	assert.Len(t, seen, 3)
}

func TestSimulated_HonoursContext(t *testing.T) {
	d := NewSimulated(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, testImage)
	assert.ErrorIs(t, err, context.Canceled)
}
