package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"ecobot/internal/dto"
	"ecobot/internal/model"
)

// DetectPath is the backend endpoint that accepts image uploads.
const DetectPath = "/api/detect"

// maxResponseSize bounds the JSON body, which embeds the annotated image.
const maxResponseSize = 64 << 20

// HTTP sends images to the inference backend as multipart form data.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates a backend client. A zero timeout waits indefinitely;
// callers can still cancel through the request context.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (d *HTTP) Mode() string {
	return "backend"
}

func (d *HTTP) Detect(ctx context.Context, img Image) (*model.DetectionResult, error) {
	body, contentType, err := encodeImage(img)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+DetectPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build detect request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure dto.DetectResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&failure)
		msg := failure.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}

	var data dto.DetectResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrBackend, err)
	}
	if !data.Success {
		msg := data.Error
		if msg == "" {
			msg = "Failed to process image"
		}
		return nil, &BackendError{Message: msg}
	}

	result := data.ToResult()
	return &result, nil
}

func encodeImage(img Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := img.Filename
	if filename == "" {
		filename = "upload"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
