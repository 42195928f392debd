package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"ecobot/internal/logger"
	"ecobot/internal/middleware"
	"ecobot/internal/service"
	"ecobot/internal/service/detector"
	"ecobot/internal/service/upload"
)

// DetectHandler handles POST /detect: it runs detection on the uploaded
// image and redirects to /results. Failures re-render the upload page with
// a single notice.
func DetectHandler(manager *service.Manager, pages *Pages, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxSize := manager.GetConfig().MaxUploadSize
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		file, err := readImage(r, maxSize)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				renderIndex(w, manager, pages, logger, http.StatusRequestEntityTooLarge, &Notice{
					Kind: "error", Title: "Image too large", Message: "Please upload a smaller image.",
				})
				return
			}
			logger.Warning("Rejected upload: %v", err)
			renderIndex(w, manager, pages, logger, http.StatusBadRequest, &Notice{
				Kind: "warning", Title: "No image selected", Message: "Please upload an image first",
			})
			return
		}

		sessionID := middleware.SessionID(r.Context())
		_, err = manager.GetUploadFlow().Submit(r.Context(), sessionID, file)
		switch {
		case err == nil:
			http.Redirect(w, r, "/results", http.StatusSeeOther)
		case errors.Is(err, upload.ErrNoFile):
			renderIndex(w, manager, pages, logger, http.StatusBadRequest, &Notice{
				Kind: "warning", Title: "No image selected", Message: "Please upload an image first",
			})
		case errors.Is(err, upload.ErrInvalidFileType):
			renderIndex(w, manager, pages, logger, http.StatusUnsupportedMediaType, &Notice{
				Kind: "warning", Title: "Invalid file type", Message: "Please upload an image file (JPEG, PNG, etc.)",
			})
		case errors.Is(err, upload.ErrSubmitInProgress):
			renderIndex(w, manager, pages, logger, http.StatusConflict, &Notice{
				Kind: "warning", Title: "Processing...", Message: "Your previous image is still being processed.",
			})
		case errors.Is(err, context.Canceled):
			logger.Info("Client went away during detection")
		default:
			renderIndex(w, manager, pages, logger, http.StatusBadGateway, &Notice{
				Kind: "error", Title: "Processing failed", Message: failureMessage(err),
			})
		}
	}
}

func readImage(r *http.Request, maxSize int64) (*detector.Image, error) {
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, err
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &detector.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func failureMessage(err error) string {
	var backendErr *detector.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Error()
	}
	return "There was an error processing your image. Please try again."
}
