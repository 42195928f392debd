package handler

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"ecobot/internal/logger"
	"ecobot/internal/middleware"
	"ecobot/internal/service"
	"ecobot/internal/service/mapview"
	"ecobot/internal/service/results"
)

type resultsData struct {
	*results.View
	ResultImage template.URL
}

// ResultsHandler consumes the session's detection result, stores the
// record and renders the summary. Without a result it redirects to /.
func ResultsHandler(manager *service.Manager, pages *Pages, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionID(r.Context())

		view, err := manager.GetResults().Consume(r.Context(), sessionID)
		if errors.Is(err, results.ErrNoResults) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if err != nil {
			logger.Error("Error storing detection record: %v", err)
			renderIndex(w, manager, pages, logger, http.StatusInternalServerError, &Notice{
				Kind:    "error",
				Title:   "Could not save detection",
				Message: "Your result was kept. Open the results page again to retry.",
			})
			return
		}

		coords := view.Coordinates
		pages.render(w, logger, http.StatusOK, PageResults, pageData{
			Title: "Results",
			Map:   buildMap(r.Context(), manager, logger, mapview.ModeDetail, &coords, view.Level, nil),
			Data: resultsData{
				View:        view,
				ResultImage: imageURL(view.ResultImage),
			},
		})
	}
}

// imageURL trusts only inline image data.
func imageURL(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") {
		return template.URL(s)
	}
	return ""
}
