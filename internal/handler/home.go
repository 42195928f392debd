package handler

import (
	"net/http"

	"ecobot/internal/logger"
	"ecobot/internal/service"
)

type indexData struct {
	ModelName    string
	DetectorMode string
}

// IndexHandler serves the upload page.
func IndexHandler(manager *service.Manager, pages *Pages, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderIndex(w, manager, pages, logger, http.StatusOK, nil)
	}
}

func renderIndex(w http.ResponseWriter, manager *service.Manager, pages *Pages, logger *logger.Logger, status int, notice *Notice) {
	pages.render(w, logger, status, PageIndex, pageData{
		Title:  "Detect",
		Active: "home",
		Notice: notice,
		Data: indexData{
			ModelName:    manager.GetConfig().ModelName,
			DetectorMode: manager.GetDetector().Mode(),
		},
	})
}

type teamMember struct {
	Name string
	Role string
}

type aboutData struct {
	Stack []string
	Team  []teamMember
}

var about = aboutData{
	Stack: []string{"Go", "Leaflet", "Mapbox GL", "YOLOv8", "Python Flask"},
	Team: []teamMember{
		{"Srijith", "Team Leader"},
		{"Abhiram", "Member"},
		{"Sudeep", "Member"},
		{"Akshaya", "Member"},
	},
}

// AboutHandler serves the project page.
func AboutHandler(pages *Pages, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages.render(w, logger, http.StatusOK, PageAbout, pageData{Title: "About", Active: "about", Data: about})
	}
}

// NotFoundHandler serves the catch-all 404 page.
func NotFoundHandler(pages *Pages, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages.render(w, logger, http.StatusNotFound, PageNotFound, pageData{
			Title: "Not Found",
			Data:  struct{ Path string }{r.URL.Path},
		})
	}
}
