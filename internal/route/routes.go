package route

import (
	"io/fs"
	"net/http"

	"ecobot/internal/handler"
	"ecobot/internal/logger"
	"ecobot/internal/middleware"
	"ecobot/internal/service"
	"ecobot/internal/service/mapview"
	"ecobot/web"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes registers the pages, the JSON API, the live map socket,
// static files and the metrics endpoint.
func SetupRoutes(manager *service.Manager, pages *handler.Pages, logger *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))))

	r.Get("/healthz", handler.HealthHandler(manager, mapview.DefaultProvider(), logger))
	if m := manager.GetMetrics(); m != nil {
		r.Handle("/metrics", m.Handler())
	}

	// API endpoints
	r.Route("/api", func(r chi.Router) {
		r.Get("/records", handler.RecordsHandler(manager, logger))
		r.Get("/records/geojson", handler.RecordsGeoJSONHandler(manager, logger))
	})

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session)

		r.Get("/", handler.IndexHandler(manager, pages, logger))
		r.Post("/detect", handler.DetectHandler(manager, pages, logger))
		r.Get("/results", handler.ResultsHandler(manager, pages, logger))
		r.Get("/global-map", handler.GlobalMapHandler(manager, pages, logger))
		r.Get(handler.GlobalMapSocket, handler.GlobalMapWebsocketHandler(manager, logger))
		r.Get("/about", handler.AboutHandler(pages, logger))
	})

	r.NotFound(middleware.Session(handler.NotFoundHandler(pages, logger)).ServeHTTP)

	return r
}

func staticFS() fs.FS {
	return web.Static()
}
