package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"ecobot/internal/logger"
	"ecobot/internal/model"
	"ecobot/internal/service"
	"ecobot/internal/service/mapview"
	"ecobot/web"
)

// Page template names.
const (
	PageIndex     = "index"
	PageResults   = "results"
	PageGlobalMap = "global_map"
	PageAbout     = "about"
	PageNotFound  = "not_found"
)

// Notice is a one-off message shown above the page content.
type Notice struct {
	Kind    string
	Title   string
	Message string
}

// mapSection is the data of the "map" template.
type mapSection struct {
	Provider     string
	Class        string
	Fallback     bool
	TokenMissing bool
	Focus        *model.Coordinates
	SceneJSON    string
	Socket       string
}

type pageData struct {
	Title  string
	Active string
	Notice *Notice
	Map    *mapSection
	Data   interface{}
}

// Pages holds one parsed template set per page.
type Pages struct {
	templates map[string]*template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	return NewPagesFS(web.Templates())
}

// NewPagesFS parses the page templates found in fsys.
func NewPagesFS(fsys fs.FS) (*Pages, error) {
	p := &Pages{templates: make(map[string]*template.Template)}
	for _, name := range []string{PageIndex, PageResults, PageGlobalMap, PageAbout, PageNotFound} {
		tmpl, err := template.ParseFS(fsys, "templates/layout.html", "templates/map.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		p.templates[name] = tmpl
	}
	return p, nil
}

// render executes a page into a buffer so that a template error can still
// produce a clean 500.
func (p *Pages) render(w http.ResponseWriter, logger *logger.Logger, status int, name string, data pageData) {
	tmpl, ok := p.templates[name]
	if !ok {
		logger.Error("Unknown page template %s", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("Error executing %s template: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warning("Error writing %s page: %v", name, err)
	}
}

// buildMap renders a one-off scene for embedding into a page. Rotation is
// left to the live websocket session.
func buildMap(ctx context.Context, manager *service.Manager, logger *logger.Logger, mode mapview.Mode,
	focus *model.Coordinates, level model.PlasticLevel, records []model.DetectionRecord) *mapSection {
	opts := manager.MapOptions(mode)
	opts.RotationInterval = 0

	view := mapview.New(opts, nil, logger)
	defer view.Dispose()

	section := &mapSection{Provider: view.Provider(), Class: string(mode), Focus: focus}

	if focus != nil {
		if err := view.SetFocus(focus.Latitude, focus.Longitude, level); err != nil {
			logger.Warning("Cannot focus map: %v", err)
			section.Fallback = true
			return section
		}
	}
	if records != nil {
		if err := view.SetDataset(records); err != nil {
			logger.Warning("Cannot build map dataset: %v", err)
			section.Fallback = true
			return section
		}
	}

	if err := view.Init(ctx); err != nil {
		if !errors.Is(err, mapview.ErrMissingToken) {
			logger.Error("Map initialisation failed: %v", err)
		}
		section.Fallback = true
		section.TokenMissing = errors.Is(err, mapview.ErrMissingToken)
		return section
	}

	scene, err := json.Marshal(view.Scene())
	if err != nil {
		logger.Error("Failed to encode map scene: %v", err)
		section.Fallback = true
		return section
	}
	section.SceneJSON = string(scene)
	return section
}
