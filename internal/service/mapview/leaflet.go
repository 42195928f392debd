package mapview

import "context"

// DefaultTileURL is the OpenStreetMap raster tile template.
const DefaultTileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

// Leaflet renders raster tiles with a heat layer. It needs no token.
type Leaflet struct{}

func (Leaflet) Provider() string {
	return "leaflet"
}

func (Leaflet) Prepare(ctx context.Context, opts Options) (Style, error) {
	if err := ctx.Err(); err != nil {
		return Style{}, err
	}
	tileURL := opts.TileURL
	if tileURL == "" {
		tileURL = DefaultTileURL
	}
	return Style{
		TileURL:     tileURL,
		Attribution: "&copy; OpenStreetMap contributors",
		Projection:  "mercator",
		MaxZoom:     19,
	}, nil
}

func (Leaflet) Layers(mode Mode) []Layer {
	if mode != ModeGlobal {
		return []Layer{}
	}
	return []Layer{
		{
			ID:     "plastic-heat",
			Type:   "heatmap",
			Source: SourceID,
			Paint: map[string]interface{}{
				"radius":     40,
				"blur":       25,
				"maxZoom":    6,
				"minOpacity": 0.3,
				"gradient": map[string]string{
					"0.1": "rgba(65, 219, 167, 0.5)",
					"0.3": "rgba(247, 214, 99, 0.7)",
					"0.6": "rgba(241, 122, 49, 0.8)",
					"1.0": "rgba(235, 56, 53, 0.9)",
				},
			},
		},
		{
			ID:     "plastic-points",
			Type:   "circle",
			Source: SourceID,
			Paint: map[string]interface{}{
				"radius":      6,
				"color":       "#ffffff",
				"weight":      2,
				"fillOpacity": 0.7,
			},
		},
	}
}
