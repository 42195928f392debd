package mapview

import "context"

// MapboxStyle is the dark vector style used for the globe.
const MapboxStyle = "mapbox://styles/mapbox/dark-v11"

// Mapbox renders vector tiles on a globe projection. It requires an
// access token.
type Mapbox struct{}

func (Mapbox) Provider() string {
	return "mapbox"
}

func (Mapbox) Prepare(ctx context.Context, opts Options) (Style, error) {
	if err := ctx.Err(); err != nil {
		return Style{}, err
	}
	if opts.Token == "" {
		return Style{}, ErrMissingToken
	}

	style := Style{
		URL:        MapboxStyle,
		Token:      opts.Token,
		Projection: "mercator",
		MaxZoom:    22,
	}
	if opts.Mode == ModeGlobal {
		style.Projection = "globe"
		style.Fog = map[string]interface{}{
			"color":          "rgb(23, 25, 30)",
			"high-color":     "rgb(36, 92, 223)",
			"horizon-blend":  0.4,
			"space-color":    "rgb(11, 11, 25)",
			"star-intensity": 0.6,
		}
	}
	return style, nil
}

func (Mapbox) Layers(mode Mode) []Layer {
	if mode != ModeGlobal {
		return []Layer{}
	}
	return []Layer{
		{
			ID:     "plastic-heat",
			Type:   "heatmap",
			Source: SourceID,
			Paint: map[string]interface{}{
				"heatmap-weight":    []interface{}{"get", "weight"},
				"heatmap-intensity": 1.5,
				"heatmap-color": []interface{}{
					"interpolate", []interface{}{"linear"}, []interface{}{"heatmap-density"},
					0, "rgba(0, 0, 255, 0)",
					0.1, "rgba(65, 219, 167, 0.5)",
					0.3, "rgba(247, 214, 99, 0.7)",
					0.6, "rgba(241, 122, 49, 0.8)",
					1, "rgba(235, 56, 53, 0.9)",
				},
				"heatmap-radius":  40,
				"heatmap-opacity": 0.9,
			},
		},
		{
			ID:     "plastic-points",
			Type:   "circle",
			Source: SourceID,
			Paint: map[string]interface{}{
				"circle-color":        []interface{}{"get", "color"},
				"circle-radius":       6,
				"circle-stroke-width": 2,
				"circle-stroke-color": "white",
				"circle-opacity":      0.7,
			},
		},
	}
}
