//go:build mapbox

// Built with -tags mapbox the views render through Mapbox GL and need
// MAPBOX_TOKEN.
package mapview

func newAdapter() Adapter {
	return Mapbox{}
}
