//go:build !mapbox

package mapview

func newAdapter() Adapter {
	return Leaflet{}
}
