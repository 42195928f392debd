package geo

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"ecobot/internal/model"
)

// Region is an axis-aligned box in degrees. MinLng > MaxLng marks a box
// that crosses the antimeridian.
type Region struct {
	Name   string
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// CrossesAntimeridian reports whether the longitude range wraps past 180°.
func (r Region) CrossesAntimeridian() bool {
	return r.MinLng > r.MaxLng
}

// Contains reports whether c lies inside the region.
func (r Region) Contains(c model.Coordinates) bool {
	if c.Latitude < r.MinLat || c.Latitude > r.MaxLat {
		return false
	}
	if r.CrossesAntimeridian() {
		return c.Longitude >= r.MinLng || c.Longitude <= r.MaxLng
	}
	return c.Longitude >= r.MinLng && c.Longitude <= r.MaxLng
}

// OceanRegions approximates the major ocean areas.
var OceanRegions = []Region{
	{Name: "North Pacific (tropical)", MinLat: -30, MaxLat: 30, MinLng: 150, MaxLng: -150},
	{Name: "North Pacific", MinLat: 30, MaxLat: 60, MinLng: 140, MaxLng: -140},
	{Name: "South Pacific", MinLat: -60, MaxLat: -30, MinLng: 150, MaxLng: -150},

	{Name: "Tropical Atlantic", MinLat: -30, MaxLat: 30, MinLng: -70, MaxLng: -10},
	{Name: "North Atlantic", MinLat: 30, MaxLat: 60, MinLng: -80, MaxLng: -5},
	{Name: "South Atlantic", MinLat: -50, MaxLat: -30, MinLng: -60, MaxLng: 20},

	{Name: "Indian Ocean", MinLat: -40, MaxLat: 25, MinLng: 40, MaxLng: 110},

	{Name: "Southern Ocean", MinLat: -65, MaxLat: -50, MinLng: -180, MaxLng: 180},
}

// Generator produces random coordinates inside the ocean regions.
type Generator struct {
	regions []Region
	rnd     *rand.Rand
	mu      sync.Mutex
}

// NewGenerator creates a generator over OceanRegions. A nil rnd is seeded
// from the clock.
func NewGenerator(rnd *rand.Rand) *Generator {
	return NewGeneratorWithRegions(OceanRegions, rnd)
}

// NewGeneratorWithRegions creates a generator over a custom region list.
func NewGeneratorWithRegions(regions []Region, rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{regions: regions, rnd: rnd}
}

// Generate picks a region uniformly and samples a point inside it,
// rounded to 6 decimal places.
func (g *Generator) Generate() model.Coordinates {
	g.mu.Lock()
	region := g.regions[g.rnd.Intn(len(g.regions))]
	u, v := g.rnd.Float64(), g.rnd.Float64()
	g.mu.Unlock()

	return Sample(region, u, v)
}

// Sample maps the unit values u (latitude) and v (longitude) into the
// region. Wrapping regions are sampled across the antimeridian.
func Sample(r Region, u, v float64) model.Coordinates {
	lat := r.MinLat + u*(r.MaxLat-r.MinLat)

	maxLng := r.MaxLng
	if r.CrossesAntimeridian() {
		maxLng += 360
	}
	lng := normalizeLongitude(r.MinLng + v*(maxLng-r.MinLng))

	return model.Coordinates{
		Latitude:  Round6(lat),
		Longitude: Round6(lng),
	}
}

// SampleLinear interpolates between MinLng and MaxLng without unwrapping.
// For wrapping regions the result falls outside the region; kept for
// comparison with older stored data.
func SampleLinear(r Region, u, v float64) model.Coordinates {
	return model.Coordinates{
		Latitude:  Round6(r.MinLat + u*(r.MaxLat-r.MinLat)),
		Longitude: Round6(r.MinLng + v*(r.MaxLng-r.MinLng)),
	}
}

// Round6 rounds to 6 decimal places.
func Round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

func normalizeLongitude(lng float64) float64 {
	if lng > 180 {
		return lng - 360
	}
	if lng < -180 {
		return lng + 360
	}
	return lng
}
