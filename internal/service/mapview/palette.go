package mapview

import "ecobot/internal/model"

// Severity colours shared by the detail marker, the point layer and the legend.
const (
	ColorLow    = "#4ade80"
	ColorMedium = "#F97316"
	ColorHigh   = "#ea384c"
)

// LevelColor returns the display colour of a plastic level. Unknown levels
// render as low.
func LevelColor(level model.PlasticLevel) string {
	switch level {
	case model.LevelHigh:
		return ColorHigh
	case model.LevelMedium:
		return ColorMedium
	default:
		return ColorLow
	}
}

// LevelWeight returns the heatmap weight of a plastic level.
func LevelWeight(level model.PlasticLevel) float64 {
	switch level {
	case model.LevelHigh:
		return 1
	case model.LevelMedium:
		return 0.6
	default:
		return 0.3
	}
}

// LegendEntry describes one severity on the global map legend.
type LegendEntry struct {
	Level       model.PlasticLevel
	Title       string
	Color       string
	Description string
}

// Legend lists the severities from lowest to highest.
var Legend = []LegendEntry{
	{model.LevelLow, "Low", ColorLow, "Areas with minimal plastic waste detected (1 item)"},
	{model.LevelMedium, "Medium", ColorMedium, "Areas with moderate plastic pollution (2-4 items)"},
	{model.LevelHigh, "High", ColorHigh, "Areas with significant plastic contamination (5+ items)"},
}
