package prediction

// Comfort band bounds in °C, inclusive on both ends
const (
	ColdThreshold = 34.5
	HotThreshold  = 35.6
)

// Temperature categories
const (
	CategoryCold        = "cold"
	CategoryComfortable = "comfortable"
	CategoryHot         = "hot"
)

// ClassifyTemperature buckets a predicted temperature the same way the
// backend does.
func ClassifyTemperature(temp float64) string {
	switch {
	case temp < ColdThreshold:
		return CategoryCold
	case temp > HotThreshold:
		return CategoryHot
	default:
		return CategoryComfortable
	}
}
