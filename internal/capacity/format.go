package capacity

import (
	"fmt"
	"math"
)

// Status is a presentation bucket for a utilization percentage. The color is
// a fixed token, not a terminal escape; renderers map it however they like.
type Status struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// FormatHours renders an hour figure as "Nh", or "N.Dh" with one decimal when
// the value is fractional.
func FormatHours(h float64) string {
	if h == math.Trunc(h) {
		return fmt.Sprintf("%.0fh", h)
	}
	return fmt.Sprintf("%.1fh", h)
}

// FormatUtilization renders a percentage with one decimal place.
func FormatUtilization(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// UtilizationStatus maps a utilization percentage onto one of five fixed
// buckets.
func UtilizationStatus(pct float64) Status {
	switch {
	case pct >= 100:
		return Status{Key: "overallocated", Label: "Overallocated", Color: "red"}
	case pct >= 90:
		return Status{Key: "high", Label: "High load", Color: "orange"}
	case pct >= 70:
		return Status{Key: "good", Label: "Well utilized", Color: "green"}
	case pct >= 40:
		return Status{Key: "moderate", Label: "Moderate", Color: "blue"}
	default:
		return Status{Key: "low", Label: "Low utilization", Color: "gray"}
	}
}
