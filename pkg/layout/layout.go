package layout

import (
	"slices"

	"github.com/adrianliechti/ingester/pkg/geometry"
)

const DefaultIoUThreshold = 0.7

// Detection is one raw candidate region reported by a layout detector.
type Detection struct {
	Label string `json:"label"`

	Box        geometry.Box `json:"box"`
	Confidence float64      `json:"confidence"`
}

// Suppress removes duplicate detections of the same label.
//
// Detections are visited by descending confidence (ties keep input order). Each kept detection drops
// every remaining detection with the same label whose IoU with it exceeds threshold. Detections with
// different labels never suppress each other.
func Suppress(detections []Detection, threshold float64) []Detection {
	if len(detections) == 0 {
		return []Detection{}
	}

	remaining := slices.Clone(detections)

	slices.SortStableFunc(remaining, func(a, b Detection) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		default:
			return 0
		}
	})

	var kept []Detection

	for len(remaining) > 0 {
		best := remaining[0]
		kept = append(kept, best)

		next := remaining[:0:0]

		for _, d := range remaining[1:] {
			if d.Label == best.Label && geometry.IoU(d.Box, best.Box) > threshold {
				continue
			}

			next = append(next, d)
		}

		remaining = next
	}

	return kept
}

// Filter drops detections whose label is contained in ignore.
func Filter(detections []Detection, ignore ...string) []Detection {
	result := make([]Detection, 0, len(detections))

	for _, d := range detections {
		if slices.Contains(ignore, d.Label) {
			continue
		}

		result = append(result, d)
	}

	return result
}
