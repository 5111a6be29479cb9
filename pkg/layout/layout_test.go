package layout_test

import (
	"math/rand"
	"testing"

	"github.com/adrianliechti/ingester/pkg/geometry"
	"github.com/adrianliechti/ingester/pkg/layout"

	"github.com/stretchr/testify/require"
)

func TestSuppressThreshold(t *testing.T) {
	a := layout.Detection{Label: "text", Confidence: 0.9, Box: geometry.NewBox(0, 0, 10, 10)}
	b := layout.Detection{Label: "text", Confidence: 0.8, Box: geometry.NewBox(1, 1, 9, 9)}

	t.Run("below threshold keeps both", func(t *testing.T) {
		result := layout.Suppress([]layout.Detection{b, a}, 0.7)
		require.Equal(t, []layout.Detection{a, b}, result)
	})

	t.Run("above threshold keeps best", func(t *testing.T) {
		result := layout.Suppress([]layout.Detection{b, a}, 0.5)
		require.Equal(t, []layout.Detection{a}, result)
	})
}

func TestSuppressCrossClass(t *testing.T) {
	a := layout.Detection{Label: "text", Confidence: 0.9, Box: geometry.NewBox(0, 0, 10, 10)}
	b := layout.Detection{Label: "table", Confidence: 0.8, Box: geometry.NewBox(0, 0, 10, 10)}

	result := layout.Suppress([]layout.Detection{a, b}, 0.1)
	require.Len(t, result, 2)
}

func TestSuppressEmpty(t *testing.T) {
	require.Empty(t, layout.Suppress(nil, 0.7))
	require.NotNil(t, layout.Suppress(nil, 0.7))
}

func TestSuppressTies(t *testing.T) {
	first := layout.Detection{Label: "figure", Confidence: 0.5, Box: geometry.NewBox(0, 0, 10, 10)}
	second := layout.Detection{Label: "figure", Confidence: 0.5, Box: geometry.NewBox(0, 0, 10, 10)}

	second.Box.XMax = 10.0001

	result := layout.Suppress([]layout.Detection{first, second}, 0.7)
	require.Equal(t, []layout.Detection{first}, result)
}

func TestSuppressDoesNotMutateInput(t *testing.T) {
	input := []layout.Detection{
		{Label: "text", Confidence: 0.1, Box: geometry.NewBox(0, 0, 1, 1)},
		{Label: "text", Confidence: 0.9, Box: geometry.NewBox(5, 5, 6, 6)},
	}

	layout.Suppress(input, 0.7)

	require.Equal(t, 0.1, input[0].Confidence)
}

func TestSuppressProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	labels := []string{"text", "title", "table", "figure"}

	for i := 0; i < 200; i++ {
		var detections []layout.Detection

		for j := 0; j < rng.Intn(25); j++ {
			x := rng.Float64() * 100
			y := rng.Float64() * 100

			detections = append(detections, layout.Detection{
				Label:      labels[rng.Intn(len(labels))],
				Confidence: rng.Float64(),
				Box:        geometry.NewBox(x, y, x+rng.Float64()*40, y+rng.Float64()*40),
			})
		}

		threshold := rng.Float64()
		kept := layout.Suppress(detections, threshold)

		for a := range kept {
			for b := range kept {
				if a == b || kept[a].Label != kept[b].Label {
					continue
				}

				require.LessOrEqual(t, geometry.IoU(kept[a].Box, kept[b].Box), threshold)
			}
		}

		require.Equal(t, kept, layout.Suppress(kept, threshold), "suppression must be idempotent")

		for _, label := range labels {
			var input, output int

			for _, d := range detections {
				if d.Label == label {
					input++
				}
			}

			for _, d := range kept {
				if d.Label == label {
					output++
				}
			}

			if input > 0 {
				require.Greater(t, output, 0, "every present label keeps at least one detection")
			}
		}
	}
}

func TestFilter(t *testing.T) {
	input := []layout.Detection{
		{Label: "abandon"},
		{Label: "text"},
		{Label: "figure"},
	}

	result := layout.Filter(input, "abandon")

	require.Equal(t, []layout.Detection{{Label: "text"}, {Label: "figure"}}, result)
}
