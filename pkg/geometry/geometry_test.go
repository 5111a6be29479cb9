package geometry_test

import (
	"math"
	"testing"

	"github.com/adrianliechti/ingester/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name string

		a geometry.Box
		b geometry.Box

		expected float64
	}{
		{
			name:     "identical",
			a:        geometry.NewBox(0, 0, 10, 10),
			b:        geometry.NewBox(0, 0, 10, 10),
			expected: 1,
		},
		{
			name:     "nested",
			a:        geometry.NewBox(0, 0, 10, 10),
			b:        geometry.NewBox(1, 1, 9, 9),
			expected: 0.64,
		},
		{
			name:     "disjoint",
			a:        geometry.NewBox(0, 0, 10, 10),
			b:        geometry.NewBox(20, 20, 30, 30),
			expected: 0,
		},
		{
			name:     "touching edge",
			a:        geometry.NewBox(0, 0, 10, 10),
			b:        geometry.NewBox(10, 0, 20, 10),
			expected: 0,
		},
		{
			name:     "inverted",
			a:        geometry.NewBox(10, 10, 0, 0),
			b:        geometry.NewBox(0, 0, 10, 10),
			expected: 0,
		},
		{
			name:     "degenerate",
			a:        geometry.NewBox(5, 5, 5, 5),
			b:        geometry.NewBox(5, 5, 5, 5),
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, geometry.IoU(tc.a, tc.b), 1e-9)
			assert.InDelta(t, tc.expected, geometry.IoU(tc.b, tc.a), 1e-9)
		})
	}
}

func TestArea(t *testing.T) {
	require.Equal(t, 100.0, geometry.NewBox(0, 0, 10, 10).Area())
	require.Equal(t, 0.0, geometry.NewBox(10, 0, 0, 10).Area())
	require.Equal(t, 0.0, geometry.NewBox(0, 0, math.NaN(), 10).Area())
	require.Equal(t, 0.0, geometry.NewBox(0, 0, math.Inf(1), 10).Area())
}

func TestFromSize(t *testing.T) {
	b := geometry.FromSize(2, 3, geometry.Size{Width: 4, Height: 5})

	require.Equal(t, geometry.NewBox(2, 3, 6, 8), b)
	require.Equal(t, geometry.Size{Width: 4, Height: 5}, b.Size())
}
