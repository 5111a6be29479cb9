package geometry

import "math"

// Box is an axis-aligned rectangle with a top-left origin.
type Box struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewBox(xMin, yMin, xMax, yMax float64) Box {
	return Box{
		XMin: xMin,
		YMin: yMin,
		XMax: xMax,
		YMax: yMax,
	}
}

// FromSize builds a box from a top-left position and an extent.
func FromSize(left, top float64, size Size) Box {
	return Box{
		XMin: left,
		YMin: top,
		XMax: left + size.Width,
		YMax: top + size.Height,
	}
}

func (b Box) Width() float64 {
	return positive(b.XMax - b.XMin)
}

func (b Box) Height() float64 {
	return positive(b.YMax - b.YMin)
}

// Area is zero for degenerate, inverted or non-finite boxes.
func (b Box) Area() float64 {
	return b.Width() * b.Height()
}

func (b Box) Empty() bool {
	return b.Area() == 0
}

func (b Box) Size() Size {
	return Size{
		Width:  b.Width(),
		Height: b.Height(),
	}
}

func (b Box) Scale(factor float64) Box {
	return Box{
		XMin: b.XMin * factor,
		YMin: b.YMin * factor,
		XMax: b.XMax * factor,
		YMax: b.YMax * factor,
	}
}

func (b Box) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

func (b Box) Center() (float64, float64) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2
}

// Covers reports whether the center of o lies inside b.
func (b Box) Covers(o Box) bool {
	return b.Contains(o.Center())
}

// Intersect returns the overlapping region, which is empty when the boxes are disjoint.
func (b Box) Intersect(o Box) Box {
	return Box{
		XMin: math.Max(b.XMin, o.XMin),
		YMin: math.Max(b.YMin, o.YMin),
		XMax: math.Min(b.XMax, o.XMax),
		YMax: math.Min(b.YMax, o.YMax),
	}
}

// IoU returns intersection over union, 0 when the boxes do not overlap.
func IoU(a, b Box) float64 {
	inter := a.Intersect(b)

	if inter.XMax-inter.XMin <= 0 || inter.YMax-inter.YMin <= 0 {
		return 0
	}

	interArea := inter.Area()
	union := a.Area() + b.Area() - interArea

	if union <= 0 || math.IsNaN(union) {
		return 0
	}

	return interArea / union
}

func positive(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}
