package model

import "math"

// BBox represents a bounding box in top-left origin page coordinates
type BBox struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// NewBBox creates a bounding box from its corner coordinates
func NewBBox(x0, y0, x1, y1 float64) BBox {
	return BBox{
		X0: math.Min(x0, x1),
		Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1),
		Y1: math.Max(y0, y1),
	}
}

// Width returns the horizontal extent
func (b BBox) Width() float64 {
	return b.X1 - b.X0
}

// Height returns the vertical extent
func (b BBox) Height() float64 {
	return b.Y1 - b.Y0
}

// IsZero reports whether the box carries no geometry at all
func (b BBox) IsZero() bool {
	return b.X0 == 0 && b.Y0 == 0 && b.X1 == 0 && b.Y1 == 0
}

// IsValid returns true if the bounding box has positive dimensions
func (b BBox) IsValid() bool {
	return b.Width() > 0 && b.Height() > 0
}

// Union returns the smallest box containing both boxes. A zero box is
// treated as absent.
func (b BBox) Union(other BBox) BBox {
	if b.IsZero() {
		return other
	}
	if other.IsZero() {
		return b
	}
	return BBox{
		X0: math.Min(b.X0, other.X0),
		Y0: math.Min(b.Y0, other.Y0),
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
	}
}

// VerticalGap returns the distance between the bottom of b and the top of
// next, and false when either box is unknown.
func (b BBox) VerticalGap(next BBox) (float64, bool) {
	if b.IsZero() || next.IsZero() {
		return 0, false
	}
	return next.Y0 - b.Y1, true
}

// Array returns the box as [x0, y0, x1, y1]
func (b BBox) Array() [4]float64 {
	return [4]float64{b.X0, b.Y0, b.X1, b.Y1}
}
