// Package images - Box geometry in normalized image space.
package images

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Rect is a bounding box in [0,1]-normalized image coordinates.
//
// Decoded boxes may extend past the unit frame; call Clip before emitting them.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// String formats the box for debugging.
func (r Rect) String() string {
	return fmt.Sprintf("(%.4f, %.4f), (%.4f, %.4f)", r.X1, r.Y1, r.X2, r.Y2)
}

// Width returns X2 - X1.
func (r Rect) Width() float32 {
	return r.X2 - r.X1
}

// Height returns Y2 - Y1.
func (r Rect) Height() float32 {
	return r.Y2 - r.Y1
}

// Area returns the area of the box, or 0 when the box is inverted on either axis.
func (r Rect) Area() float32 {
	if r.X2 < r.X1 || r.Y2 < r.Y1 {
		return 0
	}
	return r.Width() * r.Height()
}

// Clip orders each axis, then clamps every coordinate into [0, 1].
//
// The result always has X1 <= X2 and Y1 <= Y2, even when a decoded box came out
// inverted.
//
// Returns:
//   - The clipped box.
func (r Rect) Clip() Rect {
	return Rect{
		X1: clamp01(math32.Min(r.X1, r.X2)),
		Y1: clamp01(math32.Min(r.Y1, r.Y2)),
		X2: clamp01(math32.Max(r.X1, r.X2)),
		Y2: clamp01(math32.Max(r.Y1, r.Y2)),
	}
}

// Scale maps a normalized box onto an image of the given size in pixels.
//
// Arguments:
//   - height: The image height; scales the Y coordinates.
//   - width: The image width; scales the X coordinates.
//
// Returns:
//   - The box in pixel space (still floating point).
func (r Rect) Scale(height, width int) Rect {
	h := float32(height)
	w := float32(width)
	return Rect{
		X1: r.X1 * w,
		Y1: r.Y1 * h,
		X2: r.X2 * w,
		Y2: r.Y2 * h,
	}
}

func clamp01(v float32) float32 {
	return math32.Max(math32.Min(v, 1), 0)
}

// CalculateIoU measures the overlap of two boxes as
//
//	IoU = Area of Intersection / Area of Union
//
// A value of 1.0 means the boxes are identical, 0.0 means they do not overlap.
//
// Boxes that do not intersect, including boxes that only touch along an edge,
// return 0 without evaluating the union. Inverted boxes have zero area.
//
// Arguments:
//   - r: The first box.
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X1: 0, Y1: 0, X2: 0.5, Y2: 0.5}
//	rect2 := Rect{X1: 0.25, Y1: 0.25, X2: 0.75, Y2: 0.75}
//	iou := CalculateIoU(rect1, rect2) // 0.0625 / 0.4375 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	if o.X1 > r.X2 || o.X2 < r.X1 || o.Y1 > r.Y2 || o.Y2 < r.Y1 {
		return 0
	}

	// The intersection starts where both boxes have begun and ends where the
	// first one ends.
	inter := Rect{
		X1: math32.Max(r.X1, o.X1),
		Y1: math32.Max(r.Y1, o.Y1),
		X2: math32.Min(r.X2, o.X2),
		Y2: math32.Min(r.Y2, o.Y2),
	}
	interArea := inter.Area()
	if interArea <= 0 {
		return 0
	}

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0
	}

	return interArea / unionArea
}
