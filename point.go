package pixtext

import "image"

// ImagePoint is a position in image space: one unit is one source pixel.
type ImagePoint struct {
	X, Y int
}

// ImagePt is a convenience function to create an ImagePoint.
func ImagePt(x, y int) ImagePoint {
	return ImagePoint{X: x, Y: y}
}

// Add returns the sum of two points.
func (p ImagePoint) Add(q ImagePoint) ImagePoint {
	return ImagePoint{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points.
func (p ImagePoint) Sub(q ImagePoint) ImagePoint {
	return ImagePoint{X: p.X - q.X, Y: p.Y - q.Y}
}

// Clamp returns p with negative coordinates raised to zero.
func (p ImagePoint) Clamp() ImagePoint {
	return ImagePoint{X: max(p.X, 0), Y: max(p.Y, 0)}
}

// In reports whether p lies in r, edges included on all four sides.
func (p ImagePoint) In(r image.Rectangle) bool {
	return r.Min.X <= p.X && p.X <= r.Max.X && r.Min.Y <= p.Y && p.Y <= r.Max.Y
}

// Image returns p as an image.Point.
func (p ImagePoint) Image() image.Point {
	return image.Point{X: p.X, Y: p.Y}
}

// ScreenPoint is a position on the display canvas, in screen pixels.
type ScreenPoint struct {
	X, Y int
}

// ScreenPt is a convenience function to create a ScreenPoint.
func ScreenPt(x, y int) ScreenPoint {
	return ScreenPoint{X: x, Y: y}
}

// Add returns the sum of two points.
func (p ScreenPoint) Add(q ScreenPoint) ScreenPoint {
	return ScreenPoint{X: p.X + q.X, Y: p.Y + q.Y}
}

// Size is a width and height in pixels.
type Size struct {
	W, H int
}

// Empty reports whether s has no area.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}
