package pixtext

import (
	"image"
	"math"

	imgio "github.com/gogpu/pixtext/internal/image"
)

// ZoomLevels are the allowed display scale factors. Only powers of two keep
// every source pixel a square of whole screen pixels.
var ZoomLevels = []float64{0.125, 0.25, 0.5, 1, 2, 4, 8, 16, 32}

// Zoom bounds.
const (
	MinZoom = 0.125
	MaxZoom = 32
)

// fitMargin leaves room around the image when zooming to fit.
const fitMargin = 0.9

// Viewport maps between image space and screen space under a discrete zoom
// factor and a scroll offset. The zoom is always one of ZoomLevels.
type Viewport struct {
	zoom   float64
	offset ScreenPoint
}

// NewViewport returns a viewport at 100% with no scroll offset.
func NewViewport() *Viewport {
	return &Viewport{zoom: 1}
}

// Zoom returns the current zoom factor.
func (v *Viewport) Zoom() float64 { return v.zoom }

// Percent returns the zoom as a whole percentage, for labels.
func (v *Viewport) Percent() int { return int(v.zoom * 100) }

// SnapZoom returns the member of ZoomLevels closest to f. Ties go to the
// smaller factor.
func SnapZoom(f float64) float64 {
	best := ZoomLevels[0]
	for _, z := range ZoomLevels[1:] {
		if math.Abs(z-f) < math.Abs(best-f) {
			best = z
		}
	}
	return best
}

// SetZoom sets the zoom to the allowed factor closest to f and returns it.
func (v *Viewport) SetZoom(f float64) float64 {
	v.zoom = SnapZoom(f)
	return v.zoom
}

// ZoomIn doubles the zoom, up to MaxZoom.
func (v *Viewport) ZoomIn() float64 {
	v.zoom = min(v.zoom*2, MaxZoom)
	return v.zoom
}

// ZoomOut halves the zoom, down to MinZoom.
func (v *Viewport) ZoomOut() float64 {
	v.zoom = max(v.zoom/2, MinZoom)
	return v.zoom
}

// ZoomToFit picks the allowed factor closest to 90% of the scale at which
// img exactly fills view. Empty sizes leave the zoom unchanged.
func (v *Viewport) ZoomToFit(view, img Size) float64 {
	if view.Empty() || img.Empty() {
		return v.zoom
	}
	target := min(float64(view.W)/float64(img.W), float64(view.H)/float64(img.H)) * fitMargin
	return v.SetZoom(target)
}

// Offset returns the scroll offset in screen pixels.
func (v *Viewport) Offset() ScreenPoint { return v.offset }

// SetOffset sets the scroll offset in screen pixels.
func (v *Viewport) SetOffset(p ScreenPoint) { v.offset = p }

// Pan moves the scroll offset by d screen pixels.
func (v *Viewport) Pan(d ScreenPoint) { v.offset = v.offset.Add(d) }

// ImageToScreen returns the screen position of the top-left corner of the
// source pixel p.
func (v *Viewport) ImageToScreen(p ImagePoint) ScreenPoint {
	return ScreenPoint{
		X: int(math.Floor(float64(p.X)*v.zoom)) - v.offset.X,
		Y: int(math.Floor(float64(p.Y)*v.zoom)) - v.offset.Y,
	}
}

// ScreenToImage returns the source pixel containing the screen point p.
func (v *Viewport) ScreenToImage(p ScreenPoint) ImagePoint {
	return ImagePoint{
		X: int(math.Floor(float64(p.X+v.offset.X) / v.zoom)),
		Y: int(math.Floor(float64(p.Y+v.offset.Y) / v.zoom)),
	}
}

// CanvasRect maps an image-space rectangle onto the scaled image, which
// is what Scale returns. Subtract Offset to get window coordinates.
func (v *Viewport) CanvasRect(r image.Rectangle) image.Rectangle {
	scale := func(n int) int { return int(math.Floor(float64(n) * v.zoom)) }
	return image.Rect(scale(r.Min.X), scale(r.Min.Y), scale(r.Max.X), scale(r.Max.Y))
}

// Center returns the image point at the middle of a view of the given
// size, clamped to non-negative coordinates.
func (v *Viewport) Center(view Size) ImagePoint {
	return v.ScreenToImage(ScreenPoint{X: view.W / 2, Y: view.H / 2}).Clamp()
}

// Scale resizes img to the zoom with nearest-neighbor sampling.
func (v *Viewport) Scale(img image.Image) *image.RGBA {
	return imgio.ScaleNearest(img, v.zoom)
}
