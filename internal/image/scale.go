package image

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleNearest resizes src by factor with nearest-neighbor sampling so that
// source pixels stay hard-edged squares. The result is at least 1x1.
func ScaleNearest(src image.Image, factor float64) *image.RGBA {
	b := src.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
