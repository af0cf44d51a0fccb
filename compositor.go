package pixtext

import (
	"image"

	"golang.org/x/image/draw"
)

// Frame is one composite: the flattened raster plus, in preview mode, the
// image-space boxes of the selected layer that the display should outline.
type Frame struct {
	// Image is a fresh raster; the base image is never modified.
	Image *image.RGBA

	// Selected holds the bitmap box of the selected layer when selection
	// markers were requested and the layer rendered. Empty otherwise.
	Selected []image.Rectangle

	// Skipped counts visible layers the rasterizer produced nothing for.
	Skipped int
}

// Composite pastes every layer of s onto a copy of base, bottom to top,
// using each bitmap's alpha as the paste mask: transparent glyph pixels
// never touch the pixels beneath. Layers without text or whose
// rasterization fails are skipped.
//
// With markers set, Frame.Selected reports where the selection outline
// belongs. The outline itself is never drawn into the raster.
func Composite(base image.Image, s *Stack, markers bool) *Frame {
	b := base.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Src)

	f := &Frame{Image: out}
	for _, l := range s.layers {
		if !l.Visible() {
			continue
		}
		bm, ok := s.Bitmap(l)
		if !ok {
			f.Skipped++
			Logger().Warn("pixtext: layer skipped", "layer", l.id, "font", l.font)
			continue
		}
		r := bm.Image.Bounds().Add(l.pos.Image())
		draw.Draw(out, r, bm.Image, bm.Image.Bounds().Min, draw.Over)

		if markers && s.IsSelected(l) {
			f.Selected = append(f.Selected, r)
		}
	}
	return f
}

// Flatten composites s onto base for export: no markers.
func Flatten(base image.Image, s *Stack) *image.RGBA {
	return Composite(base, s, false).Image
}
