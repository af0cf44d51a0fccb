package pixtext

import (
	"image"
	"image/color"
)

// Selection marker style.
const (
	// MarkerPadding is how far the outline sits outside the layer box.
	MarkerPadding = 2
	// MarkerWidth is the outline thickness in screen pixels.
	MarkerWidth = 2
)

// MarkerColor is the outline color of the selected layer.
var MarkerColor = color.NRGBA{R: 255, A: 255}

// MarkerDash returns the outline dash pattern.
func MarkerDash() *Dash { return NewDash(5, 5) }

// Marker is a dashed outline the display draws around the selected layer.
// It is an annotation of the screen, never part of the exported raster.
type Marker struct {
	Layer *Layer
	// Rect is the outline in screen space, already padded.
	Rect  image.Rectangle
	Color color.NRGBA
	Width int
	Dash  *Dash
}

// newMarker builds the marker for a layer whose screen box is r.
func newMarker(l *Layer, r image.Rectangle) Marker {
	return Marker{
		Layer: l,
		Rect:  r.Inset(-MarkerPadding),
		Color: MarkerColor,
		Width: MarkerWidth,
		Dash:  MarkerDash(),
	}
}

// DrawMarkers strokes the markers onto dst, which should be a display
// copy. Each side is dashed independently starting at its first corner.
func DrawMarkers(dst *image.RGBA, markers []Marker) {
	for _, m := range markers {
		r := m.Rect
		w := max(m.Width, 1)
		c := color.RGBAModel.Convert(m.Color).(color.RGBA)

		for x := r.Min.X; x < r.Max.X; x++ {
			if !m.Dash.On(x - r.Min.X) {
				continue
			}
			for i := range w {
				setIn(dst, x, r.Min.Y+i, c)
				setIn(dst, x, r.Max.Y-1-i, c)
			}
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			if !m.Dash.On(y - r.Min.Y) {
				continue
			}
			for i := range w {
				setIn(dst, r.Min.X+i, y, c)
				setIn(dst, r.Max.X-1-i, y, c)
			}
		}
	}
}

func setIn(dst *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(dst.Rect) {
		dst.SetRGBA(x, y, c)
	}
}
