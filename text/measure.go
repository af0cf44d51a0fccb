package text

import (
	"golang.org/x/image/font"
)

// probeGlyph is the glyph measured by the size probe and used to size
// lines that have no ink of their own.
const probeGlyph = "A"

// lineBox is the pixel box of one line relative to its drawing dot.
// left and top are usually <= 0: ink extends above the baseline.
type lineBox struct {
	left, top     int
	width, height int
}

// measureLine returns the ink box of line. Empty lines take the box of
// probeGlyph; whitespace-only lines take its height and their own advance.
func measureLine(ff font.Face, line string) lineBox {
	if line == "" {
		line = probeGlyph
	}

	b, advance := font.BoundString(ff, line)
	if b.Empty() {
		ref, _ := font.BoundString(ff, probeGlyph)
		return lineBox{
			left:   0,
			top:    ref.Min.Y.Floor(),
			width:  advance.Ceil(),
			height: ref.Max.Y.Ceil() - ref.Min.Y.Floor(),
		}
	}

	left := b.Min.X.Floor()
	top := b.Min.Y.Floor()
	return lineBox{
		left:   left,
		top:    top,
		width:  b.Max.X.Ceil() - left,
		height: b.Max.Y.Ceil() - top,
	}
}

// glyphHeight returns the rendered ink height of probeGlyph in face.
func glyphHeight(face Face) (int, error) {
	ff, release, err := face.open()
	if err != nil {
		return 0, err
	}
	defer release()

	return measureLine(ff, probeGlyph).height, nil
}
