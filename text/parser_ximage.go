package text

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

type ximageParser struct{}

func (ximageParser) Parse(data []byte) (ParsedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	return &ximageFont{f: f}, nil
}

// ximageFont is a ParsedFont over an sfnt.Font.
type ximageFont struct {
	f *opentype.Font
}

func (x *ximageFont) Name() string {
	for _, id := range []sfnt.NameID{sfnt.NameIDFamily, sfnt.NameIDFull} {
		if name, err := x.f.Name(nil, id); err == nil && name != "" {
			return name
		}
	}
	return ""
}

func (x *ximageFont) HasGlyph(r rune) bool {
	idx, err := x.f.GlyphIndex(nil, r)
	return err == nil && idx != 0
}

// NewFace draws at 72 DPI, where one point is one pixel.
func (x *ximageFont) NewFace(ppem float64, hinting Hinting) (font.Face, error) {
	face, err := opentype.NewFace(x.f, &opentype.FaceOptions{
		Size:    ppem,
		DPI:     72,
		Hinting: hinting.ximage(),
	})
	if err != nil {
		return nil, fmt.Errorf("text: new face at %gpx: %w", ppem, err)
	}
	return face, nil
}
