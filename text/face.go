package text

import (
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Face is a font at one pixel size: either a FontSource at a size or the
// built-in fallback glyph set. External implementations are not supported.
type Face interface {
	// Size returns the pixel size of the face.
	Size() float64

	// Source returns the FontSource the face was created from, or nil for
	// the fallback face.
	Source() *FontSource

	// open returns a drawable x/image face and its release function.
	open() (font.Face, func(), error)
}

type sourceFace struct {
	source  *FontSource
	size    float64
	hinting Hinting
}

func (f *sourceFace) Size() float64       { return f.size }
func (f *sourceFace) Source() *FontSource { return f.source }

func (f *sourceFace) open() (font.Face, func(), error) {
	ff, err := f.source.parsed.NewFace(f.size, f.hinting)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if c, ok := ff.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return ff, release, nil
}

// fallbackFace wraps a shared bitmap face whose size is fixed by its glyphs.
type fallbackFace struct {
	face font.Face
}

// FallbackFace returns the built-in 7x13 bitmap glyph set. Its glyphs have
// no anti-aliasing to begin with.
func FallbackFace() Face {
	return &fallbackFace{face: basicfont.Face7x13}
}

// NewFallbackFace wraps an x/image face as the fallback. nil selects the
// built-in glyph set. The face is shared and never closed.
func NewFallbackFace(ff font.Face) Face {
	if ff == nil {
		return FallbackFace()
	}
	return &fallbackFace{face: ff}
}

// Size reports the line height of the glyph set.
func (f *fallbackFace) Size() float64 {
	return float64(f.face.Metrics().Height) / 64
}

func (f *fallbackFace) Source() *FontSource { return nil }

func (f *fallbackFace) open() (font.Face, func(), error) {
	return f.face, func() {}, nil
}
