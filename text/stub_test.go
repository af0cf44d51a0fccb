package text

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// stubFont is a ParsedFont with exact, predictable glyph geometry.
// Every visible rune is a width x height(size) block whose leftmost column
// has coverage edge and the rest full coverage. Space has no ink.
type stubFont struct {
	height  func(size int) int
	width   int
	edge    uint8
	panics  bool
	faceErr error

	// hinting records the mode of every face opened.
	hinting []Hinting
}

func (f *stubFont) Name() string      { return "Stub" }
func (f *stubFont) HasGlyph(rune) bool { return true }

func (f *stubFont) NewFace(ppem float64, h Hinting) (font.Face, error) {
	f.hinting = append(f.hinting, h)
	if f.panics {
		panic("stub: broken hinting program")
	}
	if f.faceErr != nil {
		return nil, f.faceErr
	}
	return &stubFace{w: f.width, h: f.height(int(ppem)), edge: f.edge}, nil
}

type stubFace struct {
	w, h int
	edge uint8
}

func (f *stubFace) Close() error { return nil }

func (f *stubFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	advance := fixed.I(f.w + 1)
	mask := image.NewAlpha(image.Rect(0, 0, f.w, f.h))
	if r == ' ' {
		return image.Rectangle{}, mask, image.Point{}, advance, true
	}
	for y := range f.h {
		for x := range f.w {
			a := uint8(0xff)
			if x == 0 {
				a = f.edge
			}
			mask.Pix[mask.PixOffset(x, y)] = a
		}
	}
	x, y := dot.X.Round(), dot.Y.Round()
	return image.Rect(x, y-f.h, x+f.w, y), mask, image.Point{}, advance, true
}

func (f *stubFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	advance := fixed.I(f.w + 1)
	if r == ' ' {
		return fixed.Rectangle26_6{}, advance, true
	}
	return fixed.R(0, -f.h, f.w, 0), advance, true
}

func (f *stubFace) GlyphAdvance(rune) (fixed.Int26_6, bool) { return fixed.I(f.w + 1), true }

func (f *stubFace) Kern(_, _ rune) fixed.Int26_6 { return 0 }

func (f *stubFace) Metrics() font.Metrics {
	return font.Metrics{
		Height:    fixed.I(f.h + 2),
		Ascent:    fixed.I(f.h),
		Descent:   fixed.I(1),
		CapHeight: fixed.I(f.h),
	}
}

type stubParser struct {
	font *stubFont
}

func (p stubParser) Parse(data []byte) (ParsedFont, error) {
	if string(data) == "corrupt" {
		return nil, errors.New("stub: bad magic")
	}
	return p.font, nil
}

var stubSeq atomic.Int64

// registerStub registers f as a parser and returns its name.
func registerStub(t *testing.T, f *stubFont) string {
	t.Helper()
	name := "stub-" + strconv.FormatInt(stubSeq.Add(1), 10)
	RegisterParser(name, stubParser{font: f})
	t.Cleanup(func() { unregisterParser(name) })
	return name
}

// blockFont returns a stub whose glyph height equals the pixel size, so
// its natural size is the first probe candidate.
func blockFont() *stubFont {
	return &stubFont{height: func(size int) int { return size }, width: 5, edge: 100}
}

// writeFile writes data to name inside a fresh temp dir and returns the path.
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// goRegularPath writes the Go Regular font to a temp file.
func goRegularPath(t *testing.T) string {
	t.Helper()
	return writeFile(t, "Go-Regular.ttf", goregular.TTF)
}
