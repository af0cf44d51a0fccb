package text

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var red = RGB{R: 255}

func stubRasterizer(t *testing.T, f *stubFont, opts ...RasterOption) (*Rasterizer, string) {
	t.Helper()
	name := registerStub(t, f)
	path := writeFile(t, "stub.ttf", []byte("stub"))
	opts = append(opts, WithSourceOptions(WithParser(name)))
	return NewRasterizer(opts...), path
}

func assertHardAlpha(t *testing.T, img *image.NRGBA, c RGB) {
	t.Helper()
	for i := 0; i < len(img.Pix); i += 4 {
		switch img.Pix[i+3] {
		case 0:
			if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
				t.Fatalf("transparent pixel %d has color %v", i/4, img.Pix[i:i+3])
			}
		case 0xff:
			if img.Pix[i] != c.R || img.Pix[i+1] != c.G || img.Pix[i+2] != c.B {
				t.Fatalf("solid pixel %d has color %v, want %v", i/4, img.Pix[i:i+3], c)
			}
		default:
			t.Fatalf("pixel %d has partial alpha %d", i/4, img.Pix[i+3])
		}
	}
}

func assertTransparentBorder(t *testing.T, bm *Bitmap) {
	t.Helper()
	w, h := bm.Width(), bm.Height()
	for x := range w {
		if bm.Opaque(x, 0) || bm.Opaque(x, h-1) {
			t.Fatalf("border pixel in column %d is opaque", x)
		}
	}
	for y := range h {
		if bm.Opaque(0, y) || bm.Opaque(w-1, y) {
			t.Fatalf("border pixel in row %d is opaque", y)
		}
	}
}

func TestRasterizeGeometry(t *testing.T) {
	r, path := stubRasterizer(t, blockFont())

	tests := []struct {
		name   string
		text   string
		w, h   int
		opaque int
	}{
		// Size 8: each glyph is 5x8 with a 6px advance; the edge column drops.
		{"single", "A", 7, 10, 4 * 8},
		{"two glyphs", "AA", 13, 10, 2 * 4 * 8},
		{"two lines", "A\nA", 7, 18, 2 * 4 * 8},
		{"crlf", "A\r\nA", 7, 18, 2 * 4 * 8},
		{"empty line", "A\n\nA", 7, 26, 2 * 4 * 8},
		{"blank line keeps its width", "A\n  \nA", 14, 26, 2 * 4 * 8},
		{"left aligned", "AA\nA", 13, 18, 3 * 4 * 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm, ok := r.Rasterize(tt.text, path, red)
			if !ok {
				t.Fatal("Rasterize returned no bitmap")
			}
			if bm.Size != 8 {
				t.Errorf("Size = %d, want 8", bm.Size)
			}
			if bm.Width() != tt.w || bm.Height() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", bm.Width(), bm.Height(), tt.w, tt.h)
			}
			if got := bm.OpaqueCount(); got != tt.opaque {
				t.Errorf("OpaqueCount = %d, want %d", got, tt.opaque)
			}
			assertHardAlpha(t, bm.Image, red)
			assertTransparentBorder(t, bm)
		})
	}
}

func TestRasterizeGlyphPlacement(t *testing.T) {
	r, path := stubRasterizer(t, blockFont())

	bm, ok := r.Rasterize("A", path, red)
	if !ok {
		t.Fatal("Rasterize returned no bitmap")
	}
	// Ink starts after the 1px margin; column 1 is the dropped edge.
	if bm.Opaque(1, 1) {
		t.Error("edge column should be transparent at threshold 200")
	}
	if !bm.Opaque(2, 1) || !bm.Opaque(5, 8) {
		t.Error("glyph body should be opaque")
	}
	if bm.Opaque(2, 9) {
		t.Error("bottom margin should be transparent")
	}
}

func TestRasterizeThreshold(t *testing.T) {
	r, path := stubRasterizer(t, blockFont())

	tests := []struct {
		threshold uint8
		opaque    int
	}{
		{0, 5 * 8},
		{1, 5 * 8},
		{100, 5 * 8},
		{101, 4 * 8},
		{200, 4 * 8},
		{255, 4 * 8},
	}
	for _, tt := range tests {
		bm, ok := r.RasterizeWithThreshold("A", path, red, tt.threshold)
		if !ok {
			t.Fatalf("threshold %d: no bitmap", tt.threshold)
		}
		if got := bm.OpaqueCount(); got != tt.opaque {
			t.Errorf("threshold %d: OpaqueCount = %d, want %d", tt.threshold, got, tt.opaque)
		}
		assertTransparentBorder(t, bm)
	}
}

func TestRasterizeNothingToDraw(t *testing.T) {
	r := NewRasterizer()
	for _, s := range []string{"", " ", "\t", "\n", " \n \n"} {
		if bm, ok := r.Rasterize(s, "", red); ok || bm != nil {
			t.Errorf("Rasterize(%q) = (%v, %v), want (nil, false)", s, bm, ok)
		}
	}
}

func TestRasterizeFallback(t *testing.T) {
	r := NewRasterizer()

	want, ok := r.Rasterize("Hi", "", red)
	if !ok {
		t.Fatal("fallback face produced no bitmap")
	}
	if want.Size != DefaultPixelSize {
		t.Errorf("Size = %d, want %d", want.Size, DefaultPixelSize)
	}
	assertHardAlpha(t, want.Image, red)
	assertTransparentBorder(t, want)

	corrupt := writeFile(t, "broken.ttf", []byte("definitely not a font"))
	for _, path := range []string{"/nonexistent/font.ttf", corrupt} {
		got, ok := r.Rasterize("Hi", path, red)
		if !ok {
			t.Fatalf("%s: no bitmap", path)
		}
		if diff := cmp.Diff(want.Image.Pix, got.Image.Pix); diff != "" {
			t.Errorf("%s: output differs from fallback (-want +got):\n%s", path, diff)
		}
	}
}

func TestRasterizeOptions(t *testing.T) {
	t.Run("face options", func(t *testing.T) {
		f := blockFont()
		r, path := stubRasterizer(t, f, WithFaceOptions(WithHinting(HintingNone)))
		if _, ok := r.Rasterize("A", path, red); !ok {
			t.Fatal("no bitmap")
		}
		if len(f.hinting) == 0 {
			t.Fatal("no face was opened")
		}
		for i, h := range f.hinting {
			if h != HintingNone {
				t.Errorf("face %d hinting = %v, want None", i, h)
			}
		}
	})

	t.Run("default hinting", func(t *testing.T) {
		f := blockFont()
		r, path := stubRasterizer(t, f)
		if _, ok := r.Rasterize("A", path, red); !ok {
			t.Fatal("no bitmap")
		}
		for i, h := range f.hinting {
			if h != HintingFull {
				t.Errorf("face %d hinting = %v, want Full", i, h)
			}
		}
	})

	t.Run("probe sizes", func(t *testing.T) {
		r, path := stubRasterizer(t, blockFont(), WithProbeSizes(20, 8))
		if got := r.NaturalPixelSize(path); got != 20 {
			t.Errorf("NaturalPixelSize = %d, want 20", got)
		}
	})

	t.Run("fallback face", func(t *testing.T) {
		r := NewRasterizer(WithFallbackFace(&stubFace{w: 5, h: 9, edge: 0xff}))
		bm, ok := r.Rasterize("A", "", red)
		if !ok {
			t.Fatal("no bitmap")
		}
		if bm.Width() != 7 || bm.Height() != 11 {
			t.Errorf("bitmap %dx%d, want 7x11", bm.Width(), bm.Height())
		}
		if got := bm.OpaqueCount(); got != 45 {
			t.Errorf("OpaqueCount = %d, want 45", got)
		}
	})
}

func TestRasterizeRealFont(t *testing.T) {
	r := NewRasterizer()
	path := goRegularPath(t)

	bm, ok := r.Rasterize("Hello", path, RGB{G: 128, B: 255})
	if !ok {
		t.Fatal("no bitmap")
	}
	assertHardAlpha(t, bm.Image, RGB{G: 128, B: 255})
	assertTransparentBorder(t, bm)
	if bm.OpaqueCount() == 0 {
		t.Error("expected some ink")
	}

	lo, _ := r.RasterizeWithThreshold("Hello", path, red, 50)
	hi, _ := r.RasterizeWithThreshold("Hello", path, red, 250)
	if lo.OpaqueCount() < hi.OpaqueCount() {
		t.Errorf("lower threshold kept fewer pixels: %d < %d", lo.OpaqueCount(), hi.OpaqueCount())
	}
	if lo.Width() != hi.Width() || lo.Height() != hi.Height() {
		t.Error("threshold must not change bitmap dimensions")
	}
}

func TestRasterizeColorOnlyChangesColor(t *testing.T) {
	r, path := stubRasterizer(t, blockFont())

	a, _ := r.Rasterize("AB", path, red)
	b, _ := r.Rasterize("AB", path, RGB{B: 200})
	if a.Width() != b.Width() || a.Height() != b.Height() {
		t.Fatal("color changed dimensions")
	}
	for y := range a.Height() {
		for x := range a.Width() {
			if a.Opaque(x, y) != b.Opaque(x, y) {
				t.Fatalf("coverage differs at (%d,%d)", x, y)
			}
		}
	}
	assertHardAlpha(t, b.Image, RGB{B: 200})
}

func TestRasterizeCache(t *testing.T) {
	r, path := stubRasterizer(t, blockFont())

	a, _ := r.Rasterize("A", path, red)
	b, _ := r.Rasterize("A", path, red)
	if a != b {
		t.Error("identical requests should share the cached bitmap")
	}
	if hits := r.CacheStats().Hits; hits != 1 {
		t.Errorf("Hits = %d, want 1", hits)
	}

	r.Invalidate(path)
	c, _ := r.Rasterize("A", path, red)
	if c == a {
		t.Error("Invalidate should drop cached bitmaps")
	}
	if diff := cmp.Diff(a.Image.Pix, c.Image.Pix); diff != "" {
		t.Errorf("re-rendered bitmap differs (-cached +fresh):\n%s", diff)
	}
}

func TestRasterizeCacheDisabled(t *testing.T) {
	r, path := stubRasterizer(t, blockFont(), WithCacheLimit(-1))

	a, _ := r.Rasterize("A", path, red)
	b, _ := r.Rasterize("A", path, red)
	if a == b {
		t.Error("disabled cache returned the same bitmap twice")
	}
	if got := r.CacheStats(); got.Len != 0 {
		t.Errorf("CacheStats().Len = %d, want 0", got.Len)
	}
}

func TestRasterizeNormalizesText(t *testing.T) {
	r, path := stubRasterizer(t, blockFont())

	// U+00C5 and A + U+030A are the same text after NFC.
	a, _ := r.Rasterize("\u00c5", path, red)
	b, _ := r.Rasterize("A\u030a", path, red)
	if a != b {
		t.Error("canonically equivalent text should hit the same cache entry")
	}
}

func TestRasterizeEngineFailure(t *testing.T) {
	tests := []struct {
		name string
		font *stubFont
	}{
		{"panic", &stubFont{height: func(int) int { return 8 }, width: 5, panics: true}},
		{"error", &stubFont{height: func(int) int { return 8 }, width: 5, faceErr: errors.New("stub: no hinting")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, path := stubRasterizer(t, tt.font)
			if bm, ok := r.Rasterize("A", path, red); ok || bm != nil {
				t.Errorf("Rasterize = (%v, %v), want (nil, false)", bm, ok)
			}
			if got := r.NaturalPixelSize(path); got != DefaultPixelSize {
				t.Errorf("NaturalPixelSize = %d, want %d", got, DefaultPixelSize)
			}
		})
	}
}

func TestBinarize(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 4, 1))
	copy(mask.Pix, []uint8{0, 199, 200, 255})

	got := Binarize(mask, RGB{R: 1, G: 2, B: 3}, 200)
	want := []uint8{
		0, 0, 0, 0,
		0, 0, 0, 0,
		1, 2, 3, 255,
		1, 2, 3, 255,
	}
	if diff := cmp.Diff(want, got.Pix); diff != "" {
		t.Errorf("Binarize mismatch (-want +got):\n%s", diff)
	}

	zero := Binarize(mask, RGB{R: 1, G: 2, B: 3}, 0)
	if zero.Pix[3] != 0 {
		t.Error("threshold 0 must keep uncovered pixels transparent")
	}
	if zero.Pix[7] != 255 {
		t.Error("threshold 0 must keep covered pixels")
	}
}

func TestBitmapOpaqueOutOfBounds(t *testing.T) {
	bm := &Bitmap{Image: image.NewNRGBA(image.Rect(0, 0, 2, 2))}
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if bm.Opaque(p.X, p.Y) {
			t.Errorf("Opaque(%v) = true outside the bitmap", p)
		}
	}
}
