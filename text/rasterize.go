package text

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"image"
	"strings"

	"github.com/gogpu/pixtext/cache"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// DefaultAlphaThreshold is the coverage below which a pixel is dropped.
const DefaultAlphaThreshold uint8 = 200

// margin is the transparent border around the ink of a bitmap, in pixels.
const margin = 1

// Bitmap is a rasterized text block with hard alpha: every pixel of Image
// has alpha 0 or 255. Bitmaps may be shared through the cache and must
// not be modified.
type Bitmap struct {
	// Image is the tightly cropped text, origin at (0, 0).
	Image *image.NRGBA

	// Size is the pixel size the font was rendered at.
	Size int
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.Image.Rect.Dx() }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.Image.Rect.Dy() }

// Opaque reports whether the pixel at (x, y) is solid.
func (b *Bitmap) Opaque(x, y int) bool {
	if !image.Pt(x, y).In(b.Image.Rect) {
		return false
	}
	return b.Image.Pix[b.Image.PixOffset(x, y)+3] == 0xff
}

// OpaqueCount returns the number of solid pixels.
func (b *Bitmap) OpaqueCount() int {
	n := 0
	for i := 3; i < len(b.Image.Pix); i += 4 {
		if b.Image.Pix[i] == 0xff {
			n++
		}
	}
	return n
}

// BitmapKey identifies a rasterization. Any change to one of its fields
// produces a different bitmap.
type BitmapKey struct {
	Text      string
	FontPath  string
	Size      int
	Color     RGB
	Threshold uint8
}

func hashBitmapKey(k BitmapKey) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k.FontPath))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(k.Text))
	var tail [8]byte
	binary.LittleEndian.PutUint32(tail[:4], uint32(k.Size)) //nolint:gosec // sizes are small positive ints
	tail[4], tail[5], tail[6], tail[7] = k.Color.R, k.Color.G, k.Color.B, k.Threshold
	_, _ = h.Write(tail[:])
	return h.Sum64()
}

// Rasterizer turns strings into pixel-perfect bitmaps.
//
// Font files are read once and kept in memory; rasterized bitmaps are
// cached by BitmapKey. Caching never changes the output: a cached bitmap
// is identical to a fresh one for the same key. Call Invalidate when a
// font file changes on disk.
//
// Rasterizer is safe for concurrent use.
type Rasterizer struct {
	config   rasterConfig
	fallback Face
	probe    *SizeProbe
	sources  *cache.ShardedCache[string, *FontSource]
	bitmaps  *cache.ShardedCache[BitmapKey, *Bitmap]
}

// NewRasterizer creates a Rasterizer.
func NewRasterizer(opts ...RasterOption) *Rasterizer {
	config := defaultRasterConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.threshold == 0 {
		config.threshold = 1
	}

	r := &Rasterizer{
		config:   config,
		fallback: NewFallbackFace(config.fallback),
		sources:  cache.NewSharded[string, *FontSource](4, cache.StringHasher),
	}
	if config.cacheLimit >= 0 {
		r.bitmaps = cache.NewSharded[BitmapKey, *Bitmap](config.cacheLimit, hashBitmapKey)
	}
	r.probe = newSizeProbe(config.probeSizes, r.loadSource)
	r.probe.faceOpts = config.faceOpts
	return r
}

// Threshold returns the default alpha threshold.
func (r *Rasterizer) Threshold() uint8 { return r.config.threshold }

// Probe returns the size probe shared with the rasterizer's font cache.
func (r *Rasterizer) Probe() *SizeProbe { return r.probe }

// Rasterize renders text with the default alpha threshold.
// See RasterizeWithThreshold.
func (r *Rasterizer) Rasterize(text, fontPath string, c RGB) (*Bitmap, bool) {
	return r.RasterizeWithThreshold(text, fontPath, c, r.config.threshold)
}

// RasterizeWithThreshold renders a possibly multi-line string in the font at
// fontPath (or the fallback glyph set when fontPath is empty or cannot be
// loaded) at the font's natural pixel size.
//
// Lines are left-aligned and stacked by their ink height inside a 1px
// transparent margin. Pixels whose coverage is below threshold become fully
// transparent; all others become fully opaque in color c.
//
// It returns false for empty or whitespace-only text and when the font engine
// fails; failures are logged, never returned, and the caller skips the layer.
func (r *Rasterizer) RasterizeWithThreshold(text, fontPath string, c RGB, threshold uint8) (bm *Bitmap, ok bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}
	if threshold == 0 {
		threshold = 1
	}
	text = norm.NFC.String(text)

	size := r.probe.NaturalPixelSize(fontPath)
	key := BitmapKey{Text: text, FontPath: fontPath, Size: size, Color: c, Threshold: threshold}
	if r.bitmaps != nil {
		if bm, ok := r.bitmaps.Get(key); ok {
			return bm, true
		}
	}

	defer func() {
		if p := recover(); p != nil {
			slogger().Warn("text: rasterization failed", "font", fontPath, "size", size, "err", fmt.Errorf("font engine panic: %v", p))
			bm, ok = nil, false
		}
	}()

	img, err := render(r.faceFor(fontPath, size), text, c, threshold)
	if err != nil {
		slogger().Warn("text: rasterization failed", "font", fontPath, "size", size, "err", err)
		return nil, false
	}

	bm = &Bitmap{Image: img, Size: size}
	if r.bitmaps != nil {
		r.bitmaps.Set(key, bm)
	}
	return bm, true
}

// NaturalPixelSize returns the natural pixel size of the font at fontPath.
func (r *Rasterizer) NaturalPixelSize(fontPath string) int {
	return r.probe.NaturalPixelSize(fontPath)
}

// Invalidate drops everything cached for fontPath: the parsed font, its
// probed size, and all bitmaps rendered with it.
func (r *Rasterizer) Invalidate(fontPath string) {
	r.sources.Delete(fontPath)
	r.probe.Forget(fontPath)
	if r.bitmaps != nil {
		n := r.bitmaps.DeleteFunc(func(k BitmapKey) bool { return k.FontPath == fontPath })
		slogger().Debug("text: font invalidated", "font", fontPath, "bitmaps", n)
	}
}

// CacheStats returns statistics of the bitmap cache.
func (r *Rasterizer) CacheStats() cache.Stats {
	if r.bitmaps == nil {
		return cache.Stats{}
	}
	return r.bitmaps.Stats()
}

// faceFor returns the face for fontPath at size, falling back to the
// built-in glyph set when fontPath is empty or cannot be loaded.
func (r *Rasterizer) faceFor(fontPath string, size int) Face {
	if fontPath == "" {
		return r.fallback
	}
	src, err := r.loadSource(fontPath)
	if err != nil {
		slogger().Warn("text: font unavailable, using fallback", "font", fontPath, "err", err)
		return r.fallback
	}
	return src.Face(float64(size), r.config.faceOpts...)
}

func (r *Rasterizer) loadSource(path string) (*FontSource, error) {
	if src, ok := r.sources.Get(path); ok {
		return src, nil
	}
	src, err := NewFontSourceFromFile(path, r.config.sourceOpts...)
	if err != nil {
		return nil, err
	}
	r.sources.Set(path, src)
	return src, nil
}

// render draws text into a coverage mask and binarizes it.
func render(face Face, text string, c RGB, threshold uint8) (*image.NRGBA, error) {
	ff, release, err := face.open()
	if err != nil {
		return nil, err
	}
	defer release()

	lines := strings.Split(text, "\n")
	boxes := make([]lineBox, len(lines))
	width, height := 0, 0
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		lines[i] = line
		boxes[i] = measureLine(ff, line)
		width = max(width, boxes[i].width)
		height += boxes[i].height
	}

	mask := image.NewAlpha(image.Rect(0, 0, width+2*margin, height+2*margin))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: ff,
	}
	y := margin
	for i, line := range lines {
		d.Dot = fixed.P(margin-boxes[i].left, y-boxes[i].top)
		d.DrawString(line)
		y += boxes[i].height
	}

	return Binarize(mask, c, threshold), nil
}

// Binarize converts a coverage mask to a hard-alpha image: coverage below
// threshold becomes transparent black, anything else becomes c at full
// opacity. This is what removes anti-aliased edge pixels. A threshold of 0
// is treated as 1 so that uncovered pixels stay transparent.
func Binarize(mask *image.Alpha, c RGB, threshold uint8) *image.NRGBA {
	if threshold == 0 {
		threshold = 1
	}
	out := image.NewNRGBA(mask.Rect)
	for y := mask.Rect.Min.Y; y < mask.Rect.Max.Y; y++ {
		for x := mask.Rect.Min.X; x < mask.Rect.Max.X; x++ {
			if mask.Pix[mask.PixOffset(x, y)] < threshold {
				continue
			}
			o := out.PixOffset(x, y)
			out.Pix[o+0] = c.R
			out.Pix[o+1] = c.G
			out.Pix[o+2] = c.B
			out.Pix[o+3] = 0xff
		}
	}
	return out
}
