// Package text rasterizes strings into hard-alpha bitmaps for pixtext.
//
// The pipeline keeps the split between heavyweight and lightweight font
// objects:
//
//   - FontSource: a parsed TTF/OTF file, loaded once and shared
//   - Face: a FontSource at one pixel size
//   - FontParser: pluggable parsing backend (default: golang.org/x/image)
//
// On top of that sit the pieces that make output pixel-perfect:
//
//   - SizeProbe finds the pixel size a font was designed for
//   - Rasterizer draws at that size and binarizes coverage, so every
//     output pixel is either fully transparent or fully opaque
//   - Catalog and CatalogWatcher map display names to font files
//
// # Example usage
//
//	r := text.NewRasterizer()
//	bm, ok := r.Rasterize("HELLO\nWORLD", "fonts/pixel.ttf", text.RGB{R: 255})
//	if !ok {
//	    // nothing to draw
//	}
//	_ = bm.Image // *image.NRGBA, alpha is 0 or 255
//
// A missing or corrupt font file never fails a render: the built-in
// 7x13 glyph set is used instead and a warning is logged.
package text
