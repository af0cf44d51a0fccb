package pixtext

import (
	imgio "github.com/gogpu/pixtext/internal/image"
	"github.com/gogpu/pixtext/text"
)

// EditorOption configures an Editor during creation.
//
// Example:
//
//	// Fallback glyphs only, default threshold
//	ed := pixtext.NewEditor()
//
//	// Shared rasterizer and a scanned font directory
//	r := text.NewRasterizer(text.WithAlphaThreshold(128))
//	ed := pixtext.NewEditor(pixtext.WithRasterizer(r), pixtext.WithCatalog(cat))
type EditorOption func(*editorOptions)

// editorOptions holds optional configuration for Editor creation.
type editorOptions struct {
	raster       *text.Rasterizer
	catalog      *text.Catalog
	viewSize     Size
	jpegQuality  int
	defaultColor RGB
}

// defaultEditorOptions returns the default editor options.
func defaultEditorOptions() editorOptions {
	return editorOptions{
		raster:       nil, // Will be created if nil
		catalog:      nil, // Only the fallback font is available
		viewSize:     Size{W: 800, H: 600},
		jpegQuality:  imgio.DefaultJPEGQuality,
		defaultColor: Black,
	}
}

// WithRasterizer sets the rasterizer the editor renders layers with.
// Sharing one rasterizer between editors shares its bitmap cache.
func WithRasterizer(r *text.Rasterizer) EditorOption {
	return func(o *editorOptions) {
		o.raster = r
	}
}

// WithCatalog sets the font catalog used to resolve font names.
func WithCatalog(c *text.Catalog) EditorOption {
	return func(o *editorOptions) {
		o.catalog = c
	}
}

// WithViewSize sets the initial size of the display area in screen pixels.
// It drives ZoomFit and AddLayerAtCenter.
func WithViewSize(s Size) EditorOption {
	return func(o *editorOptions) {
		if !s.Empty() {
			o.viewSize = s
		}
	}
}

// WithJPEGQuality sets the quality used when exporting to JPEG (1-100).
func WithJPEGQuality(q int) EditorOption {
	return func(o *editorOptions) {
		o.jpegQuality = q
	}
}

// WithDefaultColor sets the color of layers added by AddLayerAtCenter.
func WithDefaultColor(c RGB) EditorOption {
	return func(o *editorOptions) {
		o.defaultColor = c
	}
}
