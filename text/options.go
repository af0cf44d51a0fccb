package text

import "golang.org/x/image/font"

// SourceOption configures FontSource creation.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	parserName string
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		parserName: DefaultParser,
	}
}

// WithParser specifies the font parser backend.
// The default is "ximage" which uses golang.org/x/image/font/opentype.
func WithParser(name string) SourceOption {
	return func(c *sourceConfig) {
		c.parserName = name
	}
}

// FaceOption configures Face creation.
type FaceOption func(*faceConfig)

type faceConfig struct {
	hinting Hinting
}

func defaultFaceConfig() faceConfig {
	return faceConfig{
		hinting: HintingFull,
	}
}

// WithHinting sets the hinting mode for the face.
// Pixel fonts rely on full hinting to land on the pixel grid.
func WithHinting(h Hinting) FaceOption {
	return func(c *faceConfig) {
		c.hinting = h
	}
}

// RasterOption configures a Rasterizer.
type RasterOption func(*rasterConfig)

type rasterConfig struct {
	threshold  uint8
	cacheLimit int
	fallback   font.Face
	probeSizes []int
	sourceOpts []SourceOption
	faceOpts   []FaceOption
}

func defaultRasterConfig() rasterConfig {
	return rasterConfig{
		threshold:  DefaultAlphaThreshold,
		cacheLimit: 32,
		probeSizes: DefaultProbeSizes(),
	}
}

// WithAlphaThreshold sets the coverage cut-off used by Rasterize.
// Coverage strictly below the threshold becomes transparent. Zero is
// raised to one so that uncovered pixels always stay transparent.
func WithAlphaThreshold(threshold uint8) RasterOption {
	return func(c *rasterConfig) {
		c.threshold = threshold
	}
}

// WithCacheLimit sets the per-shard capacity of the bitmap cache.
// A negative value disables bitmap caching.
func WithCacheLimit(n int) RasterOption {
	return func(c *rasterConfig) {
		c.cacheLimit = n
	}
}

// WithFallbackFace replaces the built-in fallback glyph set used when a
// layer has no custom font or its font cannot be loaded.
func WithFallbackFace(f font.Face) RasterOption {
	return func(c *rasterConfig) {
		c.fallback = f
	}
}

// WithProbeSizes replaces the candidate sizes tried by the size probe.
// Sizes are tried in the given order.
func WithProbeSizes(sizes ...int) RasterOption {
	return func(c *rasterConfig) {
		c.probeSizes = append([]int(nil), sizes...)
	}
}

// WithSourceOptions passes options to every FontSource the rasterizer loads.
func WithSourceOptions(opts ...SourceOption) RasterOption {
	return func(c *rasterConfig) {
		c.sourceOpts = append(c.sourceOpts, opts...)
	}
}

// WithFaceOptions passes options, such as WithHinting, to every face the
// rasterizer and its size probe draw with.
func WithFaceOptions(opts ...FaceOption) RasterOption {
	return func(c *rasterConfig) {
		c.faceOpts = append(c.faceOpts, opts...)
	}
}
