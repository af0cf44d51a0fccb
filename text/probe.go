package text

import (
	"fmt"

	"github.com/gogpu/pixtext/cache"
)

// DefaultPixelSize is the size used when no natural size can be found
// and for the fallback face.
const DefaultPixelSize = 12

// DefaultProbeSizes returns the candidate sizes tried by the size probe,
// in ascending order.
func DefaultProbeSizes() []int {
	return []int{8, 9, 10, 11, 12, 13, 14, 15, 16, 18, 20, 24}
}

// probeTolerance is the allowed difference in pixels between a candidate
// size and the measured glyph height. Pixel fonts are often off by one
// because of rounding in their own hinting tables.
const probeTolerance = 1

// ProbeResult describes how a natural pixel size was chosen.
type ProbeResult struct {
	// Size is the natural pixel size.
	Size int

	// ReferenceHeight is the ink height of the probe glyph at
	// DefaultPixelSize, or 0 when the font could not be measured.
	ReferenceHeight int

	// Matched reports whether a candidate size matched. When false, Size
	// is DefaultPixelSize.
	Matched bool
}

// SizeProbe finds the pixel size a font was designed for. Pixel fonts are
// crisp only at their native size; any other size brings smoothing back.
//
// Results are memoized per font path. SizeProbe is safe for concurrent use.
type SizeProbe struct {
	sizes []int
	load  func(path string) (*FontSource, error)
	memo  *cache.ShardedCache[string, ProbeResult]

	faceOpts []FaceOption
}

// NewSizeProbe creates a probe that loads fonts from disk.
// With no sizes, DefaultProbeSizes is used.
func NewSizeProbe(sizes ...int) *SizeProbe {
	return newSizeProbe(sizes, func(path string) (*FontSource, error) {
		return NewFontSourceFromFile(path)
	})
}

func newSizeProbe(sizes []int, load func(string) (*FontSource, error)) *SizeProbe {
	if len(sizes) == 0 {
		sizes = DefaultProbeSizes()
	}
	return &SizeProbe{
		sizes: sizes,
		load:  load,
		memo:  cache.NewSharded[string, ProbeResult](16, cache.StringHasher),
	}
}

// NaturalPixelSize returns the natural pixel size of the font at path.
// An empty path, an unreadable or corrupt font, or a font with no matching
// candidate all yield DefaultPixelSize. It never fails.
func (p *SizeProbe) NaturalPixelSize(path string) int {
	return p.Probe(path).Size
}

// Probe is NaturalPixelSize with the details of the decision.
func (p *SizeProbe) Probe(path string) ProbeResult {
	if path == "" {
		return ProbeResult{Size: DefaultPixelSize}
	}
	if res, ok := p.memo.Get(path); ok {
		return res
	}
	// Concurrent misses may probe twice; both store the same result.
	res, err := p.probe(path)
	if err != nil {
		slogger().Warn("text: size probe failed, using default",
			"font", path, "size", DefaultPixelSize, "err", err)
		res = ProbeResult{Size: DefaultPixelSize}
	} else {
		slogger().Debug("text: size probe",
			"font", path, "size", res.Size, "matched", res.Matched,
			"reference_height", res.ReferenceHeight)
	}
	p.memo.Set(path, res)
	return res
}

// Forget drops the memoized result for path.
func (p *SizeProbe) Forget(path string) {
	p.memo.Delete(path)
}

func (p *SizeProbe) probe(path string) (res ProbeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("text: font engine panic: %v", r)
		}
	}()

	src, err := p.load(path)
	if err != nil {
		return ProbeResult{}, err
	}

	ref, err := glyphHeight(src.Face(DefaultPixelSize, p.faceOpts...))
	if err != nil {
		return ProbeResult{}, err
	}
	res = ProbeResult{Size: DefaultPixelSize, ReferenceHeight: ref}

	for _, size := range p.sizes {
		h, err := glyphHeight(src.Face(float64(size), p.faceOpts...))
		if err != nil {
			return ProbeResult{}, err
		}
		if abs(h-size) <= probeTolerance {
			res.Size = size
			res.Matched = true
			return res, nil
		}
	}
	return res, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
