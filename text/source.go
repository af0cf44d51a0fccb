package text

import (
	"fmt"
	"os"
	"path/filepath"
)

// FontSource is a parsed font file. It is loaded once and shared; each
// Face drawn from it is cheap. The whole file is held in memory, so no
// file handle stays open.
//
// FontSource is safe for concurrent use.
type FontSource struct {
	parsed ParsedFont
	name   string
	path   string
}

// NewFontSource parses TTF or OTF data. The parser may keep a reference
// to data, so the caller must not modify it afterwards.
func NewFontSource(data []byte, opts ...SourceOption) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	config := defaultSourceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	parsed, err := lookupParser(config.parserName).Parse(data)
	if err != nil {
		return nil, err
	}
	name := parsed.Name()
	if name == "" {
		name = unnamedFont
	}
	return &FontSource{parsed: parsed, name: name}, nil
}

// unnamedFont is the Name of fonts without a name table entry.
const unnamedFont = "Unknown Font"

// NewFontSourceFromFile reads and parses the font file at path.
func NewFontSourceFromFile(path string, opts ...SourceOption) (*FontSource, error) {
	// #nosec G304 -- font paths come from the font directory or the user
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("text: read font: %w", err)
	}

	s, err := NewFontSource(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("text: %s: %w", filepath.Base(path), err)
	}
	s.path = path
	return s, nil
}

// Face returns the font at size pixels per em.
func (s *FontSource) Face(size float64, opts ...FaceOption) Face {
	config := defaultFaceConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &sourceFace{source: s, size: size, hinting: config.hinting}
}

// Name returns the family name.
func (s *FontSource) Name() string { return s.name }

// Path returns the file the source was loaded from, or "" for in-memory data.
func (s *FontSource) Path() string { return s.path }

// HasGlyph reports whether the font has its own glyph for r. Runes
// without one render as the font's missing-glyph box.
func (s *FontSource) HasGlyph(r rune) bool { return s.parsed.HasGlyph(r) }
