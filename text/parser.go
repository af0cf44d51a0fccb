package text

import (
	"sync"

	"golang.org/x/image/font"
)

// FontParser turns the bytes of a TTF or OTF file into a ParsedFont.
type FontParser interface {
	Parse(data []byte) (ParsedFont, error)
}

// ParsedFont is a font file ready to be drawn at any pixel size.
type ParsedFont interface {
	// Name returns the family name, or "" if the font has none.
	Name() string

	// HasGlyph reports whether the font maps r to a glyph of its own.
	HasGlyph(r rune) bool

	// NewFace returns a drawable face at ppem pixels per em. If the face
	// implements io.Closer the caller closes it.
	NewFace(ppem float64, hinting Hinting) (font.Face, error)
}

// DefaultParser is the backend used when no parser is named. It wraps
// golang.org/x/image/font/opentype.
const DefaultParser = "ximage"

var parsers = struct {
	sync.RWMutex
	m map[string]FontParser
}{m: map[string]FontParser{DefaultParser: ximageParser{}}}

// RegisterParser makes a parser available to WithParser under name.
// Registering an existing name replaces it.
func RegisterParser(name string, p FontParser) {
	parsers.Lock()
	defer parsers.Unlock()
	parsers.m[name] = p
}

// unregisterParser removes a parser; the default cannot be removed.
func unregisterParser(name string) {
	if name == DefaultParser {
		return
	}
	parsers.Lock()
	defer parsers.Unlock()
	delete(parsers.m, name)
}

// lookupParser returns the parser registered as name, or the default.
func lookupParser(name string) FontParser {
	parsers.RLock()
	defer parsers.RUnlock()
	if p, ok := parsers.m[name]; ok {
		return p
	}
	return parsers.m[DefaultParser]
}
