package text

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gotext "github.com/go-text/typesetting/font"
)

// SystemDefault is the name of the synthetic catalog entry offered when
// the font directory holds no fonts. Its Path is empty, which selects the
// fallback glyph set.
const SystemDefault = "System Default"

// DefaultFontPatterns are the file patterns a catalog scan accepts.
// Matching is case-insensitive.
var DefaultFontPatterns = []string{"*.{ttf,otf}"}

// FontEntry is one selectable font resource.
type FontEntry struct {
	// Name is the file name without extension, or SystemDefault.
	Name string

	// Path is the font file, or "" for the fallback glyph set.
	Path string

	// Family is the family name recorded in the font, if it could be parsed.
	Family string

	// Valid reports whether the file parsed as an OpenType font.
	Valid bool

	// HasProbeGlyph reports whether the font maps the glyph used by the
	// size probe. Without it the natural size is always DefaultPixelSize.
	HasProbeGlyph bool
}

// Catalog is an immutable name -> font lookup table built once from a
// font directory and shared by reference.
type Catalog struct {
	dir     string
	entries []FontEntry
	byName  map[string]int
	byPath  map[string]int
}

// CatalogOption configures ScanCatalog.
type CatalogOption func(*catalogConfig)

type catalogConfig struct {
	patterns []string
	create   bool
}

// WithPatterns replaces DefaultFontPatterns. Patterns use doublestar
// syntax and are matched against lower-cased file names.
func WithPatterns(patterns ...string) CatalogOption {
	return func(c *catalogConfig) {
		c.patterns = append([]string(nil), patterns...)
	}
}

// WithCreateDir controls whether a missing font directory is created.
// It is created by default so users know where to put their fonts.
func WithCreateDir(create bool) CatalogOption {
	return func(c *catalogConfig) {
		c.create = create
	}
}

// ScanCatalog scans dir (not recursively) for font files. Every matching
// file becomes an entry keyed by its file name without extension, even if
// it fails to parse; such fonts render with the fallback glyph set.
// If no font is found the catalog holds a single SystemDefault entry.
//
// A missing directory is not an error.
func ScanCatalog(dir string, opts ...CatalogOption) (*Catalog, error) {
	config := catalogConfig{patterns: DefaultFontPatterns, create: true}
	for _, opt := range opts {
		opt(&config)
	}
	for _, p := range config.patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("text: invalid font pattern %q", p)
		}
	}

	if config.create && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("text: create font directory: %w", err)
		}
	}

	var entries []FontEntry
	files, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("text: scan font directory: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !matchesAny(config.patterns, f.Name()) {
			continue
		}
		entries = append(entries, describeFont(filepath.Join(dir, f.Name())))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	if len(entries) == 0 {
		entries = []FontEntry{{Name: SystemDefault}}
	}

	slogger().Info("text: font catalog scanned", "dir", dir, "fonts", len(entries))
	return NewCatalog(dir, entries), nil
}

// NewCatalog builds a catalog from explicit entries. Later entries with a
// duplicate name are dropped.
func NewCatalog(dir string, entries []FontEntry) *Catalog {
	c := &Catalog{
		dir:    dir,
		byName: make(map[string]int, len(entries)),
		byPath: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if _, dup := c.byName[e.Name]; dup {
			continue
		}
		c.byName[e.Name] = len(c.entries)
		if _, ok := c.byPath[e.Path]; !ok {
			c.byPath[e.Path] = len(c.entries)
		}
		c.entries = append(c.entries, e)
	}
	return c
}

func matchesAny(patterns []string, name string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, lower); ok {
			return true
		}
	}
	return false
}

// describeFont reads path once and records what the font offers.
func describeFont(path string) FontEntry {
	base := filepath.Base(path)
	e := FontEntry{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		slogger().Warn("text: unreadable font file", "path", path, "err", err)
		return e
	}

	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		slogger().Warn("text: font file does not parse, fallback glyphs will be used", "path", path, "err", err)
		return e
	}
	e.Valid = true
	_, e.HasProbeGlyph = face.NominalGlyph([]rune(probeGlyph)[0])

	if src, err := NewFontSource(data); err == nil {
		e.Family = src.Name()
	}
	return e
}

// Dir returns the scanned directory.
func (c *Catalog) Dir() string { return c.dir }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of the entries in name order.
func (c *Catalog) Entries() []FontEntry {
	return append([]FontEntry(nil), c.entries...)
}

// Names returns the entry names in order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup returns the entry with the given name.
func (c *Catalog) Lookup(name string) (FontEntry, bool) {
	i, ok := c.byName[name]
	if !ok {
		return FontEntry{}, false
	}
	return c.entries[i], true
}

// NameFor returns the name of the entry whose path is path. It is used to
// show a layer's font in a selector.
func (c *Catalog) NameFor(path string) (string, bool) {
	i, ok := c.byPath[path]
	if !ok {
		return "", false
	}
	return c.entries[i].Name, true
}

// Default returns the first entry. A catalog always has at least one entry
// when built by ScanCatalog.
func (c *Catalog) Default() FontEntry {
	if len(c.entries) == 0 {
		return FontEntry{Name: SystemDefault}
	}
	return c.entries[0]
}
