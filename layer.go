package pixtext

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// LayerID identifies a layer for the lifetime of the process.
type LayerID uint64

var lastLayerID atomic.Uint64

// DefaultLayerText is used when a layer is added without text.
const DefaultLayerText = "New Text"

// labelRunes is the number of text runes shown in a layer label.
const labelRunes = 30

// Layer is a text overlay: a string drawn in one font and color at an
// image-space position.
//
// A Layer holds only the data that is flattened on export. Selection and
// drag state live in the Stack. Positions are never negative.
type Layer struct {
	id    LayerID
	pos   ImagePoint
	text  string
	font  string
	color RGB
}

// NewLayer creates a layer. fontPath "" selects the fallback glyph set.
// pos is clamped to non-negative coordinates.
func NewLayer(text, fontPath string, c RGB, pos ImagePoint) *Layer {
	return &Layer{
		id:    LayerID(lastLayerID.Add(1)),
		pos:   pos.Clamp(),
		text:  text,
		font:  fontPath,
		color: c,
	}
}

// ID returns the layer identity.
func (l *Layer) ID() LayerID { return l.id }

// Position returns the top-left corner of the layer's bitmap.
func (l *Layer) Position() ImagePoint { return l.pos }

// Text returns the layer text.
func (l *Layer) Text() string { return l.text }

// Font returns the font path, or "" for the fallback glyph set.
func (l *Layer) Font() string { return l.font }

// Color returns the text color.
func (l *Layer) Color() RGB { return l.color }

// MoveTo sets the position, clamping negative coordinates to zero.
func (l *Layer) MoveTo(p ImagePoint) { l.pos = p.Clamp() }

// SetText replaces the text.
func (l *Layer) SetText(s string) { l.text = s }

// SetFont replaces the font path.
func (l *Layer) SetFont(path string) { l.font = path }

// SetColor replaces the color.
func (l *Layer) SetColor(c RGB) { l.color = c }

// Visible reports whether the layer has anything to draw.
func (l *Layer) Visible() bool { return strings.TrimSpace(l.text) != "" }

// clone returns a copy with a fresh identity.
func (l *Layer) clone() *Layer {
	c := *l
	c.id = LayerID(lastLayerID.Add(1))
	return &c
}

// Label returns the list label of the layer at index i (zero-based):
// "Layer N: " followed by the first 30 runes of the text on one line.
func (l *Layer) Label(i int) string {
	s := strings.ReplaceAll(l.text, "\n", " ")
	if utf8.RuneCountInString(s) > labelRunes {
		s = string([]rune(s)[:labelRunes]) + "..."
	}
	return fmt.Sprintf("Layer %d: %s", i+1, s)
}

func (l *Layer) String() string {
	return fmt.Sprintf("layer %d at (%d,%d)", l.id, l.pos.X, l.pos.Y)
}
