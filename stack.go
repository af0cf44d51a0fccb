package pixtext

import (
	"image"
	"slices"

	"github.com/gogpu/pixtext/text"
)

// Rasterizer renders layer text. *text.Rasterizer implements it.
type Rasterizer interface {
	Rasterize(s, fontPath string, c RGB) (*text.Bitmap, bool)
}

// interaction is the transient UI state of one layer.
type interaction struct {
	dragging bool
	anchor   ImagePoint
}

// Stack is the ordered set of layers over one image. Insertion order is
// paint order: later layers paint on top.
//
// At most one layer is selected. Interaction state (selection, dragging)
// is kept here, keyed by layer identity, so Layer stays plain data.
//
// Stack is not safe for concurrent use.
type Stack struct {
	raster   Rasterizer
	layers   []*Layer
	selected LayerID
	state    map[LayerID]*interaction
}

// NewStack creates an empty stack that rasterizes with r.
func NewStack(r Rasterizer) *Stack {
	return &Stack{
		raster: r,
		state:  make(map[LayerID]*interaction),
	}
}

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layers returns the layers bottom to top. The slice is a copy.
func (s *Stack) Layers() []*Layer { return slices.Clone(s.layers) }

// At returns the layer at index i, or nil when i is out of range.
func (s *Stack) At(i int) *Layer {
	if i < 0 || i >= len(s.layers) {
		return nil
	}
	return s.layers[i]
}

// Index returns the position of l in paint order, or -1.
func (s *Stack) Index(l *Layer) int {
	if l == nil {
		return -1
	}
	return slices.Index(s.layers, l)
}

// Contains reports whether l is in the stack.
func (s *Stack) Contains(l *Layer) bool { return s.Index(l) >= 0 }

// Add appends l as the new top layer and selects it. Adding a layer that
// is already in the stack only selects it.
func (s *Stack) Add(l *Layer) {
	if !s.Contains(l) {
		s.layers = append(s.layers, l)
		s.state[l.id] = &interaction{}
	}
	s.selected = l.id
}

// Remove removes l by identity and clears the selection if l was selected.
func (s *Stack) Remove(l *Layer) error {
	i := s.Index(l)
	if i < 0 {
		return notFound(l)
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	delete(s.state, l.id)
	if s.selected == l.id {
		s.selected = 0
	}
	return nil
}

// Duplicate appends a copy of l offset by (+5, +5) as the new top layer.
// The copy has its own identity; the selection does not move.
func (s *Stack) Duplicate(l *Layer) (*Layer, error) {
	if !s.Contains(l) {
		return nil, notFound(l)
	}
	d := l.clone()
	d.MoveTo(l.pos.Add(ImagePt(5, 5)))
	s.layers = append(s.layers, d)
	s.state[d.id] = &interaction{}
	return d, nil
}

// Select makes l the only selected layer. nil clears the selection.
func (s *Stack) Select(l *Layer) error {
	if l == nil {
		s.selected = 0
		return nil
	}
	if !s.Contains(l) {
		return notFound(l)
	}
	s.selected = l.id
	return nil
}

// Selected returns the selected layer, or nil.
func (s *Stack) Selected() *Layer {
	if s.selected == 0 {
		return nil
	}
	for _, l := range s.layers {
		if l.id == s.selected {
			return l
		}
	}
	return nil
}

// SelectedIndex returns the index of the selected layer, or -1.
func (s *Stack) SelectedIndex() int {
	return s.Index(s.Selected())
}

// IsSelected reports whether l is the selected layer.
func (s *Stack) IsSelected(l *Layer) bool {
	return l != nil && s.selected != 0 && l.id == s.selected
}

// Bitmap rasterizes l. It returns false when the layer has nothing to draw
// or the font engine failed.
func (s *Stack) Bitmap(l *Layer) (*text.Bitmap, bool) {
	if !l.Visible() {
		return nil, false
	}
	return s.raster.Rasterize(l.text, l.font, l.color)
}

// Bounds returns the image-space rectangle covered by l's bitmap.
func (s *Stack) Bounds(l *Layer) (image.Rectangle, bool) {
	bm, ok := s.Bitmap(l)
	if !ok {
		return image.Rectangle{}, false
	}
	return image.Rect(l.pos.X, l.pos.Y, l.pos.X+bm.Width(), l.pos.Y+bm.Height()), true
}

// HitTest returns the topmost layer whose bitmap box contains p, edges
// included, or nil. Layers with nothing to draw are never hit.
func (s *Stack) HitTest(p ImagePoint) *Layer {
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if r, ok := s.Bounds(l); ok && p.In(r) {
			return l
		}
	}
	return nil
}

// BeginDrag starts dragging l from the image point p. The offset between p
// and the layer position is kept for the whole drag.
func (s *Stack) BeginDrag(l *Layer, p ImagePoint) error {
	if !s.Contains(l) {
		return notFound(l)
	}
	s.EndDrag()
	st := s.state[l.id]
	st.dragging = true
	st.anchor = p.Sub(l.pos)
	return nil
}

// DragTo moves the dragged layer so that the drag anchor lies under p.
// The resulting position is clamped to non-negative coordinates. It
// returns the moved layer, or nil when no drag is active.
func (s *Stack) DragTo(p ImagePoint) *Layer {
	l := s.Dragging()
	if l == nil {
		return nil
	}
	l.MoveTo(p.Sub(s.state[l.id].anchor))
	return l
}

// EndDrag stops any active drag.
func (s *Stack) EndDrag() {
	for _, st := range s.state {
		st.dragging = false
		st.anchor = ImagePoint{}
	}
}

// Dragging returns the layer being dragged, or nil.
func (s *Stack) Dragging() *Layer {
	for _, l := range s.layers {
		if st := s.state[l.id]; st != nil && st.dragging {
			return l
		}
	}
	return nil
}

// Labels returns the list label of every layer, bottom to top.
func (s *Stack) Labels() []string {
	labels := make([]string, len(s.layers))
	for i, l := range s.layers {
		labels[i] = l.Label(i)
	}
	return labels
}

func notFound(l *Layer) error {
	if l == nil {
		return &LayerNotFoundError{}
	}
	return &LayerNotFoundError{ID: l.id}
}
