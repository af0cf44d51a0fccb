package pixtext

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	imgio "github.com/gogpu/pixtext/internal/image"
	"github.com/gogpu/pixtext/text"
)

// Field names a layer property for UpdateLayer.
type Field int

// Layer fields.
const (
	// FieldText takes a string.
	FieldText Field = iota
	// FieldFont takes a font path string; "" selects the fallback glyph set.
	FieldFont
	// FieldColor takes an RGB or a "#rrggbb" string.
	FieldColor
	// FieldPosition takes an ImagePoint.
	FieldPosition
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldText:
		return "text"
	case FieldFont:
		return "font"
	case FieldColor:
		return "color"
	case FieldPosition:
		return "position"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Selection describes the selected layer for a properties panel.
// Layer is nil and Index is -1 when nothing is selected.
type Selection struct {
	Layer    *Layer
	Index    int
	Text     string
	FontName string
	Color    RGB
}

// Preview is one display frame.
type Preview struct {
	// Image is the composite scaled by Zoom with nearest-neighbor sampling.
	Image *image.RGBA

	// Zoom is the factor Image was scaled by.
	Zoom float64

	// Markers outline the selected layer in Image coordinates.
	Markers []Marker

	// Damage lists the image-space areas changed since the previous preview.
	Damage []image.Rectangle

	// Skipped counts layers that failed to rasterize.
	Skipped int
}

// Annotated returns a copy of the preview image with the markers drawn.
func (p *Preview) Annotated() *image.RGBA {
	out := imgio.ToRGBA(p.Image)
	DrawMarkers(out, p.Markers)
	return out
}

// Editor is the engine behind a text-over-image editor: one background
// image, a stack of text layers, and a viewport. Every UI action maps to
// one method.
//
// Editor is not safe for concurrent use. Deliver font watcher events on
// the same goroutine as UI calls.
type Editor struct {
	raster   *text.Rasterizer
	stack    *Stack
	view     *Viewport
	catalog  *text.Catalog
	base     *image.RGBA
	damage   *Damage
	viewSize Size

	save         imgio.SaveOptions
	defaultColor RGB

	listeners []func(Selection)
	notified  selectionKey
}

// selectionKey is what listeners last saw: a layer and its list index.
type selectionKey struct {
	id    LayerID
	index int
}

// NewEditor creates an editor with no image.
func NewEditor(opts ...EditorOption) *Editor {
	o := defaultEditorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.raster == nil {
		o.raster = text.NewRasterizer()
	}
	return &Editor{
		raster:       o.raster,
		stack:        NewStack(o.raster),
		view:         NewViewport(),
		catalog:      o.catalog,
		viewSize:     o.viewSize,
		save:         imgio.SaveOptions{JPEGQuality: o.jpegQuality},
		notified:     selectionKey{index: -1},
		defaultColor: o.defaultColor,
	}
}

// Rasterizer returns the rasterizer layers are rendered with.
func (e *Editor) Rasterizer() *text.Rasterizer { return e.raster }

// Stack returns the layer stack.
func (e *Editor) Stack() *Stack { return e.stack }

// Viewport returns the display transform.
func (e *Editor) Viewport() *Viewport { return e.view }

// Image returns the background image, or nil before an import.
func (e *Editor) Image() *image.RGBA { return e.base }

// HasImage reports whether a background image is loaded.
func (e *Editor) HasImage() bool { return e.base != nil }

// ImageSize returns the background image size.
func (e *Editor) ImageSize() Size {
	if e.base == nil {
		return Size{}
	}
	return Size{W: e.base.Rect.Dx(), H: e.base.Rect.Dy()}
}

// ImportImage loads the background image from path and zooms to fit.
// Layers are kept. On error the previous image stays in place.
func (e *Editor) ImportImage(path string) error {
	img, err := imgio.Load(path)
	if err != nil {
		return fmt.Errorf("pixtext: import %s: %w", path, err)
	}
	e.SetImage(img)
	Logger().Info("pixtext: image imported", "path", path, "width", img.Rect.Dx(), "height", img.Rect.Dy())
	return nil
}

// SetImage replaces the background image with a copy of img and zooms to
// fit.
func (e *Editor) SetImage(img image.Image) {
	e.base = imgio.ToRGBA(img)
	e.damage = NewDamage(e.ImageSize())
	e.damage.MarkAll()
	e.ZoomFit()
}

// Flatten returns the background with every layer pasted on it. Nothing
// but layer pixels is added.
func (e *Editor) Flatten() (*image.RGBA, error) {
	if e.base == nil {
		return nil, ErrNoImage
	}
	return Flatten(e.base, e.stack), nil
}

// Export flattens the editor and writes the result to path. The format
// follows the extension; a path without one gets ".png". It returns the
// path written.
func (e *Editor) Export(path string) (string, error) {
	img, err := e.Flatten()
	if err != nil {
		return "", err
	}
	if filepath.Ext(path) == "" {
		path += imgio.DefaultExt
	}
	if err := imgio.Save(path, img, e.save); err != nil {
		return "", fmt.Errorf("pixtext: export %s: %w", path, err)
	}
	Logger().Info("pixtext: image exported", "path", path, "layers", e.stack.Len())
	return path, nil
}

// AddLayer adds a layer on top of the stack and selects it. Trailing
// newlines are dropped and blank text becomes DefaultLayerText.
func (e *Editor) AddLayer(s, fontPath string, c RGB, pos ImagePoint) (*Layer, error) {
	if e.base == nil {
		return nil, ErrNoImage
	}
	s = strings.TrimRight(s, "\n")
	if strings.TrimSpace(s) == "" {
		s = DefaultLayerText
	}
	l := NewLayer(s, fontPath, c, pos)
	e.stack.Add(l)
	e.markLayer(l)
	e.syncSelection()
	return l, nil
}

// DefaultColor returns the color of layers added by AddLayerAtCenter.
func (e *Editor) DefaultColor() RGB { return e.defaultColor }

// AddLayerAtCenter adds a layer at the image point under the middle of
// the view, in the default color.
func (e *Editor) AddLayerAtCenter(s, fontPath string) (*Layer, error) {
	return e.AddLayer(s, fontPath, e.defaultColor, e.ViewCenter())
}

// UpdateLayer sets one property of l. The value type must match the
// field, otherwise ErrFieldValue is returned and l is unchanged.
func (e *Editor) UpdateLayer(l *Layer, f Field, v any) error {
	if !e.stack.Contains(l) {
		return notFound(l)
	}

	var apply func()
	switch f {
	case FieldText:
		s, ok := v.(string)
		if !ok {
			return fieldError(f, v)
		}
		apply = func() { l.SetText(s) }
	case FieldFont:
		s, ok := v.(string)
		if !ok {
			return fieldError(f, v)
		}
		apply = func() { l.SetFont(s) }
	case FieldColor:
		var c RGB
		switch x := v.(type) {
		case RGB:
			c = x
		case string:
			parsed, err := ParseRGB(x)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrFieldValue, err)
			}
			c = parsed
		default:
			return fieldError(f, v)
		}
		apply = func() { l.SetColor(c) }
	case FieldPosition:
		p, ok := v.(ImagePoint)
		if !ok {
			return fieldError(f, v)
		}
		apply = func() { l.MoveTo(p) }
	default:
		return fieldError(f, v)
	}

	e.touch(l, apply)
	return nil
}

func fieldError(f Field, v any) error {
	return fmt.Errorf("%w: %s cannot be %T", ErrFieldValue, f, v)
}

// SetLayerFont sets the font of l by catalog name.
func (e *Editor) SetLayerFont(l *Layer, name string) error {
	entry, ok := e.lookupFont(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	return e.UpdateLayer(l, FieldFont, entry.Path)
}

// FontPath resolves a catalog name to a font path. text.SystemDefault and
// "" resolve to the fallback glyph set.
func (e *Editor) FontPath(name string) (string, error) {
	entry, ok := e.lookupFont(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	return entry.Path, nil
}

func (e *Editor) lookupFont(name string) (text.FontEntry, bool) {
	if name == "" || name == text.SystemDefault {
		return text.FontEntry{Name: text.SystemDefault}, true
	}
	if e.catalog == nil {
		return text.FontEntry{}, false
	}
	return e.catalog.Lookup(name)
}

// DeleteLayer removes l. If it was selected the selection is cleared.
func (e *Editor) DeleteLayer(l *Layer) error {
	r, hadBox := e.stack.Bounds(l)
	if err := e.stack.Remove(l); err != nil {
		return err
	}
	if hadBox {
		e.damage.MarkRect(r)
	}
	e.syncSelection()
	return nil
}

// DuplicateLayer copies l 5 pixels right and down, on top of the stack.
// The selection stays where it was.
func (e *Editor) DuplicateLayer(l *Layer) (*Layer, error) {
	d, err := e.stack.Duplicate(l)
	if err != nil {
		return nil, err
	}
	e.markLayer(d)
	return d, nil
}

// Layers returns the layers bottom to top.
func (e *Editor) Layers() []*Layer { return e.stack.Layers() }

// LayerLabels returns the layer list entries, bottom to top.
func (e *Editor) LayerLabels() []string { return e.stack.Labels() }

// Selected returns the selected layer, or nil.
func (e *Editor) Selected() *Layer { return e.stack.Selected() }

// SelectIndex selects the layer at index i. -1 clears the selection.
func (e *Editor) SelectIndex(i int) error {
	if i == -1 {
		return e.SelectLayer(nil)
	}
	l := e.stack.At(i)
	if l == nil {
		return fmt.Errorf("%w: %d of %d", ErrLayerIndex, i, e.stack.Len())
	}
	return e.SelectLayer(l)
}

// SelectLayer selects l. nil clears the selection.
func (e *Editor) SelectLayer(l *Layer) error {
	prev := e.stack.Selected()
	if err := e.stack.Select(l); err != nil {
		return err
	}
	if prev != l {
		e.markLayer(prev)
		e.markLayer(l)
	}
	e.syncSelection()
	return nil
}

// SelectAt handles a press at the screen point p: the topmost layer under
// it is selected and starts dragging. A press on empty space clears the
// selection and returns nil.
func (e *Editor) SelectAt(p ScreenPoint) *Layer {
	ip := e.view.ScreenToImage(p)
	l := e.stack.HitTest(ip)
	_ = e.SelectLayer(l)
	if l != nil {
		_ = e.stack.BeginDrag(l, ip)
	}
	return l
}

// DragTo moves the dragged layer so the grab point follows the screen
// point p. It returns false when no drag is active.
func (e *Editor) DragTo(p ScreenPoint) bool {
	l := e.stack.Dragging()
	if l == nil {
		return false
	}
	ip := e.view.ScreenToImage(p)
	e.touch(l, func() { e.stack.DragTo(ip) })
	return true
}

// EndDrag finishes a drag.
func (e *Editor) EndDrag() { e.stack.EndDrag() }

// SetZoom snaps f to the nearest allowed factor and applies it.
func (e *Editor) SetZoom(f float64) float64 {
	return e.zoomed(e.view.SetZoom(f))
}

// ZoomIn doubles the zoom up to MaxZoom.
func (e *Editor) ZoomIn() float64 { return e.zoomed(e.view.ZoomIn()) }

// ZoomOut halves the zoom down to MinZoom.
func (e *Editor) ZoomOut() float64 { return e.zoomed(e.view.ZoomOut()) }

// ZoomFit zooms so the image fits the view with a margin.
func (e *Editor) ZoomFit() float64 {
	return e.zoomed(e.view.ZoomToFit(e.viewSize, e.ImageSize()))
}

func (e *Editor) zoomed(z float64) float64 {
	e.damage.MarkAll()
	return z
}

// SetViewSize records the display area size in screen pixels.
func (e *Editor) SetViewSize(s Size) { e.viewSize = s }

// ViewSize returns the display area size.
func (e *Editor) ViewSize() Size { return e.viewSize }

// ViewCenter returns the image point under the middle of the view.
func (e *Editor) ViewCenter() ImagePoint { return e.view.Center(e.viewSize) }

// Recomposite renders the display frame: the composite at the current
// zoom plus the selection markers.
func (e *Editor) Recomposite() (*Preview, error) {
	if e.base == nil {
		return nil, ErrNoImage
	}
	f := Composite(e.base, e.stack, true)
	p := &Preview{
		Image:   e.view.Scale(f.Image),
		Zoom:    e.view.Zoom(),
		Damage:  e.damage.Take(),
		Skipped: f.Skipped,
	}
	sel := e.stack.Selected()
	for _, r := range f.Selected {
		p.Markers = append(p.Markers, newMarker(sel, e.view.CanvasRect(r)))
	}
	return p, nil
}

// Catalog returns the font catalog, or nil.
func (e *Editor) Catalog() *text.Catalog { return e.catalog }

// SetCatalog replaces the font catalog.
func (e *Editor) SetCatalog(c *text.Catalog) { e.catalog = c }

// FontChanged drops everything cached for the font at path and marks the
// layers using it for repaint. It has the signature of a catalog watcher
// callback.
func (e *Editor) FontChanged(cat *text.Catalog, path string) {
	if cat != nil {
		e.catalog = cat
	}
	for _, l := range e.stack.layers {
		if l.font == path {
			e.markLayer(l)
		}
	}
	e.raster.Invalidate(path)
	for _, l := range e.stack.layers {
		if l.font == path {
			e.markLayer(l)
		}
	}
}

// OnSelectionChange registers fn to be called whenever the selected layer
// changes, including to no selection.
func (e *Editor) OnSelectionChange(fn func(Selection)) {
	e.listeners = append(e.listeners, fn)
}

// Selection describes the current selection.
func (e *Editor) Selection() Selection {
	l := e.stack.Selected()
	if l == nil {
		return Selection{Index: -1}
	}
	return Selection{
		Layer:    l,
		Index:    e.stack.Index(l),
		Text:     l.text,
		FontName: e.fontName(l.font),
		Color:    l.color,
	}
}

// fontName returns the catalog name for path, for the font selector.
func (e *Editor) fontName(path string) string {
	if path == "" {
		return text.SystemDefault
	}
	if e.catalog != nil {
		if name, ok := e.catalog.NameFor(path); ok {
			return name
		}
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func (e *Editor) syncSelection() {
	key := selectionKey{index: -1}
	if l := e.stack.Selected(); l != nil {
		key = selectionKey{id: l.id, index: e.stack.Index(l)}
	}
	if key == e.notified {
		return
	}
	e.notified = key
	sel := e.Selection()
	for _, fn := range e.listeners {
		fn(sel)
	}
}

// touch marks the area of l before and after fn changes it.
func (e *Editor) touch(l *Layer, fn func()) {
	e.markLayer(l)
	fn()
	e.markLayer(l)
}

func (e *Editor) markLayer(l *Layer) {
	if l == nil {
		return
	}
	if r, ok := e.stack.Bounds(l); ok {
		// Include the marker outline.
		e.damage.MarkRect(r.Inset(-MarkerPadding - MarkerWidth))
	}
}
