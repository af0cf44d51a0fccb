package pixtext

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	imgio "github.com/gogpu/pixtext/internal/image"
	"github.com/gogpu/pixtext/text"
	"github.com/google/go-cmp/cmp"
)

var gray = color.RGBA{200, 200, 200, 255}

func newTestEditor(t *testing.T, opts ...EditorOption) *Editor {
	t.Helper()
	e := NewEditor(opts...)
	e.SetImage(solidImage(100, 50, gray))
	return e
}

func TestEditorExportRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	l, err := e.AddLayer("HI", "", Red, ImagePt(10, 10))
	if err != nil {
		t.Fatalf("AddLayer: %v", err)
	}
	box, ok := e.Stack().Bounds(l)
	if !ok {
		t.Fatal("layer has no bounds")
	}

	path, err := e.Export(filepath.Join(t.TempDir(), "out.png"))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, err := imgio.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ink := 0
	for y := range 50 {
		for x := range 100 {
			c := got.RGBAAt(x, y)
			inside := image.Pt(x, y).In(box)
			switch {
			case !inside && c != gray:
				t.Fatalf("pixel (%d,%d) outside the layer changed to %v", x, y, c)
			case c == red:
				ink++
			case c != gray:
				t.Fatalf("pixel (%d,%d) = %v, want background or layer color", x, y, c)
			}
		}
	}
	if ink == 0 {
		t.Error("no layer pixels in the export")
	}
	if got := e.Image().RGBAAt(15, 15); got != gray {
		t.Errorf("export modified the background image: %v", got)
	}
}

func TestEditorExportFormats(t *testing.T) {
	e := newTestEditor(t)
	dir := t.TempDir()

	path, err := e.Export(filepath.Join(dir, "noext"))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("Export without extension wrote %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}

	if _, err := e.Export(filepath.Join(dir, "out.jpg")); err != nil {
		t.Errorf("JPEG export: %v", err)
	}
	if _, err := e.Export(filepath.Join(dir, "out.webp")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("WebP export error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestEditorRequiresImage(t *testing.T) {
	e := NewEditor()
	if _, err := e.Export(filepath.Join(t.TempDir(), "out.png")); !errors.Is(err, ErrNoImage) {
		t.Errorf("Export without image = %v, want ErrNoImage", err)
	}
	if _, err := e.AddLayer("A", "", Black, ImagePoint{}); !errors.Is(err, ErrNoImage) {
		t.Errorf("AddLayer without image = %v, want ErrNoImage", err)
	}
	if _, err := e.Recomposite(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Recomposite without image = %v, want ErrNoImage", err)
	}
	if _, err := e.Flatten(); !errors.Is(err, ErrNoImage) {
		t.Errorf("Flatten without image = %v, want ErrNoImage", err)
	}
}

func TestEditorImportImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	if err := imgio.Save(path, solidImage(100, 50, gray), imgio.SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	e := NewEditor(WithViewSize(Size{800, 600}))
	if err := e.ImportImage(path); err != nil {
		t.Fatalf("ImportImage: %v", err)
	}
	if e.ImageSize() != (Size{100, 50}) {
		t.Errorf("ImageSize() = %v", e.ImageSize())
	}
	// min(800/100, 600/50) * 0.9 = 7.2
	if z := e.Viewport().Zoom(); z != 8 {
		t.Errorf("zoom after import = %v, want 8", z)
	}

	before := e.Image()
	if err := e.ImportImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("ImportImage of a missing file should fail")
	}
	if e.Image() != before {
		t.Error("failed import replaced the image")
	}
}

func TestEditorAddLayerText(t *testing.T) {
	e := newTestEditor(t)
	tests := []struct {
		in, want string
	}{
		{"Hello", "Hello"},
		{"Hello\n\n", "Hello"},
		{"", DefaultLayerText},
		{"  \n", DefaultLayerText},
		{"two\nlines", "two\nlines"},
	}
	for _, tt := range tests {
		l, err := e.AddLayer(tt.in, "", Black, ImagePoint{})
		if err != nil {
			t.Fatal(err)
		}
		if l.Text() != tt.want {
			t.Errorf("AddLayer(%q) text = %q, want %q", tt.in, l.Text(), tt.want)
		}
	}
}

func TestEditorAddLayerAtCenter(t *testing.T) {
	e := NewEditor(WithViewSize(Size{800, 600}), WithDefaultColor(Red))
	e.SetImage(solidImage(100, 50, gray))
	e.SetZoom(8)

	l, err := e.AddLayerAtCenter("A", "")
	if err != nil {
		t.Fatal(err)
	}
	if l.Position() != ImagePt(50, 37) {
		t.Errorf("Position() = %v, want (50,37)", l.Position())
	}
	if l.Color() != Red {
		t.Errorf("Color() = %v, want the default color", l.Color())
	}
}

func TestEditorUpdateLayer(t *testing.T) {
	e := newTestEditor(t)
	l, _ := e.AddLayer("A", "", Black, ImagePoint{})

	tests := []struct {
		name    string
		field   Field
		value   any
		wantErr bool
	}{
		{name: "text", field: FieldText, value: "B"},
		{name: "font", field: FieldFont, value: ""},
		{name: "color", field: FieldColor, value: Red},
		{name: "color hex", field: FieldColor, value: "#00ff00"},
		{name: "position", field: FieldPosition, value: ImagePt(-4, 7)},
		{name: "text wrong type", field: FieldText, value: 3, wantErr: true},
		{name: "color bad hex", field: FieldColor, value: "green", wantErr: true},
		{name: "position wrong type", field: FieldPosition, value: image.Pt(1, 1), wantErr: true},
		{name: "unknown field", field: Field(99), value: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.UpdateLayer(l, tt.field, tt.value)
			if tt.wantErr != (err != nil) {
				t.Fatalf("UpdateLayer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFieldValue) {
				t.Errorf("error %v is not ErrFieldValue", err)
			}
		})
	}

	if l.Text() != "B" || l.Color() != (RGB{G: 255}) || l.Position() != ImagePt(0, 7) {
		t.Errorf("layer = %q %v %v", l.Text(), l.Color(), l.Position())
	}

	var nf *LayerNotFoundError
	if err := e.UpdateLayer(NewLayer("x", "", Black, ImagePoint{}), FieldText, "y"); !errors.As(err, &nf) {
		t.Errorf("UpdateLayer of a foreign layer = %v, want LayerNotFoundError", err)
	}
}

func TestEditorFonts(t *testing.T) {
	cat := text.NewCatalog("fonts", []text.FontEntry{
		{Name: "Pixel", Path: "fonts/pixel.ttf", Valid: true},
	})
	e := newTestEditor(t, WithCatalog(cat))
	l, _ := e.AddLayer("A", "", Black, ImagePoint{})

	if err := e.SetLayerFont(l, "Pixel"); err != nil {
		t.Fatalf("SetLayerFont: %v", err)
	}
	if l.Font() != "fonts/pixel.ttf" {
		t.Errorf("Font() = %q", l.Font())
	}
	if got := e.Selection().FontName; got != "Pixel" {
		t.Errorf("Selection().FontName = %q, want Pixel", got)
	}

	if err := e.SetLayerFont(l, "Nope"); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("SetLayerFont(unknown) = %v, want ErrUnknownFont", err)
	}
	if err := e.SetLayerFont(l, text.SystemDefault); err != nil || l.Font() != "" {
		t.Errorf("SetLayerFont(SystemDefault) = %v, font %q", err, l.Font())
	}
	if got := e.Selection().FontName; got != text.SystemDefault {
		t.Errorf("FontName for fallback = %q", got)
	}

	_ = e.UpdateLayer(l, FieldFont, "/elsewhere/Other.ttf")
	if got := e.Selection().FontName; got != "Other" {
		t.Errorf("FontName outside the catalog = %q, want Other", got)
	}

	if p, err := e.FontPath("Pixel"); err != nil || p != "fonts/pixel.ttf" {
		t.Errorf("FontPath(Pixel) = %q, %v", p, err)
	}
}

func TestEditorSelectionListener(t *testing.T) {
	e := newTestEditor(t)
	var got []Selection
	e.OnSelectionChange(func(s Selection) { got = append(got, s) })

	a, _ := e.AddLayer("first", "", Red, ImagePoint{})
	b, _ := e.AddLayer("second", "", Black, ImagePt(0, 30))
	if err := e.SelectIndex(0); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectIndex(0); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectIndex(-1); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectIndex(5); !errors.Is(err, ErrLayerIndex) {
		t.Errorf("SelectIndex(5) = %v, want ErrLayerIndex", err)
	}

	want := []Selection{
		{Layer: a, Index: 0, Text: "first", FontName: text.SystemDefault, Color: Red},
		{Layer: b, Index: 1, Text: "second", FontName: text.SystemDefault, Color: Black},
		{Layer: a, Index: 0, Text: "first", FontName: text.SystemDefault, Color: Red},
		{Index: -1},
	}
	opt := cmp.Comparer(func(x, y *Layer) bool { return x == y })
	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Errorf("selection events mismatch (-want +got):\n%s", diff)
	}
}

func TestEditorDeleteAndDuplicate(t *testing.T) {
	e := newTestEditor(t)
	var events int
	e.OnSelectionChange(func(Selection) { events++ })

	l, _ := e.AddLayer("A", "", Black, ImagePt(20, 20))
	d, err := e.DuplicateLayer(l)
	if err != nil {
		t.Fatal(err)
	}
	if d.Position() != ImagePt(25, 25) {
		t.Errorf("duplicate at %v, want (25,25)", d.Position())
	}
	if e.Selected() != l {
		t.Errorf("selected %v after duplicate, want the source layer", e.Selected())
	}
	d2, err := e.DuplicateLayer(e.Selected())
	if err != nil {
		t.Fatal(err)
	}
	if d2.Position() != ImagePt(25, 25) {
		t.Errorf("repeated duplicate at %v, want (25,25)", d2.Position())
	}

	if err := e.DeleteLayer(l); err != nil {
		t.Fatal(err)
	}
	if e.Selected() != nil {
		t.Error("deleting the selected layer should clear the selection")
	}
	if diff := cmp.Diff([]string{"Layer 1: A", "Layer 2: A"}, e.LayerLabels()); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if events != 2 {
		t.Errorf("selection events = %d, want 2", events)
	}
	if err := e.DeleteLayer(l); err == nil {
		t.Error("deleting twice should fail")
	}
}

func TestEditorSelectionFollowsIndex(t *testing.T) {
	e := newTestEditor(t)
	var last Selection
	calls := 0
	e.OnSelectionChange(func(s Selection) {
		last = s
		calls++
	})

	a, _ := e.AddLayer("A", "", Black, ImagePt(0, 0))
	_, _ = e.AddLayer("B", "", Black, ImagePt(0, 15))
	c, _ := e.AddLayer("C", "", Black, ImagePt(0, 30))
	if last.Layer != c || last.Index != 2 {
		t.Fatalf("after adds: layer %v index %d", last.Layer, last.Index)
	}
	calls = 0

	if err := e.DeleteLayer(a); err != nil {
		t.Fatal(err)
	}
	if got := e.Selection().Index; got != 1 {
		t.Errorf("Selection().Index = %d, want 1", got)
	}
	if calls != 1 || last.Layer != c || last.Index != 1 {
		t.Errorf("listener calls = %d, last = %v at %d, want one call for C at 1", calls, last.Layer, last.Index)
	}
}

func TestEditorPointerDrag(t *testing.T) {
	e := newTestEditor(t)
	e.SetZoom(2)
	l, _ := e.AddLayer("A", "", Black, ImagePt(10, 10))
	_ = e.SelectLayer(nil)

	press := e.Viewport().ImageToScreen(ImagePt(12, 12))
	if got := e.SelectAt(press); got != l {
		t.Fatalf("SelectAt(%v) = %v, want the layer", press, got)
	}
	if e.Selected() != l {
		t.Error("press should select the layer")
	}

	if !e.DragTo(press.Add(ScreenPt(8, 6))) {
		t.Fatal("DragTo reported no drag")
	}
	if l.Position() != ImagePt(14, 13) {
		t.Errorf("Position() = %v, want (14,13)", l.Position())
	}

	e.DragTo(ScreenPt(-100, -100))
	if l.Position() != ImagePt(0, 0) {
		t.Errorf("Position() = %v, want clamped (0,0)", l.Position())
	}

	e.EndDrag()
	if e.DragTo(ScreenPt(50, 50)) {
		t.Error("DragTo after EndDrag should do nothing")
	}

	if got := e.SelectAt(e.Viewport().ImageToScreen(ImagePt(90, 45))); got != nil {
		t.Errorf("press on empty space = %v, want nil", got)
	}
	if e.Selected() != nil {
		t.Error("press on empty space should clear the selection")
	}
}

func TestEditorRecomposite(t *testing.T) {
	e := newTestEditor(t)
	e.SetZoom(2)
	l, _ := e.AddLayer("HI", "", Red, ImagePt(10, 10))
	box, _ := e.Stack().Bounds(l)

	p, err := e.Recomposite()
	if err != nil {
		t.Fatal(err)
	}
	if p.Zoom != 2 || p.Image.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Errorf("preview zoom %v bounds %v", p.Zoom, p.Image.Bounds())
	}
	if len(p.Markers) != 1 {
		t.Fatalf("Markers = %v, want one", p.Markers)
	}
	wantRect := image.Rect(box.Min.X*2, box.Min.Y*2, box.Max.X*2, box.Max.Y*2).Inset(-MarkerPadding)
	if p.Markers[0].Rect != wantRect || p.Markers[0].Layer != l {
		t.Errorf("marker rect %v, want %v", p.Markers[0].Rect, wantRect)
	}
	if len(p.Damage) == 0 {
		t.Error("first preview should report damage")
	}

	// The marker is not part of the preview raster, only of the annotated copy.
	corner := p.Markers[0].Rect.Min
	if got := p.Image.RGBAAt(corner.X, corner.Y); got != gray {
		t.Errorf("preview raster has marker pixel %v", got)
	}
	if got := p.Annotated().RGBAAt(corner.X, corner.Y); got != red {
		t.Errorf("annotated corner = %v, want red", got)
	}

	p, _ = e.Recomposite()
	if len(p.Damage) != 0 {
		t.Errorf("unchanged preview damage = %v", p.Damage)
	}

	_ = e.UpdateLayer(l, FieldPosition, ImagePt(60, 30))
	p, _ = e.Recomposite()
	covered := func(pt image.Point) bool {
		for _, r := range p.Damage {
			if pt.In(r) {
				return true
			}
		}
		return false
	}
	if !covered(box.Min) || !covered(image.Pt(61, 31)) {
		t.Errorf("damage %v misses the old or new layer area", p.Damage)
	}
}

func TestEditorFontChanged(t *testing.T) {
	r := text.NewRasterizer()
	e := newTestEditor(t, WithRasterizer(r))
	if e.Rasterizer() != r {
		t.Fatal("WithRasterizer ignored")
	}
	_, _ = e.AddLayer("A", "fonts/missing.ttf", Black, ImagePoint{})
	_, _ = e.Recomposite()

	before := r.CacheStats().Len
	cat := text.NewCatalog("fonts", nil)
	e.FontChanged(cat, "fonts/missing.ttf")
	if e.Catalog() != cat {
		t.Error("FontChanged did not replace the catalog")
	}
	p, _ := e.Recomposite()
	if len(p.Damage) == 0 {
		t.Error("font change should mark the layer for repaint")
	}
	if before == 0 {
		t.Error("expected the layer bitmap to be cached")
	}
}

func TestEditorZoom(t *testing.T) {
	e := newTestEditor(t, WithViewSize(Size{400, 200}))
	if z := e.ZoomFit(); z != 4 {
		t.Errorf("ZoomFit() = %v, want 4", z)
	}
	if z := e.ZoomIn(); z != 8 {
		t.Errorf("ZoomIn() = %v, want 8", z)
	}
	if z := e.ZoomOut(); z != 4 {
		t.Errorf("ZoomOut() = %v, want 4", z)
	}
	if z := e.SetZoom(3); z != 2 {
		t.Errorf("SetZoom(3) = %v, want 2", z)
	}
	e.SetViewSize(Size{50, 25})
	if z := e.ZoomFit(); z != 0.5 {
		t.Errorf("ZoomFit() in a small view = %v, want 0.5", z)
	}
	if e.ViewSize() != (Size{50, 25}) {
		t.Errorf("ViewSize() = %v", e.ViewSize())
	}
}
