package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/pixtext"
	"github.com/gogpu/pixtext/text"
)

// layerSpec is one -layer flag: "x,y,#rrggbb,font,text". Color and font
// may be empty to use the defaults; the text may contain commas.
type layerSpec struct {
	Pos   pixtext.ImagePoint
	Color *pixtext.RGB
	Font  string
	Text  string
}

// layerFlags collects repeated -layer flags.
type layerFlags []layerSpec

func (f *layerFlags) String() string {
	parts := make([]string, len(*f))
	for i, l := range *f {
		parts[i] = fmt.Sprintf("%d,%d,%s", l.Pos.X, l.Pos.Y, l.Text)
	}
	return strings.Join(parts, " ")
}

func (f *layerFlags) Set(s string) error {
	l, err := parseLayer(s)
	if err != nil {
		return err
	}
	*f = append(*f, l)
	return nil
}

var errLayerSyntax = errors.New(`layer must be "x,y,#rrggbb,font,text"`)

func parseLayer(s string) (layerSpec, error) {
	fields := strings.SplitN(s, ",", 5)
	if len(fields) != 5 {
		return layerSpec{}, errLayerSyntax
	}

	x, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return layerSpec{}, fmt.Errorf("%w: x: %w", errLayerSyntax, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return layerSpec{}, fmt.Errorf("%w: y: %w", errLayerSyntax, err)
	}

	l := layerSpec{
		Pos:  pixtext.ImagePt(x, y),
		Font: strings.TrimSpace(fields[3]),
		Text: strings.ReplaceAll(fields[4], `\n`, "\n"),
	}
	if c := strings.TrimSpace(fields[2]); c != "" {
		rgb, err := pixtext.ParseRGB(c)
		if err != nil {
			return layerSpec{}, err
		}
		l.Color = &rgb
	}
	return l, nil
}

// resolveFont maps a -layer font field to a font path: a catalog name, an
// existing font file, or empty for the fallback glyph set.
func resolveFont(ed *pixtext.Editor, font string) (string, error) {
	if font == "" || font == text.SystemDefault {
		return "", nil
	}
	if path, err := ed.FontPath(font); err == nil {
		return path, nil
	}
	if _, err := os.Stat(font); err == nil {
		return filepath.Clean(font), nil
	}
	return "", fmt.Errorf("%w: %q", pixtext.ErrUnknownFont, font)
}

// parseSize parses "WxH".
func parseSize(s string) (pixtext.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return pixtext.Size{}, fmt.Errorf("size %q: want WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return pixtext.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return pixtext.Size{}, fmt.Errorf("size %q: %w", s, err)
	}
	size := pixtext.Size{W: width, H: height}
	if size.Empty() {
		return pixtext.Size{}, fmt.Errorf("size %q: must be positive", s)
	}
	return size, nil
}

// applyZoom sets the editor zoom from "fit" or a factor such as "4" or "0.5".
func applyZoom(ed *pixtext.Editor, zoom string) (float64, error) {
	if zoom == "" || zoom == "fit" {
		return ed.ZoomFit(), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(zoom, "x"), 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("zoom %q: want fit or a positive factor", zoom)
	}
	return ed.SetZoom(f), nil
}
