// Command pixtext places pixel-perfect text layers on an image.
//
// Usage:
//
//	pixtext -in bg.png -out out.png -layer '10,10,#ff0000,,HELLO\nWORLD'
//	pixtext -in bg.png -preview view.png -zoom 4 -viewport 800x600 -layer ...
//	pixtext -list-fonts -fonts ./fonts
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/pixtext"
	"github.com/gogpu/pixtext/internal/config"
	imgio "github.com/gogpu/pixtext/internal/image"
	"github.com/gogpu/pixtext/internal/logging"
	"github.com/gogpu/pixtext/text"
)

type options struct {
	in, out     string
	configPath  string
	fontsDir    string
	layers      layerFlags
	selectIndex int
	preview     string
	zoom        string
	viewport    string
	listFonts   bool
	watch       bool
	printConfig bool
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "background image")
	flag.StringVar(&opts.out, "out", "", "output image; the extension picks the format (default .png)")
	flag.StringVar(&opts.configPath, "config", "pixtext.toml", "config file")
	flag.StringVar(&opts.fontsDir, "fonts", "", "font directory (overrides the config)")
	flag.Var(&opts.layers, "layer", `text layer "x,y,#rrggbb,font,text"; repeatable, \n for newline`)
	flag.IntVar(&opts.selectIndex, "select", -2, "layer index to outline in the preview; -1 for none (default: last added)")
	flag.StringVar(&opts.preview, "preview", "", "write the zoomed display frame with selection markers")
	flag.StringVar(&opts.zoom, "zoom", "fit", "preview zoom: fit or a factor (0.125-32)")
	flag.StringVar(&opts.viewport, "viewport", "800x600", "display area WxH for fit and centering")
	flag.BoolVar(&opts.listFonts, "list-fonts", false, "list the font catalog and exit")
	flag.BoolVar(&opts.watch, "watch", false, "re-render whenever a font file changes")
	flag.BoolVar(&opts.printConfig, "print-config", false, "print the effective config as TOML and exit")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatalf("pixtext: %v", err)
	}
}

func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.fontsDir != "" {
		cfg.Fonts.Dir = opts.fontsDir
	}
	cfg.Fonts.Watch = cfg.Fonts.Watch || opts.watch

	if opts.printConfig {
		data, err := cfg.Encode()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	logger, closer := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	defer func() { _ = closer.Close() }()
	pixtext.SetLogger(logger)

	changes := make(chan fontChange, 8)
	cat, stop, err := openCatalog(cfg, changes)
	if err != nil {
		return err
	}
	defer stop()

	if opts.listFonts {
		printCatalog(cat)
		return nil
	}
	if opts.in == "" {
		return fmt.Errorf("-in is required")
	}

	view, err := parseSize(opts.viewport)
	if err != nil {
		return err
	}
	color, err := pixtext.ParseRGB(cfg.Render.DefaultColor)
	if err != nil {
		return err
	}

	raster := text.NewRasterizer(
		text.WithAlphaThreshold(cfg.Threshold()),
		text.WithCacheLimit(cfg.Render.CacheLimit),
	)
	ed := pixtext.NewEditor(
		pixtext.WithRasterizer(raster),
		pixtext.WithCatalog(cat),
		pixtext.WithViewSize(view),
		pixtext.WithJPEGQuality(cfg.Export.JPEGQuality),
		pixtext.WithDefaultColor(color),
	)
	ed.OnSelectionChange(func(s pixtext.Selection) {
		logger.Debug("selection changed", "index", s.Index, "font", s.FontName, "color", s.Color)
	})

	if err := ed.ImportImage(opts.in); err != nil {
		return err
	}
	if err := addLayers(ed, opts.layers); err != nil {
		return err
	}
	if opts.selectIndex != -2 {
		if err := ed.SelectIndex(opts.selectIndex); err != nil {
			return err
		}
	}
	for _, label := range ed.LayerLabels() {
		logger.Info(label)
	}

	if err := render(ed, opts, logger); err != nil {
		return err
	}
	if !cfg.Fonts.Watch {
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	logger.Info("watching fonts", "dir", cfg.Fonts.Dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-changes:
			ed.FontChanged(c.catalog, c.path)
			if err := render(ed, opts, logger); err != nil {
				logger.Error("render failed", "err", err)
			}
		}
	}
}

// fontChange carries a watcher callback to the goroutine that owns the
// editor.
type fontChange struct {
	catalog *text.Catalog
	path    string
}

func openCatalog(cfg *config.Config, changes chan<- fontChange) (*text.Catalog, func(), error) {
	opts := []text.CatalogOption{text.WithPatterns(cfg.Fonts.Patterns...)}
	if !cfg.Fonts.Watch {
		cat, err := text.ScanCatalog(cfg.Fonts.Dir, opts...)
		return cat, func() {}, err
	}

	done := make(chan struct{})
	w, err := text.WatchCatalog(cfg.Fonts.Dir, forward(changes, done), opts...)
	if err != nil {
		return nil, nil, err
	}
	stop := func() {
		close(done)
		_ = w.Close()
	}
	return w.Catalog(), stop, nil
}

// forward hands watcher callbacks to changes. Once done is closed nobody
// reads changes any more, and pending sends give up so the watcher can stop.
func forward(changes chan<- fontChange, done <-chan struct{}) text.CatalogChangeFunc {
	return func(cat *text.Catalog, changed string) {
		select {
		case changes <- fontChange{catalog: cat, path: changed}:
		case <-done:
		}
	}
}

func printCatalog(cat *text.Catalog) {
	for _, e := range cat.Entries() {
		status := "ok"
		switch {
		case e.Path == "":
			status = "built-in"
		case !e.Valid:
			status = "invalid, fallback glyphs"
		case !e.HasProbeGlyph:
			status = "no 'A' glyph"
		}
		fmt.Printf("%-24s %-16s %s (%s)\n", e.Name, e.Family, e.Path, status)
	}
}

func addLayers(ed *pixtext.Editor, specs []layerSpec) error {
	for _, s := range specs {
		font, err := resolveFont(ed, s.Font)
		if err != nil {
			return err
		}
		c := ed.DefaultColor()
		if s.Color != nil {
			c = *s.Color
		}
		if _, err := ed.AddLayer(s.Text, font, c, s.Pos); err != nil {
			return err
		}
	}
	return nil
}

func render(ed *pixtext.Editor, opts options, logger *slog.Logger) error {
	if opts.out != "" {
		path, err := ed.Export(opts.out)
		if err != nil {
			return err
		}
		logger.Info("exported", "path", path)
	}
	if opts.preview == "" {
		return nil
	}

	zoom, err := applyZoom(ed, opts.zoom)
	if err != nil {
		return err
	}
	p, err := ed.Recomposite()
	if err != nil {
		return err
	}
	if err := imgio.Save(opts.preview, p.Annotated(), imgio.SaveOptions{}); err != nil {
		return err
	}
	logger.Info("preview written",
		"path", opts.preview,
		"zoom", fmt.Sprintf("%d%%", ed.Viewport().Percent()),
		"factor", zoom,
		"markers", len(p.Markers),
		"damaged", len(p.Damage),
		"skipped", p.Skipped)
	return nil
}
