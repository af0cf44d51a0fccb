// Package pixtext places pixel-perfect text on raster images.
//
// # Overview
//
// pixtext is the engine of a text-over-image editor for pixel art. Text
// layers are rasterized with hard alpha (every pixel fully opaque or fully
// transparent, never blended with the background), stacked in paint order
// over a background image, and flattened for export. A display preview is
// produced at discrete zoom factors with nearest-neighbor scaling so source
// pixels stay square.
//
// # Quick Start
//
//	import "github.com/gogpu/pixtext"
//
//	ed := pixtext.NewEditor()
//	if err := ed.ImportImage("background.png"); err != nil {
//	    log.Fatal(err)
//	}
//	ed.AddLayer("HELLO", "fonts/pixel.ttf", pixtext.Red, pixtext.ImagePt(10, 10))
//	if _, err := ed.Export("out.png"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Architecture
//
// The package is organized into:
//   - Layer and Stack: text layers, paint order, selection and drag state
//   - Composite and Flatten: alpha-mask paste of every layer onto a copy of
//     the background
//   - Viewport: zoom factor, scroll offset, screen/image transforms
//   - Editor: one method per UI action, selection callbacks, damage tracking
//   - text: font loading, size probing, binarized glyph rasterization
//
// # Coordinate System
//
// Two spaces are used:
//   - Image space (ImagePoint): one unit per source pixel, origin top-left
//   - Screen space (ScreenPoint): display pixels, after zoom and scroll
//
// Layer positions are always in image space and never negative.
package pixtext
