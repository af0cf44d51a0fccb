package pixtext

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/pixtext/text"
)

var logger atomic.Pointer[slog.Logger]

func init() { SetLogger(nil) }

// SetLogger sets the logger for pixtext and its text package. The library
// is silent until SetLogger is called; nil makes it silent again.
//
// Levels:
//   - [slog.LevelDebug]: size probe results, cache invalidation
//   - [slog.LevelInfo]: image import and export, font catalog scans
//   - [slog.LevelWarn]: skipped layers, fallback fonts
//
// For example:
//
//	pixtext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
	text.SetLogger(l)
}

// Logger returns the logger set by SetLogger. It is never nil.
func Logger() *slog.Logger { return logger.Load() }
