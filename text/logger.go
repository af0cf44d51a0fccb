package text

import (
	"log/slog"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() { SetLogger(nil) }

func slogger() *slog.Logger { return logger.Load() }

// SetLogger sets the logger for font loading, probing and rasterization.
// The package is silent by default; nil restores that. pixtext.SetLogger
// forwards here.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger.Store(l)
}
