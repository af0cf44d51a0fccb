package pixtext

import "github.com/gogpu/pixtext/text"

// RGB is an opaque layer color.
type RGB = text.RGB

// Common colors.
var (
	Black = RGB{}
	White = RGB{R: 255, G: 255, B: 255}
	Red   = RGB{R: 255}
)

// ParseRGB parses a "#rrggbb" hex color.
func ParseRGB(s string) (RGB, error) {
	return text.ParseRGB(s)
}
