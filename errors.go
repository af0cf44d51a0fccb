package pixtext

import (
	"errors"
	"fmt"

	imgio "github.com/gogpu/pixtext/internal/image"
)

// Sentinel errors.
var (
	// ErrNoImage is returned by operations that need an imported image.
	ErrNoImage = errors.New("pixtext: no image loaded")

	// ErrFieldValue is returned when a layer update carries a value of the
	// wrong type for its field.
	ErrFieldValue = errors.New("pixtext: invalid value for layer field")

	// ErrUnknownFont is returned when a font name is not in the catalog.
	ErrUnknownFont = errors.New("pixtext: unknown font")

	// ErrLayerIndex is returned when a layer index is out of range.
	ErrLayerIndex = errors.New("pixtext: layer index out of range")

	// ErrUnsupportedFormat is returned for image files whose extension has
	// no codec.
	ErrUnsupportedFormat = imgio.ErrUnsupportedFormat
)

// LayerNotFoundError is returned when a layer is not part of the stack.
type LayerNotFoundError struct {
	ID LayerID
}

func (e *LayerNotFoundError) Error() string {
	return fmt.Sprintf("pixtext: layer %d not found", e.ID)
}
