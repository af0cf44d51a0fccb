package pixtext

import (
	"image"
	"math/bits"
	"sync/atomic"
)

// DamageTile is the edge length in image pixels of one damage tile.
const DamageTile = 16

// Damage tracks which parts of the image changed since the last composite,
// as a bitmap of DamageTile-sized tiles. A display can use it to repaint
// only what moved.
//
// The bitmap uses one bit per tile, packed into uint64 words (64 tiles per word).
// All methods are safe for concurrent use without external synchronization.
type Damage struct {
	// words is the atomic bitmap where each bit represents a tile's dirty state.
	// Bit index = ty * tilesX + tx
	words []atomic.Uint64

	tilesX, tilesY int
	size           Size
}

// NewDamage creates a tracker for an image of the given size. All tiles
// start clean. Returns nil for an empty size.
func NewDamage(size Size) *Damage {
	if size.Empty() {
		return nil
	}
	tilesX := (size.W + DamageTile - 1) / DamageTile
	tilesY := (size.H + DamageTile - 1) / DamageTile
	return &Damage{
		words:  make([]atomic.Uint64, (tilesX*tilesY+63)/64),
		tilesX: tilesX,
		tilesY: tilesY,
		size:   size,
	}
}

func (d *Damage) mark(tx, ty int) {
	idx := ty*d.tilesX + tx
	d.words[idx/64].Or(1 << (idx & 63))
}

// MarkRect marks every tile that intersects r (image space) as dirty.
// Parts of r outside the image are ignored.
func (d *Damage) MarkRect(r image.Rectangle) {
	if d == nil {
		return
	}
	r = r.Intersect(image.Rect(0, 0, d.size.W, d.size.H))
	if r.Empty() {
		return
	}
	for ty := r.Min.Y / DamageTile; ty <= (r.Max.Y-1)/DamageTile; ty++ {
		for tx := r.Min.X / DamageTile; tx <= (r.Max.X-1)/DamageTile; tx++ {
			d.mark(tx, ty)
		}
	}
}

// MarkAll marks all tiles as dirty.
func (d *Damage) MarkAll() {
	if d == nil {
		return
	}
	total := d.tilesX * d.tilesY
	full := total / 64
	for i := range full {
		d.words[i].Store(^uint64(0))
	}
	if rem := total % 64; rem > 0 {
		d.words[full].Store((uint64(1) << rem) - 1)
	}
}

// IsEmpty returns true if no tiles are marked as dirty.
func (d *Damage) IsEmpty() bool {
	if d == nil {
		return true
	}
	for i := range d.words {
		if d.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of dirty tiles.
func (d *Damage) Count() int {
	if d == nil {
		return 0
	}
	n := 0
	for i := range d.words {
		n += bits.OnesCount64(d.words[i].Load())
	}
	return n
}

// Take returns the dirty tiles as image-space rectangles, clipped to the
// image, and marks everything clean.
func (d *Damage) Take() []image.Rectangle {
	if d == nil {
		return nil
	}
	bounds := image.Rect(0, 0, d.size.W, d.size.H)
	var rects []image.Rectangle
	for wi := range d.words {
		word := d.words[wi].Swap(0)
		for word != 0 {
			b := bits.TrailingZeros64(word)
			word &^= 1 << b

			idx := wi*64 + b
			tx, ty := idx%d.tilesX, idx/d.tilesX
			r := image.Rect(tx*DamageTile, ty*DamageTile, (tx+1)*DamageTile, (ty+1)*DamageTile)
			rects = append(rects, r.Intersect(bounds))
		}
	}
	return rects
}
