package pixtext

// Dash defines a dash pattern in whole pixels.
// A dash pattern consists of alternating dash and gap lengths.
// For example, [5, 3] creates a pattern of 5 pixels dash, 3 pixels gap.
type Dash struct {
	// Array contains alternating dash/gap lengths.
	// If the array has an odd number of elements, it is logically duplicated
	// to create an even-length pattern (e.g., [5] becomes [5, 5]).
	Array []int

	// Offset is the starting offset into the pattern.
	Offset int
}

// NewDash creates a dash pattern from alternating dash/gap lengths.
// Negative lengths are taken as their absolute value.
//
// Examples:
//
//	NewDash(5, 5)       // the selection marker pattern
//	NewDash(4, 2, 1, 2) // dash-dot
//	NewDash(3)          // equivalent to [3, 3]
//
// Returns nil if no lengths are provided or all lengths are zero.
func NewDash(lengths ...int) *Dash {
	normalized := make([]int, len(lengths))
	positive := false
	for i, l := range lengths {
		if l < 0 {
			l = -l
		}
		normalized[i] = l
		positive = positive || l > 0
	}
	if !positive {
		return nil
	}
	return &Dash{Array: normalized}
}

// PatternLength returns the total length of one complete pattern cycle.
// For odd-length arrays, this includes the duplicated pattern.
func (d *Dash) PatternLength() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, l := range d.Array {
		total += l
	}
	if len(d.Array)%2 != 0 {
		total *= 2
	}
	return total
}

// On reports whether the pixel at distance pos along a stroke falls in a
// dash. A nil Dash is solid.
func (d *Dash) On(pos int) bool {
	n := d.PatternLength()
	if n == 0 {
		return true
	}
	pos = ((pos+d.Offset)%n + n) % n
	for i := 0; ; i++ {
		l := d.Array[i%len(d.Array)]
		if pos < l {
			return i%2 == 0
		}
		pos -= l
	}
}
