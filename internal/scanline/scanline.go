// scanline package implements the five reversible per-byte prediction filters applied to image rows
package scanline

import (
	"errors"
	"fmt"
)

// The filter type tag that leads every encoded scanline
type FilterType byte

const (
	None FilterType = iota
	Sub
	Up
	Average
	Paeth
)

var ErrUnknownFilterType = errors.New("unknown filter type")

var filterNames = [...]string{"None", "Sub", "Up", "Average", "Paeth"}

func (f FilterType) String() string {
	if f.Valid() {
		return filterNames[f]
	}
	return fmt.Sprintf("FilterType(%d)", byte(f))
}

func (f FilterType) Valid() bool {
	return f <= Paeth
}

// Reconstructs a filtered row in place.
// prev is the reconstructed row above (all zeros for the first row) and must be as long as cur.
// bpp is the number of bytes per complete pixel and is the stride to the left neighbour.
func Defilter(f FilterType, cur, prev []byte, bpp int) error {
	n := len(cur)
	head := min(bpp, n) // Bytes without a left neighbour

	switch f {
	case None:
	case Sub:
		for i := bpp; i < n; i++ {
			cur[i] += cur[i-bpp]
		}
	case Up:
		for i := range n {
			cur[i] += prev[i]
		}
	case Average:
		for i := range head {
			cur[i] += prev[i] / 2
		}
		for i := bpp; i < n; i++ {
			cur[i] += byte((int(cur[i-bpp]) + int(prev[i])) / 2)
		}
	case Paeth:
		for i := range head {
			cur[i] += paeth(0, prev[i], 0)
		}
		for i := bpp; i < n; i++ {
			cur[i] += paeth(cur[i-bpp], prev[i], prev[i-bpp])
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFilterType, byte(f))
	}
	return nil
}

// Writes the filtered form of raw into dst, which must be as long as raw.
// prev is the raw row above (all zeros for the first row).
func Filter(f FilterType, dst, raw, prev []byte, bpp int) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownFilterType, byte(f))
	}
	filter(f, dst, raw, prev, bpp)
	return nil
}

// Filter for a type already known to be valid
func filter(f FilterType, dst, raw, prev []byte, bpp int) {
	n := len(raw)
	head := min(bpp, n)

	switch f {
	case None:
		copy(dst, raw)
	case Sub:
		copy(dst[:head], raw[:head])
		for i := bpp; i < n; i++ {
			dst[i] = raw[i] - raw[i-bpp]
		}
	case Up:
		for i := range n {
			dst[i] = raw[i] - prev[i]
		}
	case Average:
		for i := range head {
			dst[i] = raw[i] - prev[i]/2
		}
		for i := bpp; i < n; i++ {
			dst[i] = raw[i] - byte((int(raw[i-bpp])+int(prev[i]))/2)
		}
	case Paeth:
		for i := range head {
			dst[i] = raw[i] - paeth(0, prev[i], 0)
		}
		for i := bpp; i < n; i++ {
			dst[i] = raw[i] - paeth(raw[i-bpp], prev[i], prev[i-bpp])
		}
	}
}

// Picks whichever of left (a), above (b) or upper-left (c) is closest to a + b - c.
// Ties prefer a, then b.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
