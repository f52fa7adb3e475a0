package scanline

import (
	"math"

	"github.com/anas-shakeel/go-png/internal/deflate"
)

// Filters tried by Selector, in evaluation order. None is never picked automatically.
var Candidates = [...]FilterType{Sub, Up, Average, Paeth}

// Scorer rates a filtered row; lower means more compressible
type Scorer func(filtered []byte) int

// Sum of absolute differences between adjacent bytes
func TotalVariation(b []byte) int {
	sum := 0
	for i := 1; i < len(b); i++ {
		sum += abs(int(b[i]) - int(b[i-1]))
	}
	return sum
}

// TrialCompression scores a row by its actual compressed size
func TrialCompression(c deflate.Compressor) Scorer {
	return func(filtered []byte) int {
		out, err := c.Compress(filtered)
		if err != nil {
			return math.MaxInt
		}
		return len(out)
	}
}

// Selector chooses the best filter per row and owns the working buffers for it.
// A Selector is not safe for concurrent use.
type Selector struct {
	bpp     int
	score   Scorer
	scratch [len(Candidates)][]byte
}

// Creates a selector for rows of rowBytes bytes; a nil score means TotalVariation
func NewSelector(rowBytes, bpp int, score Scorer) *Selector {
	if score == nil {
		score = TotalVariation
	}
	s := &Selector{bpp: bpp, score: score}
	for i := range s.scratch {
		s.scratch[i] = make([]byte, rowBytes)
	}
	return s
}

// Filters raw with every candidate and writes the lowest scoring one to dst,
// prefixed by its tag byte. dst must hold 1 + len(raw) bytes.
// The first candidate with the minimum score wins.
func (s *Selector) Select(dst, raw, prev []byte) FilterType {
	best := 0
	bestScore := math.MaxInt
	for i, f := range Candidates {
		out := s.scratch[i][:len(raw)]
		filter(f, out, raw, prev, s.bpp)
		if score := s.score(out); score < bestScore {
			best, bestScore = i, score
		}
	}

	dst[0] = byte(Candidates[best])
	copy(dst[1:], s.scratch[best][:len(raw)])
	return Candidates[best]
}
