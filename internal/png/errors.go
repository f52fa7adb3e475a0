package png

import (
	"errors"
	"fmt"

	"github.com/anas-shakeel/go-png/internal/scanline"
)

// Error kinds. Every error returned by this package matches one of these with errors.Is.
var (
	ErrFormatMismatch        = errors.New("not a PNG file")
	ErrCRCMismatch           = errors.New("chunk CRC mismatch")
	ErrUnsupportedBitDepth   = errors.New("unsupported bit depth")
	ErrUnsupportedColorModel = errors.New("unsupported color model")
	ErrUnsupportedFeature    = errors.New("unsupported feature")
	ErrMalformedHeader       = errors.New("malformed header")
	ErrMalformedPalette      = errors.New("malformed palette")
	ErrMalformedPixelData    = errors.New("malformed pixel data")
	ErrMalformedChunk        = errors.New("malformed chunk")
	ErrUnknownFilterType     = scanline.ErrUnknownFilterType
	ErrPaletteIndex          = errors.New("palette index out of range")
	ErrChunkOrder            = errors.New("chunk out of order")
	ErrTruncated             = errors.New("unexpected end of stream")
	ErrInvalidImage          = errors.New("invalid pixel buffer")
	ErrCompression           = errors.New("compression failure")
	ErrDecompression         = errors.New("decompression failure")
)

// Error carries the kind of failure, some detail, and optionally the collaborator error behind it
type Error struct {
	Kind   error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := "png: " + e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
