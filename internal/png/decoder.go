// png package decodes and encodes PNG images to and from RGBA pixel buffers
package png

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/anas-shakeel/go-png/internal/deflate"
	"github.com/anas-shakeel/go-png/internal/logging"
	"github.com/anas-shakeel/go-png/internal/oops"
	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/anas-shakeel/go-png/internal/scanline"
	"github.com/rs/zerolog"
)

// Decoding stages, in the order a well formed stream moves through them
const (
	dsStart = iota
	dsSeenIHDR
	dsSeenPLTE
	dsSeenIDAT
	dsDoneIDAT // A non-IDAT chunk followed the IDAT run
	dsSeenIEND
)

type Decoder struct {
	Decompressor deflate.Decompressor
	Logger       *zerolog.Logger // nil logs to the global logger
}

func NewDecoder() *Decoder {
	return &Decoder{Decompressor: deflate.Default()}
}

// Decodes a PNG stream with the default decoder
func Decode(r io.Reader) (*pixel.Buffer, error) {
	return NewDecoder().Decode(r)
}

// Reads the signature and the header only
func DecodeConfig(r io.Reader) (Header, error) {
	if err := checkSignature(r); err != nil {
		return Header{}, err
	}
	c, err := ReadChunk(r)
	if err == io.EOF {
		return Header{}, newError(ErrTruncated, "no IHDR chunk")
	} else if err != nil {
		return Header{}, err
	}
	if c.Type != TagIHDR {
		return Header{}, newError(ErrChunkOrder, "first chunk is %s, want IHDR", c.Type)
	}
	return ParseHeader(c.Data)
}

// Per-call state; never shared between goroutines
type decoder struct {
	log     *zerolog.Logger
	stage   int
	header  Header
	palette Palette
	idat    bytes.Buffer
}

// Decodes a PNG stream into an RGBA pixel buffer
func (d *Decoder) Decode(r io.Reader) (*pixel.Buffer, error) {
	st := decoder{log: d.Logger}
	if st.log == nil {
		st.log = logging.GlobalLogger()
	}

	if err := checkSignature(r); err != nil {
		return nil, err
	}

	for st.stage != dsSeenIEND {
		c, err := ReadChunk(r)
		if err == io.EOF {
			return nil, newError(ErrTruncated, "stream ended before IEND")
		} else if err != nil {
			return nil, err
		}
		if err := st.handle(c); err != nil {
			return nil, err
		}
	}

	if st.idat.Len() == 0 {
		return nil, newError(ErrMalformedPixelData, "no IDAT chunks")
	}

	expected, err := st.header.filteredSize()
	if err != nil {
		return nil, err
	}

	decompressor := d.Decompressor
	if decompressor == nil {
		decompressor = deflate.Default()
	}
	raw, err := decompressor.Decompress(st.idat.Bytes(), expected)
	if errors.Is(err, deflate.ErrLimitExceeded) {
		return nil, &Error{Kind: ErrMalformedPixelData, Detail: fmt.Sprintf("IDAT inflates past %d bytes", expected), Cause: err}
	} else if err != nil {
		return nil, oops.New(&Error{Kind: ErrDecompression, Cause: err}, "inflating %d bytes of IDAT", st.idat.Len())
	}

	return st.reconstruct(raw)
}

// Bytes of filtered scanlines the header calls for, tag bytes included
func (h Header) filteredSize() (int64, error) {
	bpp, err := BytesPerPixel(h.ColorModel, h.BitDepth)
	if err != nil {
		return 0, err
	}
	stride := 1 + int64(h.Width)*int64(bpp)
	if int64(h.Height) > math.MaxInt64/stride {
		return 0, newError(ErrMalformedHeader, "%dx%d image is too large", h.Width, h.Height)
	}
	return int64(h.Height) * stride, nil
}

func checkSignature(r io.Reader) error {
	var sig [len(Signature)]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return newError(ErrFormatMismatch, "stream shorter than the signature")
		}
		return err
	}
	if string(sig[:]) != Signature {
		return newError(ErrFormatMismatch, "bad signature % x", sig[:])
	}
	return nil
}

// Routes one chunk and enforces the chunk ordering rules
func (d *decoder) handle(c Chunk) error {
	if d.stage == dsStart && c.Type != TagIHDR {
		return newError(ErrChunkOrder, "first chunk is %s, want IHDR", c.Type)
	}
	if d.stage == dsSeenIDAT && c.Type != TagIDAT {
		d.stage = dsDoneIDAT
	}

	switch c.Type {
	case TagIHDR:
		if d.stage != dsStart {
			return newError(ErrChunkOrder, "second IHDR chunk")
		}
		h, err := ParseHeader(c.Data)
		if err != nil {
			return err
		}
		d.header = h
		d.stage = dsSeenIHDR

	case TagPLTE:
		if d.stage != dsSeenIHDR {
			return newError(ErrChunkOrder, "PLTE after %s", stageName(d.stage))
		}
		p, err := ParsePalette(c.Data)
		if err != nil {
			return err
		}
		d.palette = p
		d.stage = dsSeenPLTE

	case TagTRNS:
		if d.header.ColorModel != ColorPalette {
			d.log.Debug().Str("colorModel", d.header.ColorModel.String()).Msg("ignoring tRNS colour key")
			return nil
		}
		if d.stage != dsSeenPLTE {
			return newError(ErrChunkOrder, "tRNS after %s", stageName(d.stage))
		}
		Transparency(c.Data).Apply(d.palette)

	case TagIDAT:
		if d.stage == dsDoneIDAT {
			return newError(ErrChunkOrder, "IDAT chunks are not consecutive")
		}
		d.idat.Write(c.Data)
		d.stage = dsSeenIDAT

	case TagIEND:
		if _, err := Classify(c); err != nil {
			return err
		}
		d.stage = dsSeenIEND

	default:
		d.log.Debug().Str("chunk", c.Type.String()).Uint32("length", c.Length()).Msg("skipping chunk")
	}
	return nil
}

// Defilters the decompressed stream row by row into pixels
func (d *decoder) reconstruct(raw []byte) (*pixel.Buffer, error) {
	h := d.header
	bpp, err := BytesPerPixel(h.ColorModel, h.BitDepth)
	if err != nil {
		return nil, err
	}

	width, height := int(h.Width), int(h.Height)
	rowBytes := width * bpp
	stride := 1 + rowBytes
	if len(raw)%stride != 0 {
		return nil, newError(ErrMalformedPixelData, "%d bytes is not a multiple of the %d byte scanline", len(raw), stride)
	}
	if rows := len(raw) / stride; rows != height {
		return nil, newError(ErrMalformedPixelData, "%d scanlines for %d rows", rows, height)
	}

	img, err := pixel.New(width, height)
	if err != nil {
		return nil, newError(ErrMalformedHeader, "%v", err)
	}

	// Rows are reconstructed in place, so the row above is simply the previous slice
	prev := make([]byte, rowBytes)
	for y := range height {
		line := raw[y*stride : (y+1)*stride]
		ft, cur := scanline.FilterType(line[0]), line[1:]
		if err := scanline.Defilter(ft, cur, prev, bpp); err != nil {
			return nil, newError(ErrUnknownFilterType, "row %d has filter %d", y, line[0])
		}
		if err := unpackRow(img.Row(y), cur, h, d.palette); err != nil {
			return nil, err
		}
		prev = cur
	}
	return img, nil
}

func stageName(stage int) string {
	switch stage {
	case dsStart:
		return "start"
	case dsSeenIHDR:
		return "IHDR"
	case dsSeenPLTE:
		return "PLTE"
	case dsSeenIDAT, dsDoneIDAT:
		return "IDAT"
	}
	return "IEND"
}
