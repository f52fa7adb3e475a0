package png

import (
	"encoding/binary"

	"github.com/anas-shakeel/go-png/internal/pixel"
)

// TypedChunk is one of Header, Palette, Transparency, PixelData, End or Unknown
type TypedChunk interface {
	Tag() Tag
	Payload() []byte
}

// Turns a typed chunk back into a raw chunk with a fresh CRC
func ToChunk(tc TypedChunk) Chunk {
	return NewChunk(tc.Tag(), tc.Payload())
}

// Classify parses the payload of a raw chunk into its typed form.
// Tags this package does not model come back as Unknown.
func Classify(c Chunk) (TypedChunk, error) {
	switch c.Type {
	case TagIHDR:
		return ParseHeader(c.Data)
	case TagPLTE:
		return ParsePalette(c.Data)
	case TagTRNS:
		return Transparency(c.Data), nil
	case TagIDAT:
		return PixelData(c.Data), nil
	case TagIEND:
		if len(c.Data) != 0 {
			return nil, newError(ErrMalformedChunk, "IEND carries %d bytes", len(c.Data))
		}
		return End{}, nil
	default:
		return Unknown{Type: c.Type, Data: c.Data}, nil
	}
}

// The IHDR chunk
type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8 // Bits per sample (or per palette index)
	ColorModel  ColorModel
	Compression uint8 // Always 0 (deflate)
	Filter      uint8 // Always 0 (adaptive, five filter types)
	Interlace   uint8 // 0 (none); Adam7 is not supported
}

const headerLength = 13

// Decodes and validates an IHDR payload
func ParseHeader(data []byte) (Header, error) {
	if len(data) != headerLength {
		return Header{}, newError(ErrMalformedHeader, "IHDR is %d bytes, want %d", len(data), headerLength)
	}
	h := Header{
		Width:       binary.BigEndian.Uint32(data[0:4]),
		Height:      binary.BigEndian.Uint32(data[4:8]),
		BitDepth:    data[8],
		ColorModel:  ColorModel(data[9]),
		Compression: data[10],
		Filter:      data[11],
		Interlace:   data[12],
	}
	return h, h.Validate()
}

func (h Header) Validate() error {
	if h.BitDepth < 8 {
		return newError(ErrUnsupportedBitDepth, "%d bits per sample", h.BitDepth)
	}
	if _, err := BytesPerPixel(h.ColorModel, h.BitDepth); err != nil {
		return err
	}
	if h.Width == 0 || h.Height == 0 || h.Width > maxChunkLength || h.Height > maxChunkLength {
		return newError(ErrMalformedHeader, "invalid dimensions %dx%d", h.Width, h.Height)
	}
	if h.Compression != 0 {
		return newError(ErrMalformedHeader, "unknown compression method %d", h.Compression)
	}
	if h.Filter != 0 {
		return newError(ErrMalformedHeader, "unknown filter method %d", h.Filter)
	}
	if h.Interlace != 0 {
		return newError(ErrUnsupportedFeature, "interlace method %d", h.Interlace)
	}
	return nil
}

func (Header) Tag() Tag { return TagIHDR }

func (h Header) Payload() []byte {
	data := make([]byte, headerLength)
	binary.BigEndian.PutUint32(data[0:4], h.Width)
	binary.BigEndian.PutUint32(data[4:8], h.Height)
	data[8] = h.BitDepth
	data[9] = byte(h.ColorModel)
	data[10] = h.Compression
	data[11] = h.Filter
	data[12] = h.Interlace
	return data
}

// The PLTE chunk: colour i is the pixel for palette index i
type Palette []pixel.Pixel

// Decodes a PLTE payload; every entry starts fully opaque
func ParsePalette(data []byte) (Palette, error) {
	if len(data)%3 != 0 {
		return nil, newError(ErrMalformedPalette, "%d bytes is not a multiple of 3", len(data))
	}
	if n := len(data) / 3; n == 0 || n > 256 {
		return nil, newError(ErrMalformedPalette, "%d entries", n)
	}

	p := make(Palette, 0, len(data)/3)
	for i := 0; i < len(data); i += 3 {
		p = append(p, pixel.Opaque(data[i], data[i+1], data[i+2]))
	}
	return p, nil
}

func (Palette) Tag() Tag { return TagPLTE }

// Alpha is not part of PLTE; it travels in a Transparency chunk
func (p Palette) Payload() []byte {
	data := make([]byte, 0, len(p)*3)
	for _, c := range p {
		data = append(data, c.R, c.G, c.B)
	}
	return data
}

// The tRNS chunk of a palette image: alpha for the first len(t) palette entries
type Transparency []byte

// Applies entry i to palette entry i. Entries beyond the palette are ignored.
func (t Transparency) Apply(p Palette) {
	for i, a := range t {
		if i >= len(p) {
			return
		}
		p[i].A = a
	}
}

func (Transparency) Tag() Tag { return TagTRNS }

func (t Transparency) Payload() []byte { return t }

// One IDAT fragment of the compressed pixel stream
type PixelData []byte

func (PixelData) Tag() Tag { return TagIDAT }

func (d PixelData) Payload() []byte { return d }

// The IEND chunk
type End struct{}

func (End) Tag() Tag { return TagIEND }

func (End) Payload() []byte { return nil }

// Any chunk type not modelled above, kept verbatim
type Unknown struct {
	Type Tag
	Data []byte
}

func (u Unknown) Tag() Tag { return u.Type }

func (u Unknown) Payload() []byte { return u.Data }
