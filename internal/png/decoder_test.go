package png

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"

	"github.com/anas-shakeel/go-png/internal/deflate"
	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/anas-shakeel/go-png/internal/scanline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSingleRGBPixel(t *testing.T) {
	data := stream(
		header(1, 1, 8, ColorRGB),
		idat(t, []byte{0, 10, 20, 30}),
		iend(),
	)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Width)
	assert.Equal(t, 1, img.Height)
	assert.Equal(t, []pixel.Pixel{{R: 10, G: 20, B: 30, A: 255}}, img.Pix)
}

func TestDecodeTwoRGBAPixels(t *testing.T) {
	data := stream(
		header(2, 1, 8, ColorRGBA),
		idat(t, []byte{0, 0, 0, 0, 0, 255, 255, 255, 255}),
		iend(),
	)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []pixel.Pixel{{}, {R: 255, G: 255, B: 255, A: 255}}, img.Pix)
}

func TestDecodeEveryFilterType(t *testing.T) {
	rows := [][]byte{
		{1, 2, 3, 4, 5, 6, 7, 8, 9},
		{9, 8, 7, 6, 5, 4, 3, 2, 1},
		{0, 255, 0, 255, 0, 255, 0, 255, 0},
		{100, 100, 100, 50, 50, 50, 25, 25, 25},
		{7, 7, 7, 7, 7, 7, 7, 7, 7},
	}
	for _, f := range []scanline.FilterType{scanline.None, scanline.Sub, scanline.Up, scanline.Average, scanline.Paeth} {
		t.Run(f.String(), func(t *testing.T) {
			prev := make([]byte, 9)
			var lines [][]byte
			for _, raw := range rows {
				line := make([]byte, 10)
				line[0] = byte(f)
				require.NoError(t, scanline.Filter(f, line[1:], raw, prev, 3))
				lines = append(lines, line)
				prev = raw
			}

			img, err := Decode(bytes.NewReader(stream(header(3, 5, 8, ColorRGB), idat(t, lines...), iend())))
			require.NoError(t, err)
			for y, raw := range rows {
				for x := range 3 {
					assert.Equal(t, pixel.Opaque(raw[x*3], raw[x*3+1], raw[x*3+2]), img.At(x, y))
				}
			}
		})
	}
}

func TestDecodePaletteWithTransparency(t *testing.T) {
	plte := NewChunk(TagPLTE, []byte{
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
		9, 9, 9,
	})
	trns := NewChunk(TagTRNS, []byte{0, 128})

	data := stream(
		header(4, 1, 8, ColorPalette),
		plte,
		trns,
		idat(t, []byte{0, 0, 1, 2, 3}),
		iend(),
	)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []pixel.Pixel{
		{R: 255, A: 0},
		{G: 255, A: 128},
		{B: 255, A: 255},
		{R: 9, G: 9, B: 9, A: 255},
	}, img.Pix)
}

func TestDecodeTransparencyLongerThanPalette(t *testing.T) {
	data := stream(
		header(1, 1, 8, ColorPalette),
		NewChunk(TagPLTE, []byte{1, 2, 3}),
		NewChunk(TagTRNS, []byte{40, 50, 60}),
		idat(t, []byte{0, 0}),
		iend(),
	)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, pixel.Pixel{R: 1, G: 2, B: 3, A: 40}, img.Pix[0])
}

func TestDecodeGrayscaleModels(t *testing.T) {
	img, err := Decode(bytes.NewReader(stream(header(2, 1, 8, ColorGrayscale), idat(t, []byte{0, 17, 34}), iend())))
	require.NoError(t, err)
	assert.Equal(t, []pixel.Pixel{pixel.Opaque(17, 17, 17), pixel.Opaque(34, 34, 34)}, img.Pix)

	img, err = Decode(bytes.NewReader(stream(header(1, 1, 8, ColorGrayscaleAlpha), idat(t, []byte{0, 17, 34}), iend())))
	require.NoError(t, err)
	assert.Equal(t, []pixel.Pixel{{R: 17, G: 17, B: 17, A: 34}}, img.Pix)

	img, err = Decode(bytes.NewReader(stream(header(1, 1, 16, ColorGrayscale), idat(t, []byte{0, 0xab, 0xcd}), iend())))
	require.NoError(t, err)
	assert.Equal(t, []pixel.Pixel{pixel.Opaque(0xab, 0xab, 0xab)}, img.Pix)
}

func TestDecodeConcatenatesIDATFragments(t *testing.T) {
	whole := idat(t, []byte{0, 1, 2, 3, 4}, []byte{0, 5, 6, 7, 8})
	var chunks []Chunk
	chunks = append(chunks, header(1, 2, 8, ColorRGBA))
	for i := range whole.Data {
		chunks = append(chunks, NewChunk(TagIDAT, whole.Data[i:i+1]))
	}
	chunks = append(chunks, iend())

	img, err := Decode(bytes.NewReader(stream(chunks...)))
	require.NoError(t, err)
	assert.Equal(t, []pixel.Pixel{{R: 1, G: 2, B: 3, A: 4}, {R: 5, G: 6, B: 7, A: 8}}, img.Pix)
}

func TestDecodeSkipsUnknownChunks(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	data := stream(
		header(1, 1, 8, ColorRGB),
		NewChunk(Tag{'g', 'A', 'M', 'A'}, []byte{0, 0, 0xb1, 0x8f}),
		NewChunk(Tag{'t', 'E', 'X', 't'}, []byte("Comment\x00hi")),
		idat(t, []byte{0, 1, 2, 3}),
		NewChunk(Tag{'z', 'z', 'z', 'z'}, nil),
		iend(),
	)
	d := NewDecoder()
	d.Logger = &logger
	img, err := d.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, pixel.Opaque(1, 2, 3), img.Pix[0])
	assert.Contains(t, buf.String(), "gAMA")
	assert.Contains(t, buf.String(), "tEXt")
}

func TestDecodeIgnoresColourKeyTransparency(t *testing.T) {
	data := stream(
		header(1, 1, 8, ColorRGB),
		NewChunk(TagTRNS, []byte{0, 1, 0, 2, 0, 3}),
		idat(t, []byte{0, 1, 2, 3}),
		iend(),
	)
	img, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, pixel.Opaque(1, 2, 3), img.Pix[0])
}

func TestDecodeIgnoresTrailingData(t *testing.T) {
	data := stream(header(1, 1, 8, ColorRGB), idat(t, []byte{0, 1, 2, 3}), iend())
	data = append(data, "garbage after the end"...)
	_, err := Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestSignatureGate(t *testing.T) {
	valid := stream(header(1, 1, 8, ColorRGB), idat(t, []byte{0, 1, 2, 3}), iend())

	for n := range len(Signature) {
		_, err := Decode(bytes.NewReader(valid[:n]))
		assert.ErrorIs(t, err, ErrFormatMismatch, "truncated to %d bytes", n)
	}
	for i := range len(Signature) {
		corrupt := append([]byte(nil), valid...)
		corrupt[i] ^= 0x01
		_, err := Decode(bytes.NewReader(corrupt))
		assert.ErrorIs(t, err, ErrFormatMismatch, "byte %d", i)
	}
}

func TestCRCEnforcementForEveryChunk(t *testing.T) {
	chunks := []Chunk{
		header(2, 1, 8, ColorPalette),
		NewChunk(TagPLTE, []byte{1, 2, 3, 4, 5, 6}),
		NewChunk(TagTRNS, []byte{0}),
		idat(t, []byte{0, 0, 1}),
		iend(),
	}
	_, err := Decode(bytes.NewReader(stream(chunks...)))
	require.NoError(t, err)

	offset := len(Signature)
	for _, c := range chunks {
		// Flip one bit of the tag, and one of the payload when there is one
		targets := []int{offset + 4}
		if len(c.Data) > 0 {
			targets = append(targets, offset+8+len(c.Data)-1)
		}
		for _, i := range targets {
			corrupt := stream(chunks...)
			corrupt[i] ^= 0x10
			_, err := Decode(bytes.NewReader(corrupt))
			assert.ErrorIs(t, err, ErrCRCMismatch, "%s byte %d", c.Type, i)
		}
		offset += 12 + len(c.Data)
	}
}

func TestDecodeMalformedInput(t *testing.T) {
	rgb := header(1, 1, 8, ColorRGB)
	tests := []struct {
		name   string
		chunks func() []Chunk
		want   error
	}{
		{"palette of 4 bytes", func() []Chunk {
			return []Chunk{header(1, 1, 8, ColorPalette), NewChunk(TagPLTE, []byte{1, 2, 3, 4}), idat(t, []byte{0, 0}), iend()}
		}, ErrMalformedPalette},
		{"bit depth 4", func() []Chunk {
			return []Chunk{header(1, 1, 4, ColorGrayscale), idat(t, []byte{0, 0}), iend()}
		}, ErrUnsupportedBitDepth},
		{"color model 5", func() []Chunk {
			return []Chunk{header(1, 1, 8, 5), idat(t, []byte{0, 0}), iend()}
		}, ErrUnsupportedColorModel},
		{"short pixel data", func() []Chunk {
			return []Chunk{rgb, idat(t, []byte{0, 1, 2}), iend()}
		}, ErrMalformedPixelData},
		{"too many rows", func() []Chunk {
			return []Chunk{rgb, idat(t, []byte{0, 1, 2, 3}, []byte{0, 1, 2, 3}), iend()}
		}, ErrMalformedPixelData},
		{"no IDAT", func() []Chunk {
			return []Chunk{rgb, iend()}
		}, ErrMalformedPixelData},
		{"unknown filter", func() []Chunk {
			return []Chunk{rgb, idat(t, []byte{5, 1, 2, 3}), iend()}
		}, ErrUnknownFilterType},
		{"corrupt zlib", func() []Chunk {
			return []Chunk{rgb, NewChunk(TagIDAT, []byte("not zlib at all")), iend()}
		}, ErrDecompression},
		{"palette without PLTE", func() []Chunk {
			return []Chunk{header(1, 1, 8, ColorPalette), idat(t, []byte{0, 0}), iend()}
		}, ErrPaletteIndex},
		{"palette index out of range", func() []Chunk {
			return []Chunk{header(1, 1, 8, ColorPalette), NewChunk(TagPLTE, []byte{1, 2, 3}), idat(t, []byte{0, 1}), iend()}
		}, ErrPaletteIndex},
		{"IEND with payload", func() []Chunk {
			return []Chunk{rgb, idat(t, []byte{0, 1, 2, 3}), NewChunk(TagIEND, []byte{1})}
		}, ErrMalformedChunk},
		{"missing IEND", func() []Chunk {
			return []Chunk{rgb, idat(t, []byte{0, 1, 2, 3})}
		}, ErrTruncated},
		{"interlaced", func() []Chunk {
			return []Chunk{ToChunk(Header{Width: 1, Height: 1, BitDepth: 8, ColorModel: ColorRGB, Interlace: 1}), iend()}
		}, ErrUnsupportedFeature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(stream(tt.chunks()...)))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeChunkOrder(t *testing.T) {
	rgb := header(1, 1, 8, ColorRGB)
	pal := header(1, 1, 8, ColorPalette)
	plte := NewChunk(TagPLTE, []byte{1, 2, 3})
	pixels := idat(t, []byte{0, 0, 0, 0})
	index := idat(t, []byte{0, 0})
	text := NewChunk(Tag{'t', 'E', 'X', 't'}, []byte("a\x00b"))

	tests := []struct {
		name   string
		chunks []Chunk
	}{
		{"IHDR not first", []Chunk{text, rgb, pixels, iend()}},
		{"IDAT first", []Chunk{pixels, rgb, iend()}},
		{"second IHDR", []Chunk{rgb, rgb, pixels, iend()}},
		{"PLTE after IDAT", []Chunk{pal, index, plte, iend()}},
		{"second PLTE", []Chunk{pal, plte, plte, index, iend()}},
		{"tRNS before PLTE", []Chunk{pal, NewChunk(TagTRNS, []byte{0}), plte, index, iend()}},
		{"tRNS after IDAT", []Chunk{pal, plte, index, NewChunk(TagTRNS, []byte{0}), iend()}},
		{"split IDAT run", []Chunk{rgb, NewChunk(TagIDAT, pixels.Data[:3]), text, NewChunk(TagIDAT, pixels.Data[3:]), iend()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(stream(tt.chunks...)))
			assert.ErrorIs(t, err, ErrChunkOrder)
		})
	}
}

func TestDecompressionErrorKeepsCause(t *testing.T) {
	cause := errors.New("inflate exploded")
	d := &Decoder{Decompressor: failingCodec{err: cause}}
	_, err := d.Decode(bytes.NewReader(stream(header(1, 1, 8, ColorRGB), NewChunk(TagIDAT, []byte{1}), iend())))
	assert.ErrorIs(t, err, ErrDecompression)
	assert.ErrorIs(t, err, cause)
}

type recordingDecompressor struct {
	limits []int64
}

func (r *recordingDecompressor) Decompress(data []byte, limit int64) ([]byte, error) {
	r.limits = append(r.limits, limit)
	return deflate.Default().Decompress(data, limit)
}

func TestDecodeBoundsInflatedSize(t *testing.T) {
	// 1 MiB of zeros deflates to about a kilobyte but a 1x1 RGBA image needs 5 bytes
	bomb, err := deflate.Default().Compress(make([]byte, 1<<20))
	require.NoError(t, err)

	rec := &recordingDecompressor{}
	d := &Decoder{Decompressor: rec}
	_, err = d.Decode(bytes.NewReader(stream(header(1, 1, 8, ColorRGBA), NewChunk(TagIDAT, bomb), iend())))
	assert.ErrorIs(t, err, ErrMalformedPixelData)
	assert.ErrorIs(t, err, deflate.ErrLimitExceeded)
	assert.Equal(t, []int64{5}, rec.limits)

	img, err := d.Decode(bytes.NewReader(stream(header(2, 3, 16, ColorRGB), idat(t, make([]byte, 13), make([]byte, 13), make([]byte, 13)), iend())))
	require.NoError(t, err)
	assert.Equal(t, 6, len(img.Pix))
	assert.Equal(t, int64(3*(1+2*6)), rec.limits[1])
}

func TestFilteredSize(t *testing.T) {
	n, err := Header{Width: 3, Height: 2, BitDepth: 8, ColorModel: ColorRGB}.filteredSize()
	require.NoError(t, err)
	assert.Equal(t, int64(2*(1+9)), n)

	n, err = Header{Width: 1 << 20, Height: 1 << 20, BitDepth: 16, ColorModel: ColorRGBA}.filteredSize()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20)*(1+8<<20), n)

	_, err = Header{Width: maxChunkLength, Height: maxChunkLength, BitDepth: 16, ColorModel: ColorRGBA}.filteredSize()
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestDecodeConfig(t *testing.T) {
	data := stream(header(7, 9, 16, ColorRGB), idat(t, []byte{0}), iend())
	h, err := DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Header{Width: 7, Height: 9, BitDepth: 16, ColorModel: ColorRGB}, h)

	_, err = DecodeConfig(bytes.NewReader([]byte(Signature)))
	assert.ErrorIs(t, err, ErrTruncated)
	_, err = DecodeConfig(bytes.NewReader(stream(iend())))
	assert.ErrorIs(t, err, ErrChunkOrder)
	_, err = DecodeConfig(bytes.NewReader([]byte("GIF89a..")))
	assert.ErrorIs(t, err, ErrFormatMismatch)
}

func TestDecodeStandardLibraryOutput(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	for y := range 3 {
		for x := range 5 {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 50), G: uint8(y * 80), B: uint8(x + y), A: uint8(255 - x*y*10)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, src))

	img, err := Decode(&buf)
	require.NoError(t, err)
	for y := range 3 {
		for x := range 5 {
			c := src.NRGBAAt(x, y)
			assert.Equal(t, pixel.Pixel{R: c.R, G: c.G, B: c.B, A: c.A}, img.At(x, y))
		}
	}
}

func TestDecodeStandardLibraryPaletted(t *testing.T) {
	// More than 16 colours makes the standard library write 8 bit indices
	palette := color.Palette{
		color.NRGBA{R: 10, G: 20, B: 30, A: 255},
		color.NRGBA{R: 200, G: 100, B: 0, A: 255},
		color.NRGBA{R: 0, G: 0, B: 0, A: 0},
	}
	for i := len(palette); i < 20; i++ {
		palette = append(palette, color.NRGBA{R: uint8(i), G: uint8(i), B: uint8(i), A: 255})
	}
	src := image.NewPaletted(image.Rect(0, 0, 4, 1), palette)
	src.SetColorIndex(0, 0, 2)
	src.SetColorIndex(1, 0, 1)
	src.SetColorIndex(2, 0, 0)
	src.SetColorIndex(3, 0, 19)

	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, src))

	h, err := DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, ColorPalette, h.ColorModel)
	require.Equal(t, uint8(8), h.BitDepth)

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []pixel.Pixel{{}, pixel.Opaque(200, 100, 0), pixel.Opaque(10, 20, 30), pixel.Opaque(19, 19, 19)}, img.Pix)
}
