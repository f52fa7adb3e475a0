package png

import (
	"fmt"

	"github.com/anas-shakeel/go-png/internal/pixel"
)

// The channel layout declared in IHDR
type ColorModel uint8

const (
	ColorGrayscale      ColorModel = 0
	ColorRGB            ColorModel = 2
	ColorPalette        ColorModel = 3
	ColorGrayscaleAlpha ColorModel = 4
	ColorRGBA           ColorModel = 6
)

func (c ColorModel) String() string {
	switch c {
	case ColorGrayscale:
		return "Grayscale"
	case ColorRGB:
		return "RGB"
	case ColorPalette:
		return "Palette"
	case ColorGrayscaleAlpha:
		return "GrayscaleAlpha"
	case ColorRGBA:
		return "RGBA"
	}
	return fmt.Sprintf("ColorModel(%d)", uint8(c))
}

// Number of samples per pixel
func (c ColorModel) Channels() (int, error) {
	switch c {
	case ColorGrayscale, ColorPalette:
		return 1, nil
	case ColorGrayscaleAlpha:
		return 2, nil
	case ColorRGB:
		return 3, nil
	case ColorRGBA:
		return 4, nil
	}
	return 0, newError(ErrUnsupportedColorModel, "color type %d", uint8(c))
}

// BytesPerPixel is the filter stride: channels times the sample size in bytes.
// Only 8 and 16 bit samples are supported, and palette indices are 8 bits.
func BytesPerPixel(c ColorModel, bitDepth uint8) (int, error) {
	channels, err := c.Channels()
	if err != nil {
		return 0, err
	}
	if bitDepth != 8 && (bitDepth != 16 || c == ColorPalette) {
		return 0, newError(ErrUnsupportedBitDepth, "%d bits per sample for %s", bitDepth, c)
	}
	return channels * int(bitDepth) / 8, nil
}

// Converts one defiltered row into pixels.
// 16 bit samples keep their most significant byte.
func unpackRow(dst []pixel.Pixel, row []byte, h Header, palette Palette) error {
	s := int(h.BitDepth) / 8 // Sample size in bytes

	switch h.ColorModel {
	case ColorGrayscale:
		for x := range dst {
			v := row[x*s]
			dst[x] = pixel.Opaque(v, v, v)
		}
	case ColorGrayscaleAlpha:
		for x := range dst {
			i := x * 2 * s
			v := row[i]
			dst[x] = pixel.Pixel{R: v, G: v, B: v, A: row[i+s]}
		}
	case ColorPalette:
		for x := range dst {
			idx := int(row[x])
			if idx >= len(palette) {
				return newError(ErrPaletteIndex, "index %d, palette has %d entries", idx, len(palette))
			}
			dst[x] = palette[idx]
		}
	case ColorRGB:
		for x := range dst {
			i := x * 3 * s
			dst[x] = pixel.Opaque(row[i], row[i+s], row[i+2*s])
		}
	case ColorRGBA:
		for x := range dst {
			i := x * 4 * s
			dst[x] = pixel.Pixel{R: row[i], G: row[i+s], B: row[i+2*s], A: row[i+3*s]}
		}
	default:
		return newError(ErrUnsupportedColorModel, "color type %d", uint8(h.ColorModel))
	}
	return nil
}

// Serializes pixels as 8 bit RGBA samples; dst must hold 4 bytes per pixel
func packRow(dst []byte, src []pixel.Pixel) {
	for x, p := range src {
		i := x * 4
		dst[i] = p.R
		dst[i+1] = p.G
		dst[i+2] = p.B
		dst[i+3] = p.A
	}
}
