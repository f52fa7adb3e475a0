// pixel package holds the RGBA pixel buffer shared by the codecs and the image tools
package pixel

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// One pixel, 8 bits per channel, straight (non-premultiplied) alpha
type Pixel struct {
	R, G, B, A byte
}

// Opaque returns a fully opaque pixel
func Opaque(r, g, b byte) Pixel {
	return Pixel{R: r, G: g, B: b, A: 255}
}

// Returns the pixel in bytes as RGBA (Red, Green, Blue, Alpha)
func (p Pixel) Bytes() [4]byte {
	return [4]byte{p.R, p.G, p.B, p.A}
}

// Buffer is a row-major image: the pixel at (x, y) is Pix[y*Width+x]
type Buffer struct {
	Width  int
	Height int
	Pix    []Pixel
}

// Creates a buffer of transparent black pixels
func New(width, height int) (*Buffer, error) {
	if width <= 0 {
		return nil, errors.New("width must be greater than 0")
	} else if height <= 0 {
		return nil, errors.New("height must be greater than 0")
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]Pixel, width*height),
	}, nil
}

// Reports whether the dimensions and the slice length agree
func (b *Buffer) Valid() bool {
	return b != nil && b.Width > 0 && b.Height > 0 && len(b.Pix) == b.Width*b.Height
}

func (b *Buffer) At(x, y int) Pixel {
	return b.Pix[y*b.Width+x]
}

func (b *Buffer) Set(x, y int, p Pixel) {
	b.Pix[y*b.Width+x] = p
}

// Row returns the pixels of row y, sharing memory with the buffer
func (b *Buffer) Row(y int) []Pixel {
	return b.Pix[y*b.Width : (y+1)*b.Width]
}

// Returns a deep copy of the buffer
func (b *Buffer) Copy() *Buffer {
	pix := make([]Pixel, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Equal reports whether both buffers have the same size and pixels
func (b *Buffer) Equal(other *Buffer) bool {
	if b.Width != other.Width || b.Height != other.Height || len(b.Pix) != len(other.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != other.Pix[i] {
			return false
		}
	}
	return true
}

// ToNRGBA copies the buffer into a standard library image
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, p := range b.Pix {
		copy(img.Pix[i*4:i*4+4], []byte{p.R, p.G, p.B, p.A})
	}
	return img
}

// FromImage converts any image to a buffer with its top-left corner at (0, 0)
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	b, err := New(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	for y := range b.Height {
		for x := range b.Width {
			c := nrgba.NRGBAAt(x, y)
			b.Set(x, y, Pixel{R: c.R, G: c.G, B: c.B, A: c.A})
		}
	}
	return b, nil
}

// Implements color.Color so a pixel can be handed to image/draw
func (p Pixel) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}.RGBA()
}
