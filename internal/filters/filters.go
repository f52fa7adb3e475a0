// Filters perform color manipulation and per-pixel operations
package filters

import (
	"errors"
	"math"

	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/anas-shakeel/go-png/internal/utils"
	"github.com/teacat/noire"
)

var (
	ErrInvalidMethod  = errors.New("invalid method: method must be add or multiply")
	ErrInvalidChannel = errors.New("invalid channel: channel must be red, green or blue")
)

// Inverts (negates) the image. Alpha is left alone.
func Invert(b *pixel.Buffer) {
	for i, p := range b.Pix {
		b.Pix[i] = pixel.Pixel{R: 255 - p.R, G: 255 - p.G, B: 255 - p.B, A: p.A}
	}
}

// Converts an image to Black-and-White
func Grayscale(b *pixel.Buffer) {
	for i, p := range b.Pix {
		// Find the average value for pixel
		avg := byte(utils.Average(int(p.R), int(p.G), int(p.B)))
		b.Pix[i] = pixel.Pixel{R: avg, G: avg, B: avg, A: p.A}
	}
}

// Converts an image to Black-and-White (with ITU-R 601-2 Luma Transform)
func GrayscaleLuma(b *pixel.Buffer) {
	for i, p := range b.Pix {
		L := byte(int(p.R)*299/1000 + int(p.G)*587/1000 + int(p.B)*114/1000)
		b.Pix[i] = pixel.Pixel{R: L, G: L, B: L, A: p.A}
	}
}

// Adjusts the Brightness of an image in-place.
//
// method can be "add" (adds value to each channel) or "multiply" (multiplies each channel by value).
// Pixel values are clipped to [0, 255].
func Brightness(b *pixel.Buffer, factor float64, method string) error {
	type Operation func(x, y float64) float64
	var operation Operation

	// Select an operation of brightness (additive or multiplicative)
	switch method {
	case "add":
		operation = func(x, y float64) float64 {
			return x + y
		}
	case "multiply":
		operation = func(x, y float64) float64 {
			return x * y
		}
	default:
		return ErrInvalidMethod
	}

	// Apply brightness (or darkness)
	for i, p := range b.Pix {
		b.Pix[i].R = utils.Clamp(operation(float64(p.R), factor))
		b.Pix[i].G = utils.Clamp(operation(float64(p.G), factor))
		b.Pix[i].B = utils.Clamp(operation(float64(p.B), factor))
	}

	return nil
}

// Adjusts the Contrast of an image in-place.
// factor > 1.0 increases Contrast, factor < 1.0 decreases it.
func Contrast(b *pixel.Buffer, factor float64) {
	if len(b.Pix) == 0 {
		return
	}

	// Compute mean for each channel
	var sumR, sumG, sumB int
	for _, p := range b.Pix {
		sumR += int(p.R)
		sumG += int(p.G)
		sumB += int(p.B)
	}
	totalPixels := len(b.Pix)
	meanR := float64(sumR / totalPixels) // Average of all R pixels
	meanG := float64(sumG / totalPixels) // Average of all G pixels
	meanB := float64(sumB / totalPixels) // Average of all B pixels

	// Apply contrast
	for i, p := range b.Pix {
		b.Pix[i].R = utils.Clamp(float64(p.R)*factor + (1-factor)*meanR)
		b.Pix[i].G = utils.Clamp(float64(p.G)*factor + (1-factor)*meanG)
		b.Pix[i].B = utils.Clamp(float64(p.B)*factor + (1-factor)*meanB)
	}
}

// Keeps a single color channel ("red", "green" or "blue") and zeroes the other two
func Channel(b *pixel.Buffer, channel string) error {
	var keep func(p pixel.Pixel) pixel.Pixel
	switch channel {
	case "red":
		keep = func(p pixel.Pixel) pixel.Pixel { return pixel.Pixel{R: p.R, A: p.A} }
	case "green":
		keep = func(p pixel.Pixel) pixel.Pixel { return pixel.Pixel{G: p.G, A: p.A} }
	case "blue":
		keep = func(p pixel.Pixel) pixel.Pixel { return pixel.Pixel{B: p.B, A: p.A} }
	default:
		return ErrInvalidChannel
	}

	for i, p := range b.Pix {
		b.Pix[i] = keep(p)
	}
	return nil
}

// Mixes every pixel with white by the given amount
func Tint(b *pixel.Buffer, amount float64) {
	mix(b, func(c noire.Color) noire.Color { return c.Tint(amount) })
}

// Mixes every pixel with black by the given amount
func Shade(b *pixel.Buffer, amount float64) {
	mix(b, func(c noire.Color) noire.Color { return c.Shade(amount) })
}

func mix(b *pixel.Buffer, fn func(noire.Color) noire.Color) {
	for i, p := range b.Pix {
		c := fn(noire.NewRGB(float64(p.R), float64(p.G), float64(p.B)))
		b.Pix[i] = pixel.Pixel{
			R: utils.Clamp(math.Round(c.Red)),
			G: utils.Clamp(math.Round(c.Green)),
			B: utils.Clamp(math.Round(c.Blue)),
			A: p.A,
		}
	}
}
