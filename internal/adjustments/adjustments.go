// Adjusts image dimensions, orientation, or structure.
package adjustments

import (
	"errors"
	"fmt"
	"image"

	"github.com/anas-shakeel/go-png/internal/pixel"
	"golang.org/x/image/draw"
)

var ErrOutOfBounds = errors.New("invalid bounds")

// Interpolation kernels accepted by Resize
var Kernels = map[string]draw.Scaler{
	"nearest":    draw.NearestNeighbor,
	"approx":     draw.ApproxBiLinear,
	"bilinear":   draw.BiLinear,
	"catmullrom": draw.CatmullRom,
}

// Crops a region in the image (0,0  is at the top-left of the image)
func Crop(b *pixel.Buffer, x, y, width, height int) (*pixel.Buffer, error) {
	// Validate bounds
	if x < 0 || y < 0 {
		return nil, fmt.Errorf("%w: origin (%d, %d) is negative", ErrOutOfBounds, x, y)
	} else if width+x > b.Width {
		return nil, fmt.Errorf("%w: width out of bounds", ErrOutOfBounds)
	} else if height+y > b.Height {
		return nil, fmt.Errorf("%w: height out of bounds", ErrOutOfBounds)
	}

	cropped, err := pixel.New(width, height)
	if err != nil {
		return nil, err
	}

	// Crop the image, one row at a time
	for row := range height {
		copy(cropped.Row(row), b.Row(row+y)[x:x+width])
	}

	return cropped, nil
}

// Scales an image to width x height with the named kernel
func Resize(b *pixel.Buffer, width, height int, kernel string) (*pixel.Buffer, error) {
	scaler, ok := Kernels[kernel]
	if !ok {
		return nil, fmt.Errorf("unknown kernel %q", kernel)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrOutOfBounds, width, height)
	}

	src := b.ToNRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return pixel.FromImage(dst)
}

// Mirrors the image left to right in-place
func FlipHorizontal(b *pixel.Buffer) {
	for y := range b.Height {
		row := b.Row(y)
		for i, j := 0, len(row)-1; i < j; i, j = i+1, j-1 {
			row[i], row[j] = row[j], row[i]
		}
	}
}

// Mirrors the image top to bottom in-place
func FlipVertical(b *pixel.Buffer) {
	for i, j := 0, b.Height-1; i < j; i, j = i+1, j-1 {
		top, bottom := b.Row(i), b.Row(j)
		for x := range top {
			top[x], bottom[x] = bottom[x], top[x]
		}
	}
}
