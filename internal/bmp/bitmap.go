// bmp package reads and writes 24 bit uncompressed bitmaps as pixel buffers
package bmp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anas-shakeel/go-png/internal/pixel"
)

var (
	ErrNotBitmap   = errors.New("invalid file: provided file is not a bitmap")
	ErrUnsupported = errors.New("unsupported BMP format: only 24-bit uncompressed is supported")
	ErrDimensions  = errors.New("invalid bitmap: dimensions out of range")
	ErrTruncated   = errors.New("invalid bitmap: pixel array runs past the end of the file")
)

// Largest width or height accepted from a header
const maxDimension = 1 << 16

// Metadata of a bitmap file, as found in its headers
type Info struct {
	FileHeader BitmapFileHeader
	InfoHeader BitmapInfoHeader
	Width      int
	Height     int
	TopDown    bool // Rows are stored top row first
	Stride     int  // Bytes per row, including padding
	Padding    int  // Padding bytes at the end of each row
}

// Reads the headers of a bitmap and validates them
func ReadInfo(r io.Reader) (Info, error) {
	var info Info
	if err := binary.Read(r, binary.LittleEndian, &info.FileHeader); err != nil {
		return Info{}, fmt.Errorf("reading file header: %w", err)
	}
	if info.FileHeader.Type != [2]byte{'B', 'M'} {
		return Info{}, ErrNotBitmap
	}

	// READ Info Header OR (more commonly) DIB Header!
	if err := binary.Read(r, binary.LittleEndian, &info.InfoHeader); err != nil {
		return Info{}, fmt.Errorf("reading info header: %w", err)
	}

	// Support only 24bit uncompressed Bitmaps (common)
	bih := info.InfoHeader
	if bih.BitCount != bitsPerPixel || bih.Compression != 0 {
		return Info{}, ErrUnsupported
	}

	info.Width = int(bih.Width)
	info.Height = int(bih.Height)
	if info.Height < 0 {
		info.TopDown = true
		info.Height = -info.Height // Abs(olute) Height
	}
	if info.Width <= 0 || info.Height == 0 || info.Width > maxDimension || info.Height > maxDimension {
		return Info{}, fmt.Errorf("%w: %dx%d", ErrDimensions, bih.Width, bih.Height)
	}

	info.Stride = stride(info.Width)
	info.Padding = info.Stride - info.Width*bytesPerPixel
	return info, nil
}

// Reads a bitmap into an opaque pixel buffer
func Read(r io.ReadSeeker) (*pixel.Buffer, error) {
	info, err := ReadInfo(r)
	if err != nil {
		return nil, err
	}

	// The pixel array must fit in the file before anything is allocated for it
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if end := int64(info.FileHeader.OffBits) + int64(info.Stride)*int64(info.Height); end > size {
		return nil, fmt.Errorf("%w: needs %d bytes, file has %d", ErrTruncated, end, size)
	}

	// Seek to Pixel Array (OffBits)
	if _, err := r.Seek(int64(info.FileHeader.OffBits), io.SeekStart); err != nil {
		return nil, err
	}

	img, err := pixel.New(info.Width, info.Height)
	if err != nil {
		return nil, err
	}

	row := make([]byte, info.Stride)
	for i := range info.Height {
		rowIndex := info.Height - i - 1
		if info.TopDown {
			rowIndex = i
		}

		// Read one row, padding included
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, fmt.Errorf("reading row %d: %w", rowIndex, err)
		}
		dst := img.Row(rowIndex)
		for col := range info.Width {
			bgr := row[col*bytesPerPixel:]
			dst[col] = pixel.Opaque(bgr[2], bgr[1], bgr[0])
		}
	}

	return img, nil
}

// Reads a bitmap file from local disk
func ReadFile(filename string) (*pixel.Buffer, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Read(file)
}

// Writes a pixel buffer as a bottom-up 24 bit bitmap. Alpha is dropped.
func Write(w io.Writer, img *pixel.Buffer) error {
	if !img.Valid() {
		return errors.New("invalid pixel buffer")
	}
	bfh, bih := newHeaders(img.Width, img.Height)

	// Create a buffer (to reduce syscalls)
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.LittleEndian, bfh); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, bih); err != nil {
		return err
	}

	// Write the pixels (BottomUp: last row first)
	row := make([]byte, stride(img.Width))
	for i := range img.Height {
		for col, p := range img.Row(img.Height - i - 1) {
			copy(row[col*bytesPerPixel:], []byte{p.B, p.G, p.R})
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Saves a pixel buffer as a bitmap onto local disk
func WriteFile(filename string, img *pixel.Buffer) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Print the Metadata of a bitmap in terminal (in human-readable format)
func (info Info) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Filesize: \t%v bytes\n", info.FileHeader.Size)
	fmt.Fprintf(w, "Width: \t\t%v px\n", info.Width)
	fmt.Fprintf(w, "Height: \t%v px\n", info.Height)
	fmt.Fprintf(w, "BitCount: \t%vbits\n", info.InfoHeader.BitCount)
	fmt.Fprintf(w, "PixelOffset: \t%v bytes\n", info.FileHeader.OffBits)
	fmt.Fprintf(w, "PixelCount: \t%v pixels\n", info.Width*info.Height)
	fmt.Fprintf(w, "Stride: \t%v bytes\n", info.Stride)
	fmt.Fprintf(w, "Padding: \t%v bytes\n", info.Padding)
}
