// BMP-specific structs, constants and sizing rules
package bmp

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	pixelOffset    = fileHeaderSize + infoHeaderSize
	bitsPerPixel   = 24
	bytesPerPixel  = bitsPerPixel / 8
)

// The BitmapFileHeader structure contains information about the type, size,
// and layout of a file that contains a DIB [device-independent bitmap].
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader
type BitmapFileHeader struct {
	Type      [2]byte // The file type: must be 0x4d42 (ASCII string "BM").
	Size      uint32  // The size, in bytes, of the bitmap file.
	Reserved1 uint16  // Reserved; must be zero.
	Reserved2 uint16  // Reserved; must be zero.
	OffBits   uint32  // Offset (in bytes) from the start of the file to the pixel array
}

// The BitmapInfoHeader structure contains information about the
// dimensions and color format of DIB [device-independent bitmap].
type BitmapInfoHeader struct {
	Size            uint32 // The number of bytes required by the structure.
	Width           int32  // The width of the bitmap, in pixels.
	Height          int32  // The height of the bitmap, in pixels. Negative means top-down rows.
	Planes          uint16 // The number of planes for the target device.
	BitCount        uint16 // The number of bits-per-pixel.
	Compression     uint32 // The type of compression
	SizeImage       uint32 // The size of the image (in bytes).
	XPixelsPerM     int32  // The horizontal resolution, in pixels-per-meter.
	YPixelsPerM     int32  // The vertical resolution, in pixels-per-meter.
	ColorsUsed      uint32 // Number of color indexes that are actually used by bitmap.
	ColorsImportant uint32 // Number of color indexes required for displaying the bitmap.
}

// Total bytes in a 24 bit row, including the padding to a 4 byte boundary
func stride(width int) int {
	return ((width*bitsPerPixel + 31) / 32) * 4
}

// Builds the headers of a 24 bit uncompressed bottom-up bitmap
func newHeaders(width, height int) (BitmapFileHeader, BitmapInfoHeader) {
	sizeImage := uint32(stride(width) * height)
	bfh := BitmapFileHeader{
		Type:    [2]byte{'B', 'M'},
		Size:    pixelOffset + sizeImage,
		OffBits: pixelOffset,
	}
	bih := BitmapInfoHeader{
		Size:      infoHeaderSize,
		Width:     int32(width),
		Height:    int32(height),
		Planes:    1,
		BitCount:  bitsPerPixel,
		SizeImage: sizeImage,
	}
	return bfh, bih
}
