package png

import (
	"bufio"
	"io"

	"github.com/anas-shakeel/go-png/internal/config"
	"github.com/anas-shakeel/go-png/internal/deflate"
	"github.com/anas-shakeel/go-png/internal/logging"
	"github.com/anas-shakeel/go-png/internal/oops"
	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/anas-shakeel/go-png/internal/scanline"
	"github.com/rs/zerolog"
)

// The encoder always writes 8 bit RGBA
const encodedBytesPerPixel = 4

type Encoder struct {
	Compressor deflate.Compressor
	Scorer     scanline.Scorer // Filter selection score, nil means scanline.TotalVariation
	ChunkSize  int             // Maximum IDAT payload; 0 writes a single IDAT
	Logger     *zerolog.Logger // nil logs to the global logger
}

// Builds an encoder from configuration; the config should already be validated
func NewEncoder(cfg config.EncoderConfig) *Encoder {
	z := deflate.Zlib{Level: cfg.Level}
	e := &Encoder{
		Compressor: z,
		ChunkSize:  cfg.ChunkSize,
	}
	if cfg.Heuristic == config.TrialCompression {
		e.Scorer = scanline.TrialCompression(z)
	}
	return e
}

// Encodes a pixel buffer with the process-wide encoder configuration
func Encode(w io.Writer, img *pixel.Buffer) error {
	return NewEncoder(config.Config.Encoder).Encode(w, img)
}

// Writes img as an 8 bit RGBA PNG.
// Nothing is written if compression fails.
func (e *Encoder) Encode(w io.Writer, img *pixel.Buffer) error {
	if !img.Valid() {
		return newError(ErrInvalidImage, "buffer does not describe a non-empty image")
	}
	log := e.Logger
	if log == nil {
		log = logging.GlobalLogger()
	}

	filtered, used := e.filterImage(img)

	compressor := e.Compressor
	if compressor == nil {
		compressor = deflate.Default()
	}
	compressed, err := compressor.Compress(filtered)
	if err != nil {
		return oops.New(&Error{Kind: ErrCompression, Cause: err}, "deflating %d bytes of scanlines", len(filtered))
	}

	log.Debug().
		Int("width", img.Width).
		Int("height", img.Height).
		Int("raw", len(filtered)).
		Int("compressed", len(compressed)).
		Interface("filters", used).
		Msg("encoded image")

	header := Header{
		Width:      uint32(img.Width),
		Height:     uint32(img.Height),
		BitDepth:   8,
		ColorModel: ColorRGBA,
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(Signature)
	ToChunk(header).WriteTo(bw)
	for _, fragment := range split(compressed, e.ChunkSize) {
		ToChunk(PixelData(fragment)).WriteTo(bw)
	}
	ToChunk(End{}).WriteTo(bw)

	// bufio remembers the first write error, Flush reports it
	if err := bw.Flush(); err != nil {
		return oops.New(err, "writing PNG stream")
	}
	return nil
}

// Serializes and filters every row; returns the tagged scanlines and how often each filter won
func (e *Encoder) filterImage(img *pixel.Buffer) ([]byte, map[string]int) {
	rowBytes := img.Width * encodedBytesPerPixel
	stride := 1 + rowBytes
	out := make([]byte, img.Height*stride)
	used := make(map[string]int)

	sel := scanline.NewSelector(rowBytes, encodedBytesPerPixel, e.Scorer)
	prev := make([]byte, rowBytes)
	cur := make([]byte, rowBytes)
	for y := range img.Height {
		packRow(cur, img.Row(y))
		f := sel.Select(out[y*stride:(y+1)*stride], cur, prev)
		used[f.String()]++
		prev, cur = cur, prev
	}
	return out, used
}

// Cuts b into pieces of at most size bytes; size <= 0 keeps it whole
func split(b []byte, size int) [][]byte {
	if size <= 0 || len(b) <= size {
		return [][]byte{b}
	}
	pieces := make([][]byte, 0, (len(b)+size-1)/size)
	for len(b) > size {
		pieces = append(pieces, b[:size])
		b = b[size:]
	}
	return append(pieces, b)
}
