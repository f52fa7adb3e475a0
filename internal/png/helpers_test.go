package png

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/anas-shakeel/go-png/internal/deflate"
	"github.com/anas-shakeel/go-png/internal/pixel"
	"github.com/stretchr/testify/require"
)

// Assembles a stream from already built chunks
func stream(chunks ...Chunk) []byte {
	var buf bytes.Buffer
	buf.WriteString(Signature)
	for _, c := range chunks {
		c.WriteTo(&buf)
	}
	return buf.Bytes()
}

func header(width, height uint32, depth uint8, cm ColorModel) Chunk {
	return ToChunk(Header{Width: width, Height: height, BitDepth: depth, ColorModel: cm})
}

// Compresses pre-tagged scanlines into one IDAT chunk
func idat(t *testing.T, scanlines ...[]byte) Chunk {
	t.Helper()
	compressed, err := deflate.Default().Compress(bytes.Join(scanlines, nil))
	require.NoError(t, err)
	return ToChunk(PixelData(compressed))
}

func iend() Chunk {
	return ToChunk(End{})
}

func randomImage(rng *rand.Rand, width, height int) *pixel.Buffer {
	img, _ := pixel.New(width, height)
	for i := range img.Pix {
		img.Pix[i] = pixel.Pixel{
			R: byte(rng.Intn(256)),
			G: byte(rng.Intn(256)),
			B: byte(rng.Intn(256)),
			A: byte(rng.Intn(256)),
		}
	}
	return img
}

// Decompresses the IDAT stream of an encoded image
func filteredScanlines(t *testing.T, encoded []byte) []byte {
	t.Helper()
	r := bytes.NewReader(encoded)
	require.NoError(t, checkSignature(r))

	var compressed bytes.Buffer
	for {
		c, err := ReadChunk(r)
		require.NoError(t, err)
		if c.Type == TagIDAT {
			compressed.Write(c.Data)
		}
		if c.Type == TagIEND {
			break
		}
	}
	raw, err := deflate.Default().Decompress(compressed.Bytes(), -1)
	require.NoError(t, err)
	return raw
}
