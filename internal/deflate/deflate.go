// deflate package provides the zlib-wrapped DEFLATE codec the image codecs compress pixel data with
package deflate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Returned, wrapped, when inflating would produce more than the allowed bytes
var ErrLimitExceeded = errors.New("inflated data exceeds limit")

type Decompressor interface {
	// Inflates data, failing with ErrLimitExceeded past limit bytes of output.
	// A negative limit means no limit.
	Decompress(data []byte, limit int64) ([]byte, error)
}

type Codec interface {
	Compressor
	Decompressor
}

// Zlib implements Codec on top of klauspost/compress
type Zlib struct {
	Level int // One of the zlib levels, -1 (default) through 9
}

// Returns a codec that uses the zlib default level
func Default() Zlib {
	return Zlib{Level: zlib.DefaultCompression}
}

func (z Zlib) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, z.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zlib writer: %w", err)
	}

	return buf.Bytes(), nil
}

func (z Zlib) Decompress(data []byte, limit int64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer r.Close()

	// One byte past the limit is enough to tell an overflow apart
	var src io.Reader = r
	if limit >= 0 {
		src = io.LimitReader(r, limit+1)
	}
	out, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate data: %w", err)
	}
	if limit >= 0 && int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrLimitExceeded, limit)
	}
	return out, nil
}
