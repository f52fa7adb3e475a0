package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/anas-shakeel/go-png/internal/crc"
)

// The eight bytes every PNG stream starts with
const Signature = "\x89PNG\r\n\x1a\n"

// Largest payload a chunk may declare (2^31 - 1)
const maxChunkLength = 0x7fffffff

// A four letter chunk type
type Tag [4]byte

var (
	TagIHDR = Tag{'I', 'H', 'D', 'R'}
	TagPLTE = Tag{'P', 'L', 'T', 'E'}
	TagTRNS = Tag{'t', 'R', 'N', 'S'}
	TagIDAT = Tag{'I', 'D', 'A', 'T'}
	TagIEND = Tag{'I', 'E', 'N', 'D'}
)

func (t Tag) String() string {
	return string(t[:])
}

// One length-prefixed, CRC protected record of the stream
type Chunk struct {
	Type Tag
	Data []byte // Payload, owned by the chunk
	CRC  uint32 // As stored in the stream (or computed, for chunks built in memory)
}

// Builds a chunk with a freshly computed CRC
func NewChunk(tag Tag, data []byte) Chunk {
	return Chunk{Type: tag, Data: data, CRC: checksum(tag, data)}
}

func (c Chunk) Length() uint32 {
	return uint32(len(c.Data))
}

// Computes the CRC over type and payload
func (c Chunk) Checksum() uint32 {
	return checksum(c.Type, c.Data)
}

func (c Chunk) String() string {
	return fmt.Sprintf("%s (%d bytes) - %08X", c.Type, len(c.Data), c.CRC)
}

// Returns the chunk as written in a stream; the CRC is always recomputed
func (c Chunk) Bytes() []byte {
	buf := make([]byte, 12+len(c.Data))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(c.Data)))
	copy(buf[4:8], c.Type[:])
	copy(buf[8:], c.Data)
	binary.BigEndian.PutUint32(buf[8+len(c.Data):], c.Checksum())
	return buf
}

// Writes the chunk in stream form
func (c Chunk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.Bytes())
	return int64(n), err
}

// Reads and validates one chunk.
// A stream that ends cleanly before the length field returns io.EOF.
func ReadChunk(r io.Reader) (Chunk, error) {
	c, computed, err := readChunk(r)
	if err != nil {
		return Chunk{}, err
	}
	if c.CRC != computed {
		return Chunk{}, newError(ErrCRCMismatch, "%s chunk stores %08X, computed %08X", c.Type, c.CRC, computed)
	}
	return c, nil
}

// Decodes one chunk from the start of b
func ParseChunk(b []byte) (Chunk, error) {
	c, err := ReadChunk(bytes.NewReader(b))
	if errors.Is(err, io.EOF) {
		return Chunk{}, newError(ErrTruncated, "empty chunk buffer")
	}
	return c, err
}

// Reads one chunk without judging its CRC; also returns the CRC it should have
func readChunk(r io.Reader) (Chunk, uint32, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if err == io.EOF {
			return Chunk{}, 0, io.EOF
		}
		return Chunk{}, 0, truncated(err, "chunk header")
	}

	var c Chunk
	length := binary.BigEndian.Uint32(head[:4])
	copy(c.Type[:], head[4:8])
	if length > maxChunkLength {
		return Chunk{}, 0, newError(ErrMalformedChunk, "%s chunk declares %d bytes", c.Type, length)
	}

	// Grow with the data actually present instead of trusting the length field
	data, err := io.ReadAll(io.LimitReader(r, int64(length)))
	if err != nil {
		return Chunk{}, 0, err
	}
	if uint32(len(data)) != length {
		return Chunk{}, 0, truncated(io.ErrUnexpectedEOF, c.Type.String()+" payload")
	}
	c.Data = data

	var tail [4]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return Chunk{}, 0, truncated(err, c.Type.String()+" CRC")
	}
	c.CRC = binary.BigEndian.Uint32(tail[:])

	return c, c.Checksum(), nil
}

func checksum(tag Tag, data []byte) uint32 {
	return crc.Update(crc.Checksum(tag[:]), data)
}

func truncated(err error, what string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &Error{Kind: ErrTruncated, Detail: "reading " + what, Cause: io.ErrUnexpectedEOF}
	}
	return err
}
