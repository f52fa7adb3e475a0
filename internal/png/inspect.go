package png

import (
	"bufio"
	"fmt"
	"io"

	"github.com/anas-shakeel/go-png/internal/oops"
)

// What Inspect learns about one chunk without decoding it
type ChunkInfo struct {
	Offset   int64  // Of the length field, from the start of the stream
	Type     Tag
	Length   uint32
	CRC      uint32 // As stored
	Computed uint32 // Over type and payload
}

func (c ChunkInfo) Valid() bool {
	return c.CRC == c.Computed
}

func (c ChunkInfo) String() string {
	return fmt.Sprintf("%s@%x - %d bytes - %08X - Valid CRC? %v", c.Type, c.Offset, c.Length, c.CRC, c.Valid())
}

// Lists every chunk up to and including IEND; bad CRCs are reported, not rejected
func Inspect(r io.Reader) ([]ChunkInfo, error) {
	var infos []ChunkInfo
	err := walk(r, func(c Chunk, info ChunkInfo) error {
		infos = append(infos, info)
		return nil
	})
	return infos, err
}

// Copies a PNG stream to w, recomputing the CRC of every chunk.
// Returns how many chunks had a wrong CRC.
func Repair(r io.Reader, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	bw.WriteString(Signature)

	fixed := 0
	err := walk(r, func(c Chunk, info ChunkInfo) error {
		if !info.Valid() {
			fixed++
		}
		_, err := c.WriteTo(bw)
		return err
	})
	if err != nil {
		return fixed, err
	}
	if err := bw.Flush(); err != nil {
		return fixed, oops.New(err, "writing repaired stream")
	}
	return fixed, nil
}

// Calls fn for each chunk of the stream, stopping after IEND
func walk(r io.Reader, fn func(Chunk, ChunkInfo) error) error {
	if err := checkSignature(r); err != nil {
		return err
	}

	offset := int64(len(Signature))
	for {
		c, computed, err := readChunk(r)
		if err == io.EOF {
			return newError(ErrTruncated, "stream ended before IEND")
		} else if err != nil {
			return err
		}

		info := ChunkInfo{
			Offset:   offset,
			Type:     c.Type,
			Length:   c.Length(),
			CRC:      c.CRC,
			Computed: computed,
		}
		if err := fn(c, info); err != nil {
			return err
		}
		if c.Type == TagIEND {
			return nil
		}
		offset += 12 + int64(c.Length())
	}
}
