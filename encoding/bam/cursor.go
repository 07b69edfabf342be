package bam

import (
	"encoding/binary"
	"fmt"
)

// cursor is a bounds-checked slice reader used to decode one alignment's
// variable "data" block without unsafe pointer walking -- every typed read
// range-checks before indexing, unlike the raw-pointer tag walkers this is
// modeled to replace.
type cursor struct {
	data []byte
	off  int
}

func newCursor(data []byte) *cursor { return &cursor{data: data} }

func (c *cursor) remaining() int { return len(c.data) - c.off }

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, fmt.Errorf("bam: cursor read of %d bytes overruns %d-byte buffer at offset %d", n, len(c.data), c.off)
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) uint8() (byte, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) int32() (int32, error) {
	v, err := c.uint32()
	return int32(v), err
}
