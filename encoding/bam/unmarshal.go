package bam

import (
	"encoding/binary"
	"io"

	"github.com/ngsbio/bamtk/encoding/sam"
)

// ReadAlignment reads one wire alignment record (the LE32 block_size prefix
// plus its payload) from src, returning a core-only *sam.Record. It returns
// io.EOF when src is exhausted cleanly (zero bytes available before the
// block_size prefix).
func ReadAlignment(src io.Reader) (*sam.Record, error) {
	src = eofReader{src}
	var sizeBuf [4]byte
	if _, err := io.ReadFull(src, sizeBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, newFormatError(ShortRead, "%v", err)
	}
	blockSize := int(binary.LittleEndian.Uint32(sizeBuf[:]))
	if blockSize < coreSize {
		return nil, newFormatError(BlockSizeMismatch, "block_size %d smaller than fixed core", blockSize)
	}
	payload := make([]byte, blockSize)
	if _, err := io.ReadFull(src, payload); err != nil {
		return nil, newFormatError(ShortRead, "%v", err)
	}
	return decodeAlignment(payload)
}

// eofReader turns the (0, nil) read a bgzf.Reader returns once it has
// reached the end of the stream into io.EOF, so io.ReadFull stops there.
type eofReader struct{ r io.Reader }

func (e eofReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		if a, ok := e.r.(interface{ AtEOF() bool }); ok && a.AtEOF() {
			return 0, io.EOF
		}
	}
	return n, err
}

func decodeAlignment(payload []byte) (*sam.Record, error) {
	c := newCursor(payload)
	refID, err := c.int32()
	if err != nil {
		return nil, wrapShort(err)
	}
	pos, err := c.int32()
	if err != nil {
		return nil, wrapShort(err)
	}
	binMqNl, err := c.uint32()
	if err != nil {
		return nil, wrapShort(err)
	}
	flagNc, err := c.uint32()
	if err != nil {
		return nil, wrapShort(err)
	}
	lSeq, err := c.int32()
	if err != nil {
		return nil, wrapShort(err)
	}
	nextRefID, err := c.int32()
	if err != nil {
		return nil, wrapShort(err)
	}
	nextPos, err := c.int32()
	if err != nil {
		return nil, wrapShort(err)
	}
	tlen, err := c.int32()
	if err != nil {
		return nil, wrapShort(err)
	}

	nameLen := int(binMqNl & 0xff)
	mapQ := uint8((binMqNl >> 8) & 0xff)
	bin := uint16(binMqNl >> 16)
	nCigar := int(flagNc & 0xffff)
	flag := sam.Flag(flagNc >> 16)

	r := &sam.Record{
		RefID:     refID,
		Pos:       pos,
		MapQ:      mapQ,
		Bin:       bin,
		Flag:      flag,
		NextRefID: nextRefID,
		NextPos:   nextPos,
		TLen:      tlen,
		LSeq:      lSeq,
	}

	if _, err := c.bytes(nameLen); err != nil {
		return nil, wrapShort(err)
	}

	cigar := make([]sam.CigarOp, nCigar)
	for i := 0; i < nCigar; i++ {
		v, err := c.uint32()
		if err != nil {
			return nil, wrapShort(err)
		}
		opChar, err := cigarChar(byte(v & 0xf))
		if err != nil {
			return nil, err
		}
		cigar[i] = sam.CigarOp{Op: opChar, Len: int(v >> 4)}
	}
	r.Cigar = cigar

	// The remainder (packed sequence, quality, and tag area) is retained
	// verbatim and decoded lazily by Record.Expand.
	r.AttachRaw(payload[coreSize:], nameLen)
	return r, nil
}

func wrapShort(err error) error {
	return newFormatError(ShortRead, "%v", err)
}
