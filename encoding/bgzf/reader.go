package bgzf

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// Reader decodes a BGZF stream block by block, exposing a virtual-offset
// addressable byte stream over an underlying random-access or sequential
// device.
type Reader struct {
	src           io.Reader
	seeker        interface {
		Seek(offset int64, whence int) (int64, error)
	}
	randomAccess  bool
	blockAddress  int64 // compressed-file offset of the start of the current block
	nextAddress   int64 // compressed-file offset where the next block begins
	buf           []byte
	pos           int  // read cursor into buf
	skipOnLoad    int  // within-block offset to discard after the next load (post-Seek)
	eof           bool
}

// NewReader constructs a Reader over src. If src also implements Seek, Seek
// and block-boundary seeking via this Reader are available.
func NewReader(src io.Reader) *Reader {
	r := &Reader{src: src}
	if s, ok := src.(interface {
		Seek(offset int64, whence int) (int64, error)
	}); ok {
		r.seeker = s
		r.randomAccess = true
	}
	return r
}

// Read implements io.Reader over the decompressed BGZF payload stream,
// transparently loading successive blocks as the current one is exhausted.
// It returns (0, nil) at a clean BGZF EOF (the empty terminator block),
// matching the semantics of ordinary streams where callers loop on n==0 && err==nil
// being a transient condition -- callers that want a definite end should
// use AtEOF.
func (r *Reader) Read(dst []byte) (int, error) {
	if r.pos >= len(r.buf) {
		if err := r.loadBlock(); err != nil {
			return 0, err
		}
		if r.eof {
			return 0, nil
		}
	}
	n := copy(dst, r.buf[r.pos:])
	r.pos += n
	return n, nil
}

// AtEOF reports whether the last loadBlock call consumed the BGZF
// terminator (empty block at end of stream).
func (r *Reader) AtEOF() bool { return r.eof && r.pos >= len(r.buf) }

// Tell returns the current virtual offset.
func (r *Reader) Tell() Offset {
	if r.skipOnLoad > 0 {
		// Seeked but not yet loaded: the stashed within-block offset is
		// the current position.
		return MakeOffset(r.blockAddress, uint16(r.skipOnLoad))
	}
	return MakeOffset(r.blockAddress, uint16(r.pos))
}

// Seek repositions the reader to the given virtual offset. It requires a
// random-access underlying device.
func (r *Reader) Seek(voffset Offset) error {
	if !r.randomAccess {
		return newError(SeekUnsupported, "underlying device does not support seeking")
	}
	if _, err := r.seeker.Seek(voffset.BlockAddress(), io.SeekStart); err != nil {
		return newError(SeekUnsupported, "%v", err)
	}
	r.blockAddress = voffset.BlockAddress()
	r.nextAddress = voffset.BlockAddress()
	r.buf = nil
	r.pos = 0
	r.eof = false
	r.skipOnLoad = int(voffset.Within())
	return nil
}

// blockHeader holds the parsed fixed fields of one BGZF/gzip member header.
type blockHeader struct {
	bsize int // total on-disk length of this member, including header and footer
}

func readBlockHeader(r io.Reader) (blockHeader, error) {
	var hdr [blockHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return blockHeader{}, io.EOF
		}
		return blockHeader{}, newError(TruncatedBlock, "%v", err)
	}
	if hdr[0] != 0x1f || hdr[1] != 0x8b {
		return blockHeader{}, newError(InvalidHeader, "bad gzip magic")
	}
	if hdr[2] != 8 {
		return blockHeader{}, newError(InvalidHeader, "unsupported compression method %d", hdr[2])
	}
	if hdr[3]&4 == 0 {
		return blockHeader{}, newError(InvalidHeader, "FEXTRA flag not set")
	}
	xlen := int(binary.LittleEndian.Uint16(hdr[10:12]))
	if xlen != 6 {
		return blockHeader{}, newError(InvalidHeader, "unexpected XLEN %d", xlen)
	}
	var extra [6]byte
	if _, err := io.ReadFull(r, extra[:]); err != nil {
		return blockHeader{}, newError(TruncatedBlock, "%v", err)
	}
	if extra[0] != 'B' || extra[1] != 'C' {
		return blockHeader{}, newError(InvalidHeader, "missing BC subfield")
	}
	slen := int(binary.LittleEndian.Uint16(extra[2:4]))
	if slen != 2 {
		return blockHeader{}, newError(InvalidHeader, "unexpected BC subfield length %d", slen)
	}
	bsize := int(binary.LittleEndian.Uint16(extra[4:6])) + 1
	if bsize < blockHeaderLen+blockFooterLen || bsize > maxCompressedBlockSize {
		return blockHeader{}, newError(InvalidHeader, "BSIZE %d out of range", bsize)
	}
	return blockHeader{bsize: bsize}, nil
}

// loadBlock reads and decompresses the next block from r.src.
func (r *Reader) loadBlock() error {
	r.blockAddress = r.nextAddress
	hdr, err := readBlockHeader(r.src)
	if err == io.EOF {
		r.eof = true
		r.buf = nil
		r.pos = 0
		return nil
	}
	if err != nil {
		return err
	}
	remaining := hdr.bsize - blockHeaderLen
	payload := make([]byte, remaining)
	if _, err := io.ReadFull(r.src, payload); err != nil {
		return newError(TruncatedBlock, "%v", err)
	}
	r.nextAddress = r.blockAddress + int64(hdr.bsize)

	deflateData := payload[:len(payload)-blockFooterLen]
	footer := payload[len(payload)-blockFooterLen:]
	wantCRC := binary.LittleEndian.Uint32(footer[0:4])
	wantISize := binary.LittleEndian.Uint32(footer[4:8])

	if wantISize == 0 {
		// Empty payload: this is the terminator block (or an empty shard
		// boundary). Treat as a clean EOF per the BGZF convention.
		r.eof = true
		r.buf = nil
		r.pos = 0
		return nil
	}

	fr := flate.NewReader(bytes.NewReader(deflateData))
	defer fr.Close() // nolint: errcheck
	out := make([]byte, wantISize)
	if _, err := io.ReadFull(fr, out); err != nil {
		return newError(InflateFailed, "%v", err)
	}
	if crc32.ChecksumIEEE(out) != wantCRC {
		return newError(InflateFailed, "crc32 mismatch")
	}
	r.buf = out
	r.pos = 0
	if r.skipOnLoad > 0 {
		if r.skipOnLoad > len(r.buf) {
			return newError(InvalidHeader, "seek offset %d beyond block payload of %d bytes", r.skipOnLoad, len(r.buf))
		}
		r.pos = r.skipOnLoad
		r.skipOnLoad = 0
	}
	r.eof = false
	return nil
}
