package bgzf

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Writer compresses a byte stream into BGZF format: a sequence of
// independent gzip members, each carrying at most the writer's uncompressed
// block size (DefaultUncompressedBlockSize unless set with NewWriterSize)
// of payload, followed on Close by the fixed EOF
// terminator block.
type Writer struct {
	level            int
	uncompressedSize int
	w                io.Writer
	original         bytes.Buffer
	compressed       bytes.Buffer
	coffset          uint64 // file position of the start of the block currently being filled
}

// NewWriter returns a Writer using DefaultUncompressedBlockSize blocks at the
// given compression level (see compress/flate for level constants).
func NewWriter(w io.Writer, level int) *Writer {
	return &Writer{
		level:            level,
		uncompressedSize: DefaultUncompressedBlockSize,
		w:                w,
	}
}

// NewWriterSize is like NewWriter but with an explicit uncompressed block
// size; size must not exceed MaxUncompressedBlockSize.
func NewWriterSize(w io.Writer, level, size int) (*Writer, error) {
	if size > MaxUncompressedBlockSize {
		return nil, newError(DeflateFailed, "uncompressed block size %d exceeds max %d", size, MaxUncompressedBlockSize)
	}
	return &Writer{level: level, uncompressedSize: size, w: w}, nil
}

// Write buffers buf into the current block, flushing completed blocks to the
// underlying writer as they fill.
func (w *Writer) Write(buf []byte) (int, error) {
	for i := 0; i < len(buf); {
		end := len(buf)
		limit := i + w.uncompressedSize - w.original.Len()
		if limit < end {
			end = limit
		}
		n, _ := w.original.Write(buf[i:end])
		i += n
		if err := w.flushBlocks(false); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

// CloseWithoutTerminator flushes any buffered bytes as a final (possibly
// empty) block, but does not append the BGZF EOF terminator. The resulting
// stream is only complete once the terminator is appended separately -- used
// when concatenating independently-compressed shards.
func (w *Writer) CloseWithoutTerminator() error {
	return w.flushBlocks(true)
}

// Close flushes any buffered bytes and appends the fixed EOF terminator block.
func (w *Writer) Close() error {
	if err := w.CloseWithoutTerminator(); err != nil {
		return err
	}
	_, err := w.w.Write(terminator)
	return err
}

// flushBlocks compresses and emits complete blocks from w.original. When
// compressRemainder is true, the remainder shorter than a full block is also
// emitted as a final block, even when it is empty (used on Close).
func (w *Writer) flushBlocks(compressRemainder bool) error {
	emitted := false
	for w.original.Len() >= w.uncompressedSize || (compressRemainder && (w.original.Len() > 0 || !emitted)) {
		emitted = true
		gz, err := gzip.NewWriterLevel(&w.compressed, w.level)
		if err != nil {
			return newError(DeflateFailed, "%v", err)
		}
		gz.Header.Extra = append([]byte(nil), extraSubfield[:]...)
		gz.Header.OS = 0xff

		if w.original.Len() > 0 {
			if _, err := gz.Write(w.original.Next(w.uncompressedSize)); err != nil {
				return newError(DeflateFailed, "%v", err)
			}
		}
		if err := gz.Close(); err != nil {
			return newError(DeflateFailed, "%v", err)
		}

		b := w.compressed.Bytes()
		const extraOffset = 12 // gzip header fixed fields precede the Extra subfield.
		bsize := w.compressed.Len() - 1
		if bsize >= maxCompressedBlockSize {
			return newError(DeflateFailed, "compressed block too large: %d bytes", bsize+1)
		}
		if len(b) < extraOffset+len(extraSubfield) {
			return newError(DeflateFailed, "compressed block shorter than BGZF header")
		}
		if !bytes.Equal(b[extraOffset:extraOffset+4], extraSubfield[:4]) {
			return newError(InvalidHeader, "could not locate BGZF extra subfield in freshly written block")
		}
		b[extraOffset+4] = byte(bsize)
		b[extraOffset+5] = byte(bsize >> 8)

		sz := w.compressed.Len()
		if _, err := w.compressed.WriteTo(w.w); err != nil {
			return err
		}
		w.coffset += uint64(sz)
	}
	return nil
}

// Tell returns the virtual offset of the next byte to be written.
func (w *Writer) Tell() Offset {
	return MakeOffset(int64(w.coffset), uint16(w.original.Len()))
}
