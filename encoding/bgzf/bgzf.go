// Package bgzf implements the Blocked GZip Format used by BAM files: a
// concatenation of independently-compressed DEFLATE blocks, each no larger
// than 64KiB uncompressed, that together support random access via 64-bit
// "virtual offsets" (compressed block address << 16 | offset within the
// decompressed block).
//
// For more information about the .bgzf file format, see the SAM/BAM spec:
// https://samtools.github.io/hts-specs/SAMv1.pdf
package bgzf

import (
	"github.com/pkg/errors"
)

const (
	// DefaultUncompressedBlockSize is the default uncompressed payload size
	// used by Writer, matching the value chosen by samtools and biogo.
	DefaultUncompressedBlockSize = 0x0ff00

	// MaxUncompressedBlockSize is the largest legal uncompressed block size.
	MaxUncompressedBlockSize = 0x10000

	// maxCompressedBlockSize is the largest legal compressed block size; the
	// 16-bit BSIZE header field cannot address more than this.
	maxCompressedBlockSize = 0x10000

	blockHeaderLen = 18
	blockFooterLen = 8
)

var (
	// extraSubfield is the BGZF "BC" extra subfield template written into
	// every gzip member's header: SI1='B', SI2='C', SLEN=2, BSIZE placeholder.
	extraSubfield = [6]byte{'B', 'C', 2, 0, 0, 0}

	// terminator is the empty BGZF block required to end a well-formed file.
	terminator = []byte{
		0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00, 0x42, 0x43,
		0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// ErrorKind enumerates the closed set of BGZF failure kinds.
type ErrorKind int

const (
	// InvalidHeader means a block's gzip/BGZF header failed structural validation.
	InvalidHeader ErrorKind = iota
	// TruncatedBlock means fewer bytes were available than the header promised.
	TruncatedBlock
	// InflateFailed means the DEFLATE payload failed to decompress or failed its CRC.
	InflateFailed
	// DeflateFailed means compression of a block failed.
	DeflateFailed
	// SeekUnsupported means Seek was called on a non-random-access device.
	SeekUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidHeader:
		return "InvalidHeader"
	case TruncatedBlock:
		return "TruncatedBlock"
	case InflateFailed:
		return "InflateFailed"
	case DeflateFailed:
		return "DeflateFailed"
	case SeekUnsupported:
		return "SeekUnsupported"
	default:
		return "Unknown"
	}
}

// Error is the structured error type raised by this package.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return "bgzf: " + e.Kind.String()
	}
	return "bgzf: " + e.Kind.String() + ": " + e.msg
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error()}
}

// Offset is a 64-bit virtual offset: (compressed block address << 16) |
// offset within the decompressed block. It is monotone under sequential
// reads and is the unit of random access into a BGZF stream.
type Offset uint64

// MakeOffset builds a virtual offset from its two components.
func MakeOffset(blockAddress int64, within uint16) Offset {
	return Offset(uint64(blockAddress)<<16 | uint64(within))
}

// BlockAddress returns the compressed byte address of the containing block.
func (o Offset) BlockAddress() int64 { return int64(o >> 16) }

// Within returns the byte offset within the block's decompressed payload.
func (o Offset) Within() uint16 { return uint16(o & 0xffff) }
