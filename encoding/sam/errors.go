package sam

import "fmt"

// DecodeErrorKind enumerates the closed set of failures raised while
// materializing a record's lazily-decoded variable-length data (name,
// sequence/quality, and the tag area) from its retained raw bytes.
type DecodeErrorKind int

const (
	InvalidNameLength DecodeErrorKind = iota
	TruncatedSeqQual
	TruncatedTag
	UnterminatedTag
	TruncatedTagArray
	UnknownTagType
)

func (k DecodeErrorKind) String() string {
	switch k {
	case InvalidNameLength:
		return "InvalidNameLength"
	case TruncatedSeqQual:
		return "TruncatedSeqQual"
	case TruncatedTag:
		return "TruncatedTag"
	case UnterminatedTag:
		return "UnterminatedTag"
	case TruncatedTagArray:
		return "TruncatedTagArray"
	case UnknownTagType:
		return "UnknownTagType"
	default:
		return "Unknown"
	}
}

// DecodeError is returned by Record.Expand and AuxFields' tag-area scanner
// for malformed raw bytes. It mirrors ParseError's shape (header.go), and is
// the type the bam package's reader/marshaler wrap into a *bam.FormatError
// at the package boundary, since this leaf package cannot import bam.
type DecodeError struct {
	Kind    DecodeErrorKind
	Message string
}

func (e *DecodeError) Error() string { return e.Message }

func newDecodeError(kind DecodeErrorKind, format string, args ...interface{}) error {
	return &DecodeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
