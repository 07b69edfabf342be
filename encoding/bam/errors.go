// Package bam implements the BAM binary alignment record codec, the
// sequential/random-access Reader and Writer, and the region-filtered
// iteration logic that ties a Reader to a loaded index.
package bam

import (
	"fmt"

	"github.com/ngsbio/bamtk/encoding/sam"
)

// FormatErrorKind enumerates the closed set of BAM structural failures.
type FormatErrorKind int

const (
	BadMagic FormatErrorKind = iota
	ShortRead
	BlockSizeMismatch
	BadCigarOp
	BadSequenceNibble
	BadTagType
	BadTagSize
)

func (k FormatErrorKind) String() string {
	switch k {
	case BadMagic:
		return "BadMagic"
	case ShortRead:
		return "ShortRead"
	case BlockSizeMismatch:
		return "BlockSizeMismatch"
	case BadCigarOp:
		return "BadCigarOp"
	case BadSequenceNibble:
		return "BadSequenceNibble"
	case BadTagType:
		return "BadTagType"
	case BadTagSize:
		return "BadTagSize"
	default:
		return "Unknown"
	}
}

// FormatError is the structured error type raised for malformed BAM wire data.
type FormatError struct {
	Kind FormatErrorKind
	msg  string
}

func (e *FormatError) Error() string {
	if e.msg == "" {
		return "bam: " + e.Kind.String()
	}
	return "bam: " + e.Kind.String() + ": " + e.msg
}

func newFormatError(kind FormatErrorKind, format string, args ...interface{}) error {
	return &FormatError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// wrapDecodeError converts a *sam.DecodeError raised while expanding a
// record's variable-length data into a *FormatError, so callers reading
// through this package only ever see the documented BAM error taxonomy, not
// a leaf package's own error type. Any other error (including nil) passes
// through unchanged.
func wrapDecodeError(err error) error {
	de, ok := err.(*sam.DecodeError)
	if !ok {
		return err
	}
	switch de.Kind {
	case sam.InvalidNameLength:
		return newFormatError(ShortRead, "%s", de.Message)
	case sam.TruncatedSeqQual:
		return newFormatError(BadSequenceNibble, "%s", de.Message)
	case sam.TruncatedTag, sam.UnterminatedTag, sam.TruncatedTagArray:
		return newFormatError(BadTagSize, "%s", de.Message)
	case sam.UnknownTagType:
		return newFormatError(BadTagType, "%s", de.Message)
	default:
		return newFormatError(ShortRead, "%s", de.Message)
	}
}

// UsageErrorKind enumerates the closed set of caller-misuse failures.
type UsageErrorKind int

const (
	NotOpen UsageErrorKind = iota
	AlreadyOpen
	RandomAccessRequired
	UnknownReference
	InvalidRegion
	ReferenceMismatch
	EmptyInput
)

func (k UsageErrorKind) String() string {
	switch k {
	case NotOpen:
		return "NotOpen"
	case AlreadyOpen:
		return "AlreadyOpen"
	case RandomAccessRequired:
		return "RandomAccessRequired"
	case UnknownReference:
		return "UnknownReference"
	case InvalidRegion:
		return "InvalidRegion"
	case ReferenceMismatch:
		return "ReferenceMismatch"
	case EmptyInput:
		return "EmptyInput"
	default:
		return "Unknown"
	}
}

// UsageError is the structured error type raised for caller misuse.
type UsageError struct {
	Kind UsageErrorKind
	msg  string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "bam: " + e.Kind.String()
	}
	return "bam: " + e.Kind.String() + ": " + e.msg
}

func newUsageError(kind UsageErrorKind, format string, args ...interface{}) error {
	return &UsageError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}
