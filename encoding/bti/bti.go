// Package bti implements an uncompressed, block-sampled positional index:
// a lighter-weight alternative to the binning .bai index that trades
// exact chunk coverage for a single flat per-reference entry list, sampled
// every fixed number of records rather than per genomic bin.
package bti

import (
	"github.com/pkg/errors"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/bgzf"
)

// CurrentVersion is the only version this package writes and the minimum
// version it accepts on read.
const CurrentVersion = 3

// DefaultBlockSize is the number of records between sampled entries when a
// Builder is not given an explicit size.
const DefaultBlockSize = 1000

// ErrorKind enumerates the closed set of index failures.
type ErrorKind int

const (
	BadMagic ErrorKind = iota
	StaleVersion
	UnsortedInput
	Missing
	Corrupt
)

func (k ErrorKind) String() string {
	switch k {
	case BadMagic:
		return "BadMagic"
	case StaleVersion:
		return "StaleVersion"
	case UnsortedInput:
		return "UnsortedInput"
	case Missing:
		return "Missing"
	default:
		return "Corrupt"
	}
}

// Error is the structured error type this package raises.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string {
	return "bti: " + e.Kind.String() + ": " + e.msg
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error()}
}

// Entry is one sampled record boundary: the highest end position seen among
// the block of records starting at StartVOffset, and that block's first
// record's start position.
type Entry struct {
	MaxEndPos     int32
	StartVOffset  bgzf.Offset
	StartPos      int32
}

// Reference holds one reference's sampled entries, in ascending
// StartVOffset order.
type Reference struct {
	Entries []Entry
}

// Index is an in-memory block-sampled index over a BAM file's references.
type Index struct {
	References []*Reference
	BlockSize  uint32
	cacheMode  bam.IndexCacheMode
	probe      AlignmentProbe
}

// SetCacheMode implements bam.Index. The flat entry list is cheap enough
// that this package always keeps it resident; the mode is recorded for API
// compatibility.
func (idx *Index) SetCacheMode(mode bam.IndexCacheMode) { idx.cacheMode = mode }

// HasAlignments implements bam.Index.
func (idx *Index) HasAlignments(ref int32) bool {
	if ref < 0 || int(ref) >= len(idx.References) {
		return false
	}
	return len(idx.References[ref].Entries) > 0
}
