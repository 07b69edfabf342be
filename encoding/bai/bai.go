// Package bai implements the ".bai" linear+binning index: the published
// SAM/BAM index format, built by a single pass over a BAM file synchronized
// with the writer's BGZF virtual-offset position, and consulted by a Reader
// to seek directly to the first candidate chunk for a region query.
package bai

import (
	"github.com/biogo/store/llrb"
	"github.com/pkg/errors"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/bgzf"
)

// metaBin is the reserved bin number holding per-reference mapped/unmapped
// metadata rather than a genomic interval.
const metaBin = 37450

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
	return "bai: " + e.Kind.String() + ": " + e.msg
}

func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error()}
}

// Chunk is a half-open range of virtual offsets covering a bin's records.
type Chunk struct {
	Begin, End bgzf.Offset
}

// binEntry is one bin's chunk list, stored in ascending bin-number order in
// an llrb.Tree so re-serialization is deterministic (required for
// byte-identical build/write/load round trips).
type binEntry struct {
	bin    uint32
	chunks []Chunk
}

func (k binEntry) Compare(o llrb.Comparable) int {
	return int(k.bin) - int(o.(binEntry).bin)
}

// Metadata is the per-reference mapped/unmapped summary stored in the
// reserved metadata pseudo-bin. UnmappedBegin is the start virtual offset of
// the first unmapped-flagged record placed against this reference and
// UnmappedEnd the end virtual offset of the last one; they are zero-valued
// (and meaningless) when UnmappedCount is 0.
type Metadata struct {
	UnmappedBegin, UnmappedEnd bgzf.Offset
	MappedCount, UnmappedCount uint64
}

// Reference holds one reference's bin map, linear index, and metadata.
type Reference struct {
	bins      llrb.Tree
	Intervals []bgzf.Offset
	Meta      Metadata
}

func (r *Reference) bin(id uint32) ([]Chunk, bool) {
	v := r.bins.Get(binEntry{bin: id})
	if v == nil {
		return nil, false
	}
	return v.(binEntry).chunks, true
}

func (r *Reference) setBin(id uint32, chunks []Chunk) {
	r.bins.Insert(binEntry{bin: id, chunks: chunks})
}

// sortedBins returns every bin in ascending bin-number order.
func (r *Reference) sortedBins() []binEntry {
	var out []binEntry
	r.bins.Do(func(c llrb.Comparable) bool {
		out = append(out, c.(binEntry))
		return false
	})
	return out
}

// Index is an in-memory BAI index over a BAM file's references.
type Index struct {
	References []*Reference
	cacheMode  bam.IndexCacheMode
	probe      AlignmentProbe
}

// SetCacheMode implements bam.Index. The in-memory representation here
// always holds the full index resident; the mode is recorded for API
// compatibility only, and neither ReadIndex nor Jump reads it.
func (idx *Index) SetCacheMode(mode bam.IndexCacheMode) { idx.cacheMode = mode }

// HasAlignments implements bam.Index.
func (idx *Index) HasAlignments(ref int32) bool {
	if ref < 0 || int(ref) >= len(idx.References) {
		return false
	}
	r := idx.References[ref]
	return len(r.sortedBins()) > 0 || r.Meta.MappedCount > 0
}
