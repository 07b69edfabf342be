package bti

import (
	"io"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/bgzf"
	"github.com/ngsbio/bamtk/encoding/sam"
)

// Builder accumulates a block-sampled index during a single forward pass
// over a BAM file's alignments, emitting one Entry every BlockSize records
// or whenever the reference changes, whichever comes first.
type Builder struct {
	blockSize uint32
	refs      []*Reference

	haveLast  bool
	lastRef   int32
	lastCoord int32

	curRef       int32
	countInBlock uint32
	blockStart   bgzf.Offset
	blockStartPos int32
	blockMaxEnd  int32
	haveBlock    bool
}

// NewBuilder creates a Builder for a file with nRef references, sampling
// every blockSize records. A blockSize of 0 uses DefaultBlockSize.
func NewBuilder(nRef int32, blockSize uint32) *Builder {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	refs := make([]*Reference, nRef)
	for i := range refs {
		refs[i] = &Reference{}
	}
	return &Builder{blockSize: blockSize, refs: refs, curRef: -1}
}

// Add incorporates one alignment, whose encoded bytes begin at voffset,
// into the index under construction. Records must be supplied in file
// order; a position regression within the same reference is a fatal
// UnsortedInput error. Unmapped records (RefID < 0) are not indexed.
func (b *Builder) Add(rec *sam.Record, voffset bgzf.Offset) error {
	if rec.RefID < 0 {
		return nil
	}
	if b.haveLast && b.lastRef == rec.RefID && rec.Pos < b.lastCoord {
		return newError(UnsortedInput, "position %d precedes previous %d on reference %d", rec.Pos, b.lastCoord, rec.RefID)
	}
	b.haveLast = true
	b.lastRef = rec.RefID
	b.lastCoord = rec.Pos

	if rec.RefID != b.curRef {
		b.flushBlock()
		b.curRef = rec.RefID
	}

	end := rec.EndPosition(false, true)
	if !b.haveBlock {
		b.blockStart = voffset
		b.blockStartPos = rec.Pos
		b.blockMaxEnd = end
		b.haveBlock = true
		b.countInBlock = 1
		return nil
	}
	if end > b.blockMaxEnd {
		b.blockMaxEnd = end
	}
	b.countInBlock++
	if b.countInBlock >= b.blockSize {
		b.flushBlock()
	}
	return nil
}

func (b *Builder) flushBlock() {
	if !b.haveBlock || b.curRef < 0 || int(b.curRef) >= len(b.refs) {
		b.haveBlock = false
		b.countInBlock = 0
		return
	}
	ref := b.refs[b.curRef]
	ref.Entries = append(ref.Entries, Entry{
		MaxEndPos:    b.blockMaxEnd,
		StartVOffset: b.blockStart,
		StartPos:     b.blockStartPos,
	})
	b.haveBlock = false
	b.countInBlock = 0
}

// Finish flushes any pending block and returns the completed Index.
func (b *Builder) Finish() *Index {
	b.flushBlock()
	return &Index{References: b.refs, BlockSize: b.blockSize}
}

// BuildFromReader runs a Builder over every remaining core alignment r
// yields, sampling voffset via r.Tell before each record. r must be
// positioned at the first alignment.
func BuildFromReader(r *bam.Reader, blockSize uint32) (*Index, error) {
	builder := NewBuilder(int32(len(r.Header().References)), blockSize)
	for {
		start := r.Tell()
		rec, err := r.NextCore()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := builder.Add(rec, start); err != nil {
			return nil, err
		}
	}
	return builder.Finish(), nil
}
