package bai

import (
	"io"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/bgzf"
	"github.com/ngsbio/bamtk/encoding/sam"
)

// Builder accumulates a BAI index during a single forward pass over a BAM
// file's alignments, synchronized with the caller's BGZF virtual-offset
// position (e.g. a bam.Reader's NextCore loop or a bam.Writer's Tell).
type Builder struct {
	nRef int32
	refs []*Reference

	haveLast  bool
	lastRef   int32
	lastCoord int32

	curRef     int32
	saveBin    uint32
	saveOffset bgzf.Offset
	lastOffset bgzf.Offset
	binOpen    bool

	alignmentsBegin bgzf.Offset
}

// NewBuilder creates a Builder for a file with nRef references, whose first
// alignment begins at alignmentsBegin.
func NewBuilder(nRef int32, alignmentsBegin bgzf.Offset) *Builder {
	refs := make([]*Reference, nRef)
	for i := range refs {
		refs[i] = &Reference{}
	}
	return &Builder{
		nRef:            nRef,
		refs:            refs,
		curRef:          -1,
		alignmentsBegin: alignmentsBegin,
	}
}

// Add incorporates one alignment, whose encoded bytes begin at voffset and
// end (exclusive) at endVOffset, into the index under construction. Records
// must be supplied in file order; a position regression within the same
// reference is a fatal UnsortedInput error.
func (b *Builder) Add(rec *sam.Record, voffset, endVOffset bgzf.Offset) error {
	if rec.RefID >= 0 {
		if b.haveLast && b.lastRef == rec.RefID && rec.Pos < b.lastCoord {
			return newError(UnsortedInput, "position %d precedes previous %d on reference %d", rec.Pos, b.lastCoord, rec.RefID)
		}
		b.haveLast = true
		b.lastRef = rec.RefID
		b.lastCoord = rec.Pos
	}

	if rec.RefID != b.curRef {
		b.flushBin()
		b.curRef = rec.RefID
		b.binOpen = false
	}

	if rec.RefID >= 0 {
		ref := b.refs[rec.RefID]
		if rec.Bin < 4681 {
			end := rec.EndPosition(false, true)
			lo := (rec.Pos >> 14) + 1
			hi := (end - 1) >> 14
			if hi < lo {
				hi = lo
			}
			for i := lo; i <= hi; i++ {
				for int(i) >= len(ref.Intervals) {
					ref.Intervals = append(ref.Intervals, 0)
				}
				if ref.Intervals[i] == 0 {
					ref.Intervals[i] = voffset
				}
			}
		}
		if rec.Flag&sam.FlagUnmapped != 0 {
			if ref.Meta.UnmappedCount == 0 {
				ref.Meta.UnmappedBegin = voffset
			}
			ref.Meta.UnmappedCount++
			ref.Meta.UnmappedEnd = endVOffset
		} else {
			ref.Meta.MappedCount++
		}
	}

	if !b.binOpen {
		b.saveBin = uint32(rec.Bin)
		b.saveOffset = voffset
		b.binOpen = true
	} else if uint32(rec.Bin) != b.saveBin {
		b.flushBin()
		b.saveBin = uint32(rec.Bin)
		b.saveOffset = voffset
	}
	b.lastOffset = endVOffset
	return nil
}

func (b *Builder) flushBin() {
	if !b.binOpen || b.curRef < 0 || int(b.curRef) >= len(b.refs) {
		b.binOpen = false
		return
	}
	ref := b.refs[b.curRef]
	existing, _ := ref.bin(b.saveBin)
	chunks := append(existing, Chunk{Begin: b.saveOffset, End: b.lastOffset})
	ref.setBin(b.saveBin, chunks)
	b.binOpen = false
}

// Finish flushes any pending bin, merges adjacent same-compressed-block
// chunks, and returns the completed Index. The linear-offset vectors are not
// sorted: each stays indexed by 16 kb window, with 0 for windows no
// recorded alignment reached.
func (b *Builder) Finish() *Index {
	b.flushBin()
	for _, ref := range b.refs {
		for _, be := range ref.sortedBins() {
			ref.setBin(be.bin, mergeAdjacentChunks(be.chunks))
		}
	}
	return &Index{References: b.refs}
}

func mergeAdjacentChunks(chunks []Chunk) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}
	out := []Chunk{chunks[0]}
	for _, c := range chunks[1:] {
		last := &out[len(out)-1]
		if last.End.BlockAddress() == c.Begin.BlockAddress() {
			last.End = c.End
		} else {
			out = append(out, c)
		}
	}
	return out
}

// BuildFromReader runs a Builder over every remaining core alignment r
// yields, synchronizing chunk boundaries with r's BGZF virtual-offset
// position before and after each record. r must be positioned at the first
// alignment (e.g. immediately after Open, or after Rewind).
func BuildFromReader(r *bam.Reader) (*Index, error) {
	builder := NewBuilder(int32(len(r.Header().References)), r.Tell())
	for {
		start := r.Tell()
		rec, err := r.NextCore()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		end := r.Tell()
		if err := builder.Add(rec, start, end); err != nil {
			return nil, err
		}
	}
	return builder.Finish(), nil
}
