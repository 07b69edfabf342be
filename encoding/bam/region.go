package bam

import "github.com/ngsbio/bamtk/encoding/sam"

// Region is a closed genomic range [ (LeftRef,LeftPos), (RightRef,RightPos) ]
// used by set_region / jump; an alignment starting at RightPos is inside it. RightSpecified distinguishes an unbounded right
// end (read to end of file) from an explicit right bound at (0,0).
type Region struct {
	LeftRef, RightRef   int32
	LeftPos, RightPos   int32
	RightSpecified      bool
}

// NewRegion builds a bounded region over a single reference.
func NewRegion(ref int32, start, end int32) Region {
	return Region{LeftRef: ref, LeftPos: start, RightRef: ref, RightPos: end, RightSpecified: true}
}

// overlapResult classifies a core alignment against a Region during
// sequential region-filtered iteration.
type overlapResult int

const (
	before overlapResult = iota
	within
	after
)

// classify implements the region overlap decision table: compares a decoded
// core alignment against r.
func (r Region) classify(refID, pos int32, endPos int32) overlapResult {
	switch {
	case refID < r.LeftRef:
		return before
	case refID == r.LeftRef:
		if pos >= r.LeftPos {
			if r.RightSpecified && r.LeftRef == r.RightRef && pos > r.RightPos {
				return after
			}
			return within
		}
		if endPos >= r.LeftPos {
			return within
		}
		return before
	default: // refID > r.LeftRef
		if !r.RightSpecified {
			return within
		}
		switch {
		case refID < r.RightRef:
			return within
		case refID > r.RightRef:
			return after
		default:
			if pos <= r.RightPos {
				return within
			}
			return after
		}
	}
}

// Overlaps reports whether r's decoded core fields overlap region.
func Overlaps(r *sam.Record, region Region) bool {
	return region.classify(r.RefID, r.Pos, r.EndPosition(false, true)) == within
}
