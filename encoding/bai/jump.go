package bai

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/bgzf"
	"github.com/ngsbio/bamtk/encoding/sam"
)

// AlignmentProbe decodes the minimal fields Jump needs from the alignment
// at a candidate virtual offset, without requiring this package to import
// the bam Reader (which would create an import cycle, since bam.Index --
// implemented by *Index -- is consulted by the bam Reader itself).
type AlignmentProbe func(off bgzf.Offset) (refID, pos, endPos int32, err error)

// SetProbe installs the callback Jump uses to decode a candidate
// alignment's (ref_id, pos, end_position) at a given virtual offset. A
// Reader wires this to its own BGZF stream + record decoder when binding an
// Index, avoiding a bam<->bai import cycle.
func (idx *Index) SetProbe(probe AlignmentProbe) { idx.probe = probe }

// Jump implements bam.Index and the region-query algorithm: collect
// candidate bins per the R-tree lineage, gather their chunks above the
// linear-index floor, sort candidate chunk starts ascending, then probe each
// in turn. Per the source behavior this is explicitly preserved: once a
// probed alignment is found to overlap or lie past the left bound, the
// search steps one candidate backward before returning -- covering
// alignments that straddle a chunk boundary.
func (idx *Index) Jump(region bam.Region) (bgzf.Offset, bool, error) {
	if region.LeftRef < 0 || int(region.LeftRef) >= len(idx.References) {
		return 0, false, nil
	}
	ref := idx.References[region.LeftRef]

	var minLinear bgzf.Offset
	slot := region.LeftPos >> 14
	if slot >= 0 && int(slot) < len(ref.Intervals) {
		minLinear = ref.Intervals[slot]
	}

	end := region.RightPos + 1
	if !region.RightSpecified || region.RightRef != region.LeftRef {
		end = 1 << 29
	}
	bins := sam.BinsForRange(region.LeftPos, end)

	var candidates []Chunk
	for _, b := range bins {
		chunks, ok := ref.bin(b)
		if !ok {
			continue
		}
		for _, c := range chunks {
			if c.End > minLinear {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return 0, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Begin < candidates[j].Begin })

	if idx.probe == nil {
		return 0, false, errors.New("bai: Jump requires SetProbe to have been called")
	}

	for i, c := range candidates {
		refID, _, endPos, err := idx.probe(c.Begin)
		if err != nil {
			return 0, false, err
		}
		if (refID == region.LeftRef && endPos > region.LeftPos) || refID > region.LeftRef {
			if i > 0 {
				return candidates[i-1].Begin, true, nil
			}
			return c.Begin, true, nil
		}
	}
	return candidates[len(candidates)-1].Begin, true, nil
}
