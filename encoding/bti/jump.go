package bti

import (
	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/bgzf"
)

// AlignmentProbe decodes the minimal fields Jump needs from the alignment at
// a candidate virtual offset. Mirrors bai.AlignmentProbe; kept as a distinct
// type so this package never imports bai (which would create a cycle
// through bam.Index).
type AlignmentProbe func(off bgzf.Offset) (refID, pos, endPos int32, err error)

// SetProbe installs the callback Jump uses to decode candidate alignments.
func (idx *Index) SetProbe(probe AlignmentProbe) { idx.probe = probe }

// Jump implements bam.Index. It scans entries in ascending order (they are
// stored by increasing StartVOffset, which is also increasing StartPos
// within a reference) and returns the virtual offset of the last entry
// whose block could contain an alignment overlapping the region's left
// bound: the latest entry whose StartPos is at or before region.LeftPos, or
// whose MaxEndPos still reaches region.LeftPos despite starting earlier.
func (idx *Index) Jump(region bam.Region) (bgzf.Offset, bool, error) {
	if region.LeftRef < 0 || int(region.LeftRef) >= len(idx.References) {
		return 0, false, nil
	}
	entries := idx.References[region.LeftRef].Entries
	if len(entries) == 0 {
		return 0, false, nil
	}

	best := -1
	for i, e := range entries {
		if e.StartPos > region.LeftPos {
			break
		}
		best = i
	}
	if best < 0 {
		// Every block starts after the query; the first block might still
		// hold alignments overlapping it via an earlier unmerged chunk, so
		// start from the very first entry.
		return entries[0].StartVOffset, true, nil
	}
	// Walk backward while an earlier block's maximum end position still
	// reaches the query's left bound -- a long alignment begun in an
	// earlier block can still overlap region.
	for best > 0 && entries[best-1].MaxEndPos >= region.LeftPos {
		best--
	}
	return entries[best].StartVOffset, true, nil
}
