package multibam

import (
	"github.com/ngsbio/bamtk/biopb"
	"github.com/ngsbio/bamtk/encoding/sam"
)

// recordCoord builds the biopb.Coord key used to order a record under
// ByPosition. biopb.Coord shares sam's convention that RefId == -1 means
// unmapped, and Compare already sorts that last, so no remapping is needed
// here. Seq is left at 0; multibam does not need a secondary tiebreak
// beyond reader index.
func recordCoord(rec *sam.Record) biopb.Coord {
	return biopb.Coord{RefId: rec.RefID, Pos: rec.Pos}
}

// heapItem is one reader's current front-of-stream record, carrying enough
// state to break ties stably by the order readers were opened in.
type heapItem struct {
	rec    *sam.Record
	reader int
	order  SortOrder
}

// mergeHeap is a container/heap.Interface over the readers' current
// records, ordered per each item's recorded SortOrder (every live item
// shares the Merger's current order).
type mergeHeap []*heapItem

func (h mergeHeap) Len() int { return len(h) }

func (h mergeHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	switch a.order {
	case ByReadName:
		if a.rec.Name != b.rec.Name {
			return a.rec.Name < b.rec.Name
		}
	case Unsorted:
		// preserve reader order only; fall through to the reader tie-break.
	default: // ByPosition
		if c := recordCoord(a.rec).Compare(recordCoord(b.rec)); c != 0 {
			return c < 0
		}
	}
	return a.reader < b.reader
}

func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x interface{}) {
	*h = append(*h, x.(*heapItem))
}

func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
