// Package biopb defines small coordinate value types shared by the indexing
// and merging packages: a sortable (reference, position) pair with a
// tiebreak field for callers that need a strict total order beyond what the
// BAM wire format itself encodes.
package biopb

// Coord is a comparable (reference, position) pair. Seq is an auxiliary
// tiebreak a caller may use to keep an otherwise-equal pair in a stable
// relative order (e.g. original read index within a pair).
type Coord struct {
	RefId int32
	Pos   int32
	Seq   int32
}

// CoordRange is a half-open range [Start, Limit) over Coord's total order.
type CoordRange struct {
	Start, Limit Coord
}
