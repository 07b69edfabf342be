// Package sam defines the in-memory alignment, header, and auxiliary-tag
// types shared by the bam, bai, bti, and multibam packages. SAM text parsing
// of alignment lines is explicitly out of scope; only a header block
// pass-through and an injectable SamTextCodec collaborator are provided.
package sam

// Flag is the BAM alignment FLAG bitfield.
type Flag uint16

const (
	FlagPaired        Flag = 0x1
	FlagProperPair    Flag = 0x2
	FlagUnmapped      Flag = 0x4
	FlagMateUnmapped  Flag = 0x8
	FlagReverse       Flag = 0x10
	FlagMateReverse   Flag = 0x20
	FlagRead1         Flag = 0x40
	FlagRead2         Flag = 0x80
	FlagSecondary     Flag = 0x100
	FlagQCFail        Flag = 0x200
	FlagDuplicate     Flag = 0x400
	FlagSupplementary Flag = 0x800
)

// UnmappedRefID is the wire ref_id value for an alignment with no reference.
const UnmappedRefID = int32(-1)

// Reference describes one entry of the BAM reference dictionary.
type Reference struct {
	id   int32
	Name string
	Len  int32
}

// NewReference constructs a Reference with the given wire id, name, and
// length.
func NewReference(id int32, name string, length int32) *Reference {
	return &Reference{id: id, Name: name, Len: length}
}

// ID returns the reference's index into the file's reference vector; this is
// the wire ref_id used by alignment records.
func (r *Reference) ID() int32 {
	if r == nil {
		return UnmappedRefID
	}
	return r.id
}

func (r *Reference) String() string {
	if r == nil {
		return "*"
	}
	return r.Name
}

// CigarOp is one CIGAR operation: a run length over an operator from
// "MIDNSHP=X".
type CigarOp struct {
	Op  byte
	Len int
}

// consumesReference reports whether op advances a reference-coordinate
// cursor (used by end-position and aligned-bases computation).
func consumesReference(op byte) bool {
	switch op {
	case 'M', 'D', 'N', '=', 'X':
		return true
	default:
		return false
	}
}

// consumesQuery reports whether op advances a read-sequence cursor.
func consumesQuery(op byte) bool {
	switch op {
	case 'M', 'I', 'S', '=', 'X':
		return true
	default:
		return false
	}
}
