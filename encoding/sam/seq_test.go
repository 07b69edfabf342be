package sam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackSeqRoundTrip(t *testing.T) {
	for _, bases := range []string{"", "A", "ACGT", "ACGTN", "=ACMGRSVTWYHKDBN"} {
		packed := PackSeq(bases)
		assert.Equal(t, (len(bases)+1)/2, len(packed))
		assert.Equal(t, bases, UnpackSeq(packed, len(bases)))
	}
}

func TestPackSeqUnknownBaseMapsToN(t *testing.T) {
	packed := PackSeq("Q")
	assert.Equal(t, "N", UnpackSeq(packed, 1))
}

func TestPackUnpackQualRoundTrip(t *testing.T) {
	qual := "IIJJ!~"
	assert.Equal(t, qual, UnpackQual(PackQual(qual)))
}

func TestUnpackQualDoesNotSpecialCaseSentinel(t *testing.T) {
	// 0xFF is the documented "missing quality" sentinel; it is shifted like
	// any other byte rather than passed through unchanged, wrapping to 0x20.
	got := UnpackQual([]byte{0xFF})
	assert.Equal(t, byte(0xFF+33-256), got[0])
}

func TestExpandAlignedBasesAllOps(t *testing.T) {
	cigar := []CigarOp{
		{Op: 'M', Len: 2},
		{Op: 'I', Len: 1},
		{Op: 'S', Len: 1},
		{Op: 'D', Len: 2},
		{Op: 'N', Len: 1},
		{Op: 'P', Len: 1},
		{Op: 'H', Len: 5},
	}
	got := ExpandAlignedBases("ACGTX", cigar)
	assert.Equal(t, "ACG--N*", got)
}
