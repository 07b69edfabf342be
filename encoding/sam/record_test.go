package sam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordComputesBin(t *testing.T) {
	r := NewRecord("r1", 0, 100, 60, 0, []CigarOp{{Op: 'M', Len: 50}}, -1, -1, 0, "ACGT", "IIII")
	assert.Equal(t, uint16(RegionToBin(100, 150)), r.Bin)
}

func TestNewRecordUnmappedUsesReservedBin(t *testing.T) {
	r := NewRecord("r1", UnmappedRefID, -1, 0, FlagUnmapped, nil, -1, -1, 0, "N", "!")
	assert.Equal(t, uint16(4680), r.Bin)
}

func TestEndPositionOpenVsClosed(t *testing.T) {
	r := NewRecord("r1", 0, 100, 60, 0, []CigarOp{{Op: 'M', Len: 10}}, -1, -1, 0, "", "")
	assert.Equal(t, int32(110), r.EndPosition(false, true))
	assert.Equal(t, int32(109), r.EndPosition(false, false))
}

func TestEndPositionIgnoresSoftClipAndInsertion(t *testing.T) {
	r := NewRecord("r1", 0, 100, 60, 0,
		[]CigarOp{{Op: 'S', Len: 5}, {Op: 'M', Len: 10}, {Op: 'I', Len: 3}, {Op: 'D', Len: 2}}, -1, -1, 0, "", "")
	assert.Equal(t, int32(112), r.EndPosition(false, true))
}

func TestEndPositionUnmappedReturnsPos(t *testing.T) {
	r := NewRecord("r1", UnmappedRefID, -1, 0, FlagUnmapped, nil, -1, -1, 0, "", "")
	assert.Equal(t, int32(-1), r.EndPosition(false, true))
}

func TestExpandNoopOnInMemoryRecord(t *testing.T) {
	r := NewRecord("r1", 0, 0, 60, 0, nil, -1, -1, 0, "ACGT", "IIII")
	require.NoError(t, r.Expand())
	assert.False(t, r.IsCoreOnly())
	assert.Equal(t, "ACGT", r.Seq)
}

func TestAttachRawThenExpandMaterializesFields(t *testing.T) {
	name := append([]byte("r1"), 0)
	packedSeq := PackSeq("ACGT")
	packedQual := PackQual("IIII")
	raw := append(append(append([]byte{}, name...), packedSeq...), packedQual...)

	r := &Record{RefID: 0, Pos: 0, LSeq: 4}
	r.AttachRaw(raw, len(name))
	require.True(t, r.IsCoreOnly())
	require.NoError(t, r.Expand())
	assert.False(t, r.IsCoreOnly())
	assert.Equal(t, "r1", r.Name)
	assert.Equal(t, "ACGT", r.Seq)
	assert.Equal(t, "IIII", r.Qual)
}

func TestAttachRawRejectsInvalidNameLen(t *testing.T) {
	r := &Record{}
	r.AttachRaw([]byte{1, 2, 3}, 0)
	err := r.Expand()
	require.Error(t, err)
	assert.Equal(t, InvalidNameLength, err.(*DecodeError).Kind)
}

func TestAttachRawRejectsTruncatedSeqQual(t *testing.T) {
	r := &Record{LSeq: 4}
	r.AttachRaw([]byte("r1\x00"), 3)
	err := r.Expand()
	require.Error(t, err)
	assert.Equal(t, TruncatedSeqQual, err.(*DecodeError).Kind)
}

func TestEqualIgnoresUnexportedCachingState(t *testing.T) {
	a := NewRecord("r1", 0, 10, 60, 0, []CigarOp{{Op: 'M', Len: 4}}, -1, -1, 0, "ACGT", "IIII")
	b := NewRecord("r1", 0, 10, 60, 0, []CigarOp{{Op: 'M', Len: 4}}, -1, -1, 0, "ACGT", "IIII")
	assert.True(t, a.Equal(b))

	c := NewRecord("r1", 0, 11, 60, 0, []CigarOp{{Op: 'M', Len: 4}}, -1, -1, 0, "ACGT", "IIII")
	assert.False(t, a.Equal(c))
}

func TestAlignedBasesExpansionRules(t *testing.T) {
	cigar := []CigarOp{{Op: 'S', Len: 1}, {Op: 'M', Len: 2}, {Op: 'D', Len: 1}, {Op: 'I', Len: 1}, {Op: 'H', Len: 1}}
	r := NewRecord("r1", 0, 0, 60, 0, cigar, -1, -1, 0, "TACG", "IIII")
	assert.Equal(t, "AC-G", r.AlignedBases())
}
