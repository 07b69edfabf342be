package bai

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/bgzf"
	"github.com/ngsbio/bamtk/encoding/sam"
)

func mkRecord(refID, pos, endPos int32) *sam.Record {
	return sam.NewRecord("r", refID, pos, 60, 0, []sam.CigarOp{{Op: 'M', Len: int(endPos - pos)}}, -1, -1, 0, "A", "I")
}

func TestBinsForRangeSeedScenario(t *testing.T) {
	got := sam.BinsForRange(0, 16384)
	want := []uint32{0, 1, 9, 73, 585, 4681}
	assert.Equal(t, want, got)
}

func TestBuilderProducesQueryableIndex(t *testing.T) {
	builder := NewBuilder(1, 0)
	voffset := bgzf.MakeOffset(0, 0)
	for i := int32(0); i < 100; i++ {
		rec := mkRecord(0, i*1000, i*1000+500)
		end := bgzf.MakeOffset(int64(i+1)*64, 0)
		require.NoError(t, builder.Add(rec, voffset, end))
		voffset = end
	}
	idx := builder.Finish()
	require.True(t, idx.HasAlignments(0))
	assert.False(t, idx.HasAlignments(1))
}

func TestBuilderRejectsUnsortedInput(t *testing.T) {
	builder := NewBuilder(1, 0)
	require.NoError(t, builder.Add(mkRecord(0, 1000, 1100), 0, 64))
	err := builder.Add(mkRecord(0, 500, 600), 64, 128)
	require.Error(t, err)
	assert.Equal(t, UnsortedInput, err.(*Error).Kind)
}

func TestBuilderPopulatesUnmappedMetadataSpan(t *testing.T) {
	builder := NewBuilder(1, 0)
	voffset := bgzf.Offset(0)

	mapped := mkRecord(0, 0, 100)
	end := bgzf.MakeOffset(64, 0)
	require.NoError(t, builder.Add(mapped, voffset, end))
	voffset = end

	unmapped1 := sam.NewRecord("u1", 0, 100, 0, sam.FlagUnmapped, nil, -1, -1, 0, "A", "I")
	end = bgzf.MakeOffset(128, 0)
	require.NoError(t, builder.Add(unmapped1, voffset, end))
	voffset = end

	unmapped2 := sam.NewRecord("u2", 0, 100, 0, sam.FlagUnmapped, nil, -1, -1, 0, "A", "I")
	end = bgzf.MakeOffset(192, 0)
	require.NoError(t, builder.Add(unmapped2, voffset, end))

	idx := builder.Finish()
	meta := idx.References[0].Meta
	assert.Equal(t, uint64(1), meta.MappedCount)
	assert.Equal(t, uint64(2), meta.UnmappedCount)
	assert.Equal(t, bgzf.MakeOffset(64, 0), meta.UnmappedBegin)
	assert.Equal(t, bgzf.MakeOffset(192, 0), meta.UnmappedEnd)
}

func TestWriteReadIndexRoundTrip(t *testing.T) {
	builder := NewBuilder(2, 0)
	voffset := bgzf.Offset(0)
	for i := int32(0); i < 50; i++ {
		rec := mkRecord(0, i*1000, i*1000+200)
		end := bgzf.MakeOffset(int64(i+1)*64, 0)
		require.NoError(t, builder.Add(rec, voffset, end))
		voffset = end
	}
	idx := builder.Finish()

	var buf bytes.Buffer
	require.NoError(t, WriteIndex(&buf, idx))

	got, err := ReadIndex(&buf)
	require.NoError(t, err)
	require.Len(t, got.References, 2)
	assert.Equal(t, idx.References[0].sortedBins(), got.References[0].sortedBins())
	assert.Equal(t, idx.References[0].Intervals, got.References[0].Intervals)
}

func TestReadIndexRejectsBadMagic(t *testing.T) {
	_, err := ReadIndex(bytes.NewReader([]byte("XXXX\x00\x00\x00\x00")))
	require.Error(t, err)
	assert.Equal(t, BadMagic, err.(*Error).Kind)
}

func TestJumpIdempotentAcrossRepeatedCalls(t *testing.T) {
	builder := NewBuilder(1, 0)
	voffset := bgzf.Offset(0)
	for i := int32(0); i < 200; i++ {
		rec := mkRecord(0, i*100, i*100+50)
		end := bgzf.MakeOffset(int64(i+1)*64, 0)
		require.NoError(t, builder.Add(rec, voffset, end))
		voffset = end
	}
	idx := builder.Finish()
	idx.SetProbe(func(off bgzf.Offset) (int32, int32, int32, error) {
		block := off.BlockAddress() / 64
		pos := int32(block) * 100
		return 0, pos, pos + 50, nil
	})

	region := bam.NewRegion(0, 5000, 5100)
	off1, ok1, err1 := idx.Jump(region)
	require.NoError(t, err1)
	off2, ok2, err2 := idx.Jump(region)
	require.NoError(t, err2)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, off1, off2)
}
