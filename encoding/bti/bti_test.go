package bti

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

func TestBuilderSamplesEveryBlockSize(t *testing.T) {
	builder := NewBuilder(1, 10)
	for i := int32(0); i < 95; i++ {
		rec := mkRecord(0, i*100, i*100+50)
		require.NoError(t, builder.Add(rec, bgzf.MakeOffset(int64(i)*64, 0)))
	}
	idx := builder.Finish()
	require.Len(t, idx.References[0].Entries, 10) // 9 full blocks + 1 partial
}

func TestBuilderRejectsUnsortedInput(t *testing.T) {
	builder := NewBuilder(1, 1000)
	require.NoError(t, builder.Add(mkRecord(0, 1000, 1100), 0))
	err := builder.Add(mkRecord(0, 500, 600), 64)
	require.Error(t, err)
	assert.Equal(t, UnsortedInput, err.(*Error).Kind)
}

func TestWriteReadIndexRoundTrip(t *testing.T) {
	builder := NewBuilder(1, 20)
	for i := int32(0); i < 100; i++ {
		rec := mkRecord(0, i*100, i*100+50)
		require.NoError(t, builder.Add(rec, bgzf.MakeOffset(int64(i)*64, 0)))
	}
	idx := builder.Finish()

	var buf bytes.Buffer
	require.NoError(t, WriteIndex(&buf, idx))
	got, err := ReadIndex(&buf)
	require.NoError(t, err)
	assert.Equal(t, idx.References[0].Entries, got.References[0].Entries)
	assert.Equal(t, idx.BlockSize, got.BlockSize)
}

func TestReadIndexRejectsStaleVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magic[:])
	require.NoError(t, writeU32(&buf, 2))
	require.NoError(t, writeU32(&buf, DefaultBlockSize))
	require.NoError(t, writeU32(&buf, 0))

	_, err := ReadIndex(&buf)
	require.Error(t, err)
	assert.Equal(t, StaleVersion, err.(*Error).Kind)
}

func TestJumpFindsBlockCoveringLeftBound(t *testing.T) {
	builder := NewBuilder(1, 10)
	for i := int32(0); i < 50; i++ {
		rec := mkRecord(0, i*100, i*100+50)
		require.NoError(t, builder.Add(rec, bgzf.MakeOffset(int64(i)*64, 0)))
	}
	idx := builder.Finish()

	off, ok, err := idx.Jump(bam.NewRegion(0, 2550, 2600))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, off.BlockAddress() <= int64(25*64))
}
