package bam

import (
	"io"
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngsbio/bamtk/encoding/sam"
)

func tempBamPath(t *testing.T) (string, func()) {
	f, err := ioutil.TempFile("", "bamtk-*.bam")
	require.NoError(t, err)
	path := f.Name()
	require.NoError(t, f.Close())
	return path, func() { os.Remove(path) }
}

func TestWriterReaderFileRoundTrip(t *testing.T) {
	path, cleanup := tempBamPath(t)
	defer cleanup()
	header := &sam.Header{
		Text:       "@HD\tVN:1.6\n",
		References: []*sam.Reference{sam.NewReference(0, "chr1", 1000)},
	}

	w, err := Create(path, header)
	require.NoError(t, err)
	want := make([]*sam.Record, 0, 20)
	for i := int32(0); i < 20; i++ {
		rec := sam.NewRecord("r", 0, i*10, 60, 0, []sam.CigarOp{{Op: 'M', Len: 5}}, -1, -1, 0, "ACGTA", "IIIII")
		require.NoError(t, w.Save(rec))
		want = append(want, rec)
	}
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, header.Text, r.Header().Text)
	for i := 0; ; i++ {
		rec, err := r.Next()
		if err == io.EOF {
			assert.Equal(t, len(want), i)
			break
		}
		require.NoError(t, err)
		assert.True(t, want[i].Equal(rec))
	}
}

func TestRewindReplaysAlignments(t *testing.T) {
	path, cleanup := tempBamPath(t)
	defer cleanup()
	header := &sam.Header{References: []*sam.Reference{sam.NewReference(0, "chr1", 1000)}}

	w, err := Create(path, header)
	require.NoError(t, err)
	require.NoError(t, w.Save(sam.NewRecord("a", 0, 0, 60, 0, nil, -1, -1, 0, "A", "I")))
	require.NoError(t, w.Save(sam.NewRecord("b", 0, 10, 60, 0, nil, -1, -1, 0, "A", "I")))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int32(0), first.Pos)

	require.NoError(t, r.Rewind())
	again, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int32(0), again.Pos)
}

func TestSetRegionWithoutBoundIndexFails(t *testing.T) {
	path, cleanup := tempBamPath(t)
	defer cleanup()
	header := &sam.Header{References: []*sam.Reference{sam.NewReference(0, "chr1", 1000)}}
	w, err := Create(path, header)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	err = r.SetRegion(NewRegion(0, 0, 100))
	require.Error(t, err)
	assert.Equal(t, RandomAccessRequired, err.(*UsageError).Kind)
}
