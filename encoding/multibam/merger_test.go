package multibam

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/sam"
)

func multibamTempFile(t *testing.T) (string, func()) {
	f, err := ioutil.TempFile("", "bamtk-multibam-*.bam")
	require.NoError(t, err)
	path := f.Name()
	require.NoError(t, f.Close())
	return path, func() { os.Remove(path) }
}

func writeBam(t *testing.T, path string, header *sam.Header, n int) {
	w, err := bam.Create(path, header)
	require.NoError(t, err)
	for i := int32(0); i < int32(n); i++ {
		rec := sam.NewRecord("r", 0, i*10, 60, 0, []sam.CigarOp{{Op: 'M', Len: 5}}, -1, -1, 0, "ACGTA", "IIIII")
		require.NoError(t, w.Save(rec))
	}
	require.NoError(t, w.Close())
}

func TestOpenExcludesEmptyReaderFromManyInputs(t *testing.T) {
	header := &sam.Header{References: []*sam.Reference{sam.NewReference(0, "chr1", 1000)}}

	populated, cleanupPopulated := multibamTempFile(t)
	defer cleanupPopulated()
	writeBam(t, populated, header, 5)

	empty, cleanupEmpty := multibamTempFile(t)
	defer cleanupEmpty()
	writeBam(t, empty, header, 0)

	m, err := Open([]string{populated, empty}, false, true)
	require.NoError(t, err)
	defer m.Close()
	assert.Len(t, m.readers, 1)

	count := 0
	for {
		_, err := m.Next()
		if err != nil {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
}

func TestOpenFailsWhenSoleInputIsEmpty(t *testing.T) {
	header := &sam.Header{References: []*sam.Reference{sam.NewReference(0, "chr1", 1000)}}

	empty, cleanup := multibamTempFile(t)
	defer cleanup()
	writeBam(t, empty, header, 0)

	_, err := Open([]string{empty}, false, true)
	require.Error(t, err)
	assert.Equal(t, bam.EmptyInput, err.(*bam.UsageError).Kind)
}

func TestReferenceFingerprintStableAcrossEquivalentDictionaries(t *testing.T) {
	a := []*sam.Reference{sam.NewReference(0, "chr1", 1000), sam.NewReference(1, "chr2", 2000)}
	b := []*sam.Reference{sam.NewReference(0, "chr1", 1000), sam.NewReference(1, "chr2", 2000)}
	assert.Equal(t, referenceFingerprint(a), referenceFingerprint(b))
}

func TestReferenceFingerprintDiffersOnMismatch(t *testing.T) {
	a := []*sam.Reference{sam.NewReference(0, "chr1", 1000)}
	b := []*sam.Reference{sam.NewReference(0, "chr1", 2000)}
	assert.NotEqual(t, referenceFingerprint(a), referenceFingerprint(b))
}

func TestMergeHeapOrdersByPositionUnmappedLast(t *testing.T) {
	h := &mergeHeap{
		{rec: &sam.Record{RefID: -1, Pos: 0}, reader: 0, order: ByPosition},
		{rec: &sam.Record{RefID: 0, Pos: 500}, reader: 1, order: ByPosition},
		{rec: &sam.Record{RefID: 0, Pos: 100}, reader: 2, order: ByPosition},
	}
	assert.True(t, h.Less(2, 1))  // pos 100 before pos 500
	assert.True(t, h.Less(1, 0))  // mapped before unmapped
	assert.False(t, h.Less(0, 1)) // unmapped never sorts before mapped
}

func TestMergeHeapTieBreaksByReaderIndex(t *testing.T) {
	h := &mergeHeap{
		{rec: &sam.Record{RefID: 0, Pos: 100}, reader: 1, order: ByPosition},
		{rec: &sam.Record{RefID: 0, Pos: 100}, reader: 0, order: ByPosition},
	}
	assert.True(t, h.Less(1, 0))
}

func TestRgIDExtractsTag(t *testing.T) {
	assert.Equal(t, "sample1", rgID("@RG\tID:sample1\tSM:sample1"))
	assert.Equal(t, "", rgID("@RG\tSM:sample1"))
}
