package sam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTagGetIntRoundTrip(t *testing.T) {
	a := NewAuxFields(nil)
	require.NoError(t, a.AddTag("NM", 'i', int64(3)))
	v, ok := a.GetInt("NM")
	assert.True(t, ok)
	assert.Equal(t, int64(3), v)
}

func TestEditTagReplacesExistingValue(t *testing.T) {
	a := NewAuxFields(nil)
	require.NoError(t, a.AddTag("AS", 'i', int64(10)))
	require.NoError(t, a.EditTag("AS", 'i', int64(20)))
	v, ok := a.GetInt("AS")
	assert.True(t, ok)
	assert.Equal(t, int64(20), v)
}

func TestRemoveTagReportsAbsence(t *testing.T) {
	a := NewAuxFields(nil)
	require.NoError(t, a.AddTag("XX", 'Z', "hi"))
	assert.True(t, a.RemoveTag("XX"))
	assert.False(t, a.RemoveTag("XX"))
}

func TestScanRejectsTruncatedTagEntry(t *testing.T) {
	a := NewAuxFields([]byte{'N', 'M'}) // missing type code
	_, err := a.scan()
	require.Error(t, err)
	assert.Equal(t, TruncatedTag, err.(*DecodeError).Kind)
}

func TestValueLenRejectsUnknownTypeCode(t *testing.T) {
	_, err := valueLen([]byte{0}, 0, '?')
	require.Error(t, err)
	assert.Equal(t, UnknownTagType, err.(*DecodeError).Kind)
}

func TestValueLenRejectsUnterminatedStringTag(t *testing.T) {
	_, err := valueLen([]byte("no-nul"), 0, 'Z')
	require.Error(t, err)
	assert.Equal(t, UnterminatedTag, err.(*DecodeError).Kind)
}

func TestValueLenRejectsTruncatedBArray(t *testing.T) {
	// 'B' header (subtype + 4-byte count) present but array body missing.
	raw := []byte{'i', 2, 0, 0, 0}
	_, err := valueLen(raw, 0, 'B')
	require.Error(t, err)
	assert.Equal(t, TruncatedTagArray, err.(*DecodeError).Kind)
}

func TestGetArrayRoundTrip(t *testing.T) {
	a := NewAuxFields(nil)
	av := ArrayValue{SubType: 'i', Ints: []int64{1, 2, 3}}
	require.NoError(t, a.AddTag("XA", 'B', av))
	got, ok := a.GetArray("XA")
	assert.True(t, ok)
	assert.Equal(t, av.Ints, got.Ints)
}
