package bam

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngsbio/bamtk/encoding/sam"
)

func TestWriteReadHeaderRoundTrip(t *testing.T) {
	h := &sam.Header{
		Text: "@HD\tVN:1.6\tSO:coordinate\n",
		References: []*sam.Reference{
			sam.NewReference(0, "chr1", 1000),
			sam.NewReference(1, "chr2", 2000),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, h))

	got, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.Text, got.Text)
	require.Len(t, got.References, 2)
	assert.Equal(t, "chr1", got.References[0].Name)
	assert.Equal(t, int32(2000), got.References[1].Len)
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	_, err := ReadHeader(bytes.NewReader([]byte("XXXX\x00\x00\x00\x00")))
	require.Error(t, err)
	assert.Equal(t, BadMagic, err.(*FormatError).Kind)
}
