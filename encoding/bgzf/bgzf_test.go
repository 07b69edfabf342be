package bgzf

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	for _, length := range []int{0, 1, 100, 65279, 65280, 65281, 500000} {
		input := make([]byte, length)
		n, err := rand.Read(input)
		require.NoError(t, err)
		assert.Equal(t, length, n)

		var buf bytes.Buffer
		w := NewWriter(&buf, 1)
		n, err = w.Write(input)
		require.NoError(t, err)
		assert.Equal(t, length, n)
		require.NoError(t, w.Close())

		r := NewReader(bytes.NewReader(buf.Bytes()))
		got := make([]byte, 0, length)
		chunk := make([]byte, 4096)
		for {
			n, err := r.Read(chunk)
			got = append(got, chunk[:n]...)
			require.NoError(t, err)
			if n == 0 {
				break
			}
		}
		assert.Equal(t, input, got)
	}
}

func TestTellMonotone(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriterSize(&buf, 1, 5)
	require.NoError(t, err)

	_, err = w.Write([]byte("ABCD"))
	require.NoError(t, err)
	assert.Equal(t, Offset(4), w.Tell())

	_, err = w.Write([]byte("E"))
	require.NoError(t, err)
	v1 := w.Tell()
	assert.Equal(t, uint16(0), v1.Within())
	assert.NotEqual(t, int64(0), v1.BlockAddress())

	_, err = w.Write([]byte("F"))
	require.NoError(t, err)
	v2 := w.Tell()
	assert.Equal(t, uint16(1), v2.Within())
	assert.Equal(t, v1.BlockAddress(), v2.BlockAddress())
}

func TestSeekPreservesVirtualOffset(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriterSize(&buf, 1, 8)
	require.NoError(t, err)
	input := []byte("0123456789ABCDEFGHIJ")
	_, err = w.Write(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data := buf.Bytes()

	r1 := NewReader(bytes.NewReader(data))
	chunk := make([]byte, 3)
	_, err = r1.Read(chunk)
	require.NoError(t, err)
	mid := r1.Tell()

	seekable := struct {
		*bytes.Reader
	}{bytes.NewReader(data)}
	r2 := NewReader(seekable)
	require.NoError(t, r2.Seek(mid))

	rest1 := make([]byte, 5)
	n1, err := r1.Read(rest1)
	require.NoError(t, err)
	rest2 := make([]byte, 5)
	n2, err := r2.Read(rest2)
	require.NoError(t, err)
	assert.Equal(t, rest1[:n1], rest2[:n2])
}
