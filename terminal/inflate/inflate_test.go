package inflate

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte, level int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testInputs() map[string][]byte {
	random := make([]byte, 70000)
	rand.New(rand.NewSource(1)).Read(random)
	return map[string][]byte{
		"empty":      {},
		"short":      []byte("hello"),
		"repetitive": []byte(strings.Repeat("abcabcabd", 20000)),
		"random":     random,
		"text":       []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 300)),
	}
}

func TestInflate_RoundTrip(t *testing.T) {
	levels := []int{
		flate.NoCompression,
		flate.HuffmanOnly,
		flate.BestSpeed,
		5,
		flate.BestCompression,
	}
	for name, data := range testInputs() {
		for _, level := range levels {
			compressed := deflate(t, data, level)
			got, err := Inflate(compressed, len(data))
			require.NoError(t, err, "%s at level %d", name, level)
			assert.Equal(t, data, got, "%s at level %d", name, level)
		}
	}
}

func TestInflate_DoubleCompressed(t *testing.T) {
	data := []byte(strings.Repeat("\x01\x00\x00\x00\x10\x00\x00\x00", 4096))
	twice := deflate(t, deflate(t, data, flate.BestCompression), flate.BestCompression)

	once, err := Inflate(twice, 0)
	require.NoError(t, err)
	got, err := Inflate(once, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestInflate_SizeHintIsOnlyAHint(t *testing.T) {
	data := []byte("size hints may be wrong")
	compressed := deflate(t, data, flate.BestCompression)

	got, err := Inflate(compressed, -1)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	got, err = Inflate(compressed, 2)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestInflate_Errors(t *testing.T) {
	_, err := Inflate(nil, 0)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)

	// final block with reserved type 3
	_, err = Inflate([]byte{0x07}, 0)
	assert.ErrorIs(t, err, ErrInvalidBlockType)

	// stored block whose length complement is wrong
	_, err = Inflate([]byte{0x01, 0x05, 0x00, 0x00, 0x00, 'a', 'b', 'c', 'd', 'e'}, 0)
	assert.ErrorIs(t, err, ErrStoredLengthMismatch)

	// stored block shorter than announced
	_, err = Inflate([]byte{0x01, 0x05, 0x00, 0xfa, 0xff, 'a'}, 0)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestInflate_TruncatedStreamReturnsNothing(t *testing.T) {
	data := []byte(strings.Repeat("truncated output is never returned ", 100))
	compressed := deflate(t, data, flate.BestCompression)

	got, err := Inflate(compressed[:len(compressed)/2], len(data))
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestInflate_StoredBlock(t *testing.T) {
	got, err := Inflate([]byte{0x01, 0x03, 0x00, 0xfc, 0xff, 'a', 'b', 'c'}, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}
