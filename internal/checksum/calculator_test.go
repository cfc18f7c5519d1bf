package checksum

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SHA-256 of the empty input, a well-known constant.
const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestCalculate_Empty(t *testing.T) {
	c := New()
	assert.Equal(t, emptySHA256, c.Calculate(nil))
	assert.Equal(t, emptySHA256, c.Calculate([]byte{}))
}

func TestCalculate_KnownVector(t *testing.T) {
	c := New()
	// sha256("abc")
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		c.Calculate([]byte("abc")))
}

func TestCalculateReader_MatchesCalculate(t *testing.T) {
	c := New()
	content := bytes.Repeat([]byte{0x1d, 0xa7}, 4096) // binary, IDAT-like

	fromReader, err := c.CalculateReader(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, c.Calculate(content), fromReader)
}

func TestTee_StreamingDigest(t *testing.T) {
	c := New()
	h := c.Tee()

	content := "chunked content"
	for _, part := range []string{"chunked", " ", "content"} {
		_, err := h.Write([]byte(part))
		require.NoError(t, err)
	}

	assert.Equal(t, c.Calculate([]byte(content)), c.Encode(h))
}

func TestCalculateReader_PropagatesReadError(t *testing.T) {
	c := New()
	_, err := c.CalculateReader(failingReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}
