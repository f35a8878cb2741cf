package xxhash32

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated for length")
	a := Sum(data, 0x02DEBC47)
	b := Sum(data, 0x02DEBC47)
	assert.Equal(t, a, b)
}

func TestSeedChangesDigest(t *testing.T) {
	data := []byte("payload bytes for a storage bin")
	assert.NotEqual(t, Sum(data, 1), Sum(data, 2))
}

func TestSingleByteFlipChangesDigest(t *testing.T) {
	data := []byte("0123456789abcdef0123456789abcdef")
	orig := Sum(data, 0x02DEBC47)
	flipped := append([]byte(nil), data...)
	flipped[10] ^= 0xFF
	assert.NotEqual(t, orig, Sum(flipped, 0x02DEBC47))
}

func TestStreamingMatchesOneShot(t *testing.T) {
	data := make([]byte, 237)
	for i := range data {
		data[i] = byte(i * 31)
	}
	want := Sum(data, 99)

	for _, chunk := range []int{1, 3, 4, 7, 16, 32} {
		d := New(99)
		for off := 0; off < len(data); off += chunk {
			end := off + chunk
			if end > len(data) {
				end = len(data)
			}
			_, _ = d.Write(data[off:end])
		}
		assert.Equal(t, want, d.Sum32(), "chunk size %d", chunk)
	}
}

func TestEmptyInput(t *testing.T) {
	a := Sum(nil, 7)
	b := Sum([]byte{}, 7)
	assert.Equal(t, a, b)
}
