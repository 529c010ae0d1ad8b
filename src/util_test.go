package redbone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestBits(t *testing.T) {
	assert.Equal(t, uint16(0xB), bits(0xAB, 0, 4))
	assert.Equal(t, uint16(0xA), bits(0xAB, 4, 4))
	assert.Equal(t, uint16(0x1), bits(0x8000, 15, 1))
	assert.Equal(t, uint16(0x0), bits(0x7FFF, 15, 1))
	assert.Equal(t, uint16(0xABCD), bits(0xABCD, 0, 16))
}

func TestBitsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var word = rapid.Uint16().Draw(t, "word")

		assert.Equal(t, word, bits(word, 0, 16))

		// Reassembling the nybbles recovers the word.
		var reassembled = bits(word, 12, 4)<<12 | bits(word, 8, 4)<<8 |
			bits(word, 4, 4)<<4 | bits(word, 0, 4)
		assert.Equal(t, word, reassembled)
	})
}

func TestBitsWide(t *testing.T) {
	// Fields spanning the seam between two blocks.
	assert.Equal(t, uint32(0x3), bitsWide(0x0001, 0x8000, 15, 2))
	assert.Equal(t, uint32(0xAB), bitsWide(0xAB00, 0x0000, 24, 8))
	assert.Equal(t, uint32(0xEF), bitsWide(0x0000, 0x00EF, 0, 8))
}

func TestRunningSum(t *testing.T) {
	var s = newRunningSum(3)
	assert.Equal(t, 0, s.sum())

	s.push(1)
	s.push(1)
	assert.Equal(t, 2, s.sum())

	// A fourth push evicts the first value.
	s.push(0)
	s.push(0)
	assert.Equal(t, 1, s.sum())

	s.clear()
	assert.Equal(t, 0, s.sum())
}

func TestRunningAverage(t *testing.T) {
	var a = newRunningAverage(4)
	a.push(100)
	assert.InDelta(t, 25.0, a.average(), 0.001)

	a.push(100)
	a.push(100)
	a.push(100)
	assert.InDelta(t, 100.0, a.average(), 0.001)

	// Values falling out of the window stop contributing.
	a.push(0)
	assert.InDelta(t, 75.0, a.average(), 0.001)
}

func TestHexString(t *testing.T) {
	assert.Equal(t, "6201", hexString(0x6201, 4))
	assert.Equal(t, "00FF", hexString(0xFF, 4))
	assert.Equal(t, "09", hexString(9, 2))
	assert.Equal(t, "0x6201", prefixedHexString(0x6201, 4))
}

func TestHoursMinutesString(t *testing.T) {
	assert.Equal(t, "09:05", hoursMinutesString(9, 5))
	assert.Equal(t, "23:59", hoursMinutesString(23, 59))
}

func TestRtrim(t *testing.T) {
	assert.Equal(t, "abc", rtrim("abc   "))
	assert.Equal(t, "  abc", rtrim("  abc"))
	assert.Equal(t, "", rtrim("   "))
}

func TestUcfirst(t *testing.T) {
	assert.Equal(t, "Queuing traffic", ucfirst("queuing traffic"))
	assert.Equal(t, "X", ucfirst("x"))
	assert.Equal(t, "", ucfirst(""))
}

func TestJoinUints(t *testing.T) {
	assert.Equal(t, "1, 22, 333", joinUints([]uint16{1, 22, 333}, ", "))
	assert.Equal(t, "", joinUints(nil, ", "))
}
