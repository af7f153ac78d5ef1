package rstbrand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_IsReproducibleForTheSameSeed(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.RandUint32(32), b.RandUint32(32))
	}
}

func TestSource_RandBitIsZeroOrOne(t *testing.T) {
	s := New(1)
	for i := 0; i < 50; i++ {
		bit := s.RandBit()
		assert.True(t, bit == 0 || bit == 1)
	}
}

func TestSource_RandIntStaysInRange(t *testing.T) {
	s := New(7)
	for i := 0; i < 50; i++ {
		v := s.RandInt(10)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
	}
}

func TestSource_RandUint32RespectsWidth(t *testing.T) {
	s := New(99)
	for i := 0; i < 50; i++ {
		v := s.RandUint32(4)
		assert.Less(t, v, uint32(16))
	}
}

func TestSource_RandUint32ZeroWidthIsAlwaysZero(t *testing.T) {
	s := New(5)
	assert.Equal(t, uint32(0), s.RandUint32(0))
}

func TestSource_RandUint32WideWidthDoesNotPanic(t *testing.T) {
	s := New(3)
	// Width >= 32 must not panic by overflowing a shift.
	_ = s.RandUint32(32)
	_ = s.RandUint32(40)
}

func TestNewRandom_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		s := NewRandom()
		_ = s.RandBit()
	})
}
