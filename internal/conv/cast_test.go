//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint16(t *testing.T) {
	t.Run("valid max", func(t *testing.T) {
		got, err := IntToUint16(math.MaxUint16)
		assert.NoError(t, err)
		assert.Equal(t, uint16(math.MaxUint16), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUint16(-1)
		assert.Error(t, err)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToUint16(math.MaxUint16 + 1)
		assert.Error(t, err)
	})
}

func TestIntToUint32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToUint32(0)
		assert.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("valid positive", func(t *testing.T) {
		got, err := IntToUint32(123)
		assert.NoError(t, err)
		assert.Equal(t, uint32(123), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUint32(-1)
		assert.Error(t, err)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToUint32(math.MaxUint32 + 1)
		assert.Error(t, err)
	})
}

func TestUint32ToInt(t *testing.T) {
	got, err := Uint32ToInt(math.MaxUint32)
	assert.NoError(t, err)
	assert.Equal(t, math.MaxUint32, got)
}
