package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Limit exceeded
	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
}

func TestController_Reads(t *testing.T) {
	c := NewController(Config{MaxConcurrentReads: 2})

	require.NoError(t, c.AcquireRead(t.Context()))
	require.NoError(t, c.AcquireRead(t.Context()))

	assert.False(t, c.TryAcquireRead())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireRead(ctx), context.DeadlineExceeded)

	c.ReleaseRead()
	assert.True(t, c.TryAcquireRead())
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1024})

	// The bucket starts full.
	assert.True(t, c.TryAcquireIO(1024))
	assert.False(t, c.TryAcquireIO(1024))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.Error(t, c.AcquireIO(ctx, 512))
}

func TestController_Nil(t *testing.T) {
	var c *Controller

	assert.NoError(t, c.AcquireMemory(1<<40))
	c.ReleaseMemory(1 << 40)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.NoError(t, c.AcquireRead(t.Context()))
	c.ReleaseRead()
	assert.True(t, c.TryAcquireRead())
	assert.NoError(t, c.AcquireIO(t.Context(), 1<<20))
	assert.True(t, c.TryAcquireIO(1<<20))
}
