package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for decoded index data.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentReads is the maximum number of blob reads in flight.
	// If 0, reads are not limited.
	MaxConcurrentReads int64

	// IOLimitBytesPerSec is the maximum read throughput from the storage backend.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages per-invocation resources (memory, reads, IO).
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	readSem *semaphore.Weighted // nil if unlimited

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxConcurrentReads > 0 {
		c.readSem = semaphore.NewWeighted(cfg.MaxConcurrentReads)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if !c.TryAcquireMemory(bytes) {
		return ErrMemoryLimitExceeded
	}
	return nil
}

// TryAcquireMemory reserves memory and reports whether it succeeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireRead reserves a read slot. Blocks until a slot frees up or ctx is done.
func (c *Controller) AcquireRead(ctx context.Context) error {
	if c == nil || c.readSem == nil {
		return nil
	}
	return c.readSem.Acquire(ctx, 1)
}

// ReleaseRead releases a read slot.
func (c *Controller) ReleaseRead() {
	if c == nil || c.readSem == nil {
		return
	}
	c.readSem.Release(1)
}

// TryAcquireRead attempts to reserve a read slot without blocking.
func (c *Controller) TryAcquireRead() bool {
	if c == nil || c.readSem == nil {
		return true
	}
	return c.readSem.TryAcquire(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the bucket are split into bucket-sized waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
