package util

import "sync/atomic"

// SafeCounter is a counter safe to use from concurrent UI callbacks.
type SafeCounter struct {
	value atomic.Int64
}

// Increment increments the counter and returns the new value.
func (c *SafeCounter) Increment() int64 {
	return c.value.Add(1)
}

// Reset sets the counter back to zero.
func (c *SafeCounter) Reset() {
	c.value.Store(0)
}

// Value returns the current value of the counter.
func (c *SafeCounter) Value() int64 {
	return c.value.Load()
}

// SafeFlag is a boolean safe to use concurrently.
type SafeFlag struct {
	value atomic.Bool
}

// Set sets the flag and returns the new value.
func (f *SafeFlag) Set(v bool) bool {
	f.value.Store(v)
	return v
}

// Value returns the current value of the flag.
func (f *SafeFlag) Value() bool {
	return f.value.Load()
}

// Once raises the flag and reports whether this call was the one that raised it.
func (f *SafeFlag) Once() bool {
	return f.value.CompareAndSwap(false, true)
}
