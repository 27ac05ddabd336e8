// Package idling tracks in-flight background work so observers can detect
// when the application has gone quiet.
package idling

import (
	"context"
	"sync"
)

// Resource is a busy counter. Work increments it before it is dispatched and
// decrements it once the result has been handled.
type Resource interface {
	Increment()
	Decrement()
	IsIdleNow() bool
}

// Counter is a Resource backed by an integer count. The zero value is not
// usable; create one with NewCounter.
type Counter struct {
	name string

	mu    sync.Mutex
	count int
	idle  chan struct{} // closed on the next transition to idle
}

var _ Resource = (*Counter)(nil)

// NewCounter creates an idle counter.
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Name returns the name the counter was created with.
func (c *Counter) Name() string {
	return c.name
}

// Increment marks one more unit of work as in flight.
func (c *Counter) Increment() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

// Decrement marks one unit of work as finished. Decrementing an idle counter
// panics, like a negative sync.WaitGroup counter.
func (c *Counter) Decrement() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		panic("idling: counter " + c.name + " has been corrupted")
	}

	c.count--
	if c.count == 0 && c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}

// DecrementIfBusy decrements the counter unless it is already idle, as a
// single step. It reports whether a decrement happened.
func (c *Counter) DecrementIfBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		return false
	}

	c.count--
	if c.count == 0 && c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
	return true
}

// IsIdleNow reports whether no work is in flight.
func (c *Counter) IsIdleNow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count == 0
}

// Count returns the number of in-flight units.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// WaitForIdle blocks until the counter is idle or ctx is done.
func (c *Counter) WaitForIdle(ctx context.Context) error {
	c.mu.Lock()
	if c.count == 0 {
		c.mu.Unlock()
		return nil
	}
	if c.idle == nil {
		c.idle = make(chan struct{})
	}
	ch := c.idle
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Noop is a Resource for builds without instrumentation. It always reports
// idle, so guarded decrements never run.
type Noop struct{}

var _ Resource = Noop{}

func (Noop) Increment()      {}
func (Noop) Decrement()      {}
func (Noop) IsIdleNow() bool { return true }
