package idling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_IncrementDecrement(t *testing.T) {
	c := NewCounter("test")
	assert.True(t, c.IsIdleNow())
	assert.Equal(t, "test", c.Name())

	c.Increment()
	c.Increment()
	assert.False(t, c.IsIdleNow())
	assert.Equal(t, 2, c.Count())

	c.Decrement()
	assert.False(t, c.IsIdleNow())

	c.Decrement()
	assert.True(t, c.IsIdleNow())
}

func TestCounter_DecrementWhenIdlePanics(t *testing.T) {
	c := NewCounter("test")
	assert.PanicsWithValue(t, "idling: counter test has been corrupted", func() {
		c.Decrement()
	})
}

func TestCounter_DecrementIfBusy(t *testing.T) {
	c := NewCounter("test")
	assert.False(t, c.DecrementIfBusy())

	c.Increment()
	assert.True(t, c.DecrementIfBusy())
	assert.False(t, c.DecrementIfBusy())
	assert.True(t, c.IsIdleNow())
}

func TestCounter_WaitForIdle(t *testing.T) {
	t.Run("returns immediately when idle", func(t *testing.T) {
		c := NewCounter("test")
		require.NoError(t, c.WaitForIdle(context.Background()))
	})

	t.Run("unblocks on transition to idle", func(t *testing.T) {
		c := NewCounter("test")
		c.Increment()

		done := make(chan error, 1)
		go func() { done <- c.WaitForIdle(context.Background()) }()

		select {
		case <-done:
			t.Fatal("WaitForIdle returned while busy")
		case <-time.After(20 * time.Millisecond):
		}

		c.Decrement()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("WaitForIdle did not return after going idle")
		}
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		c := NewCounter("test")
		c.Increment()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := c.WaitForIdle(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNoop(t *testing.T) {
	var r Resource = Noop{}
	r.Increment()
	assert.True(t, r.IsIdleNow())
	r.Decrement()
	assert.True(t, r.IsIdleNow())
}
