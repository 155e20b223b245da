package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDrainRunsInOrder(t *testing.T) {
	d := NewDispatcher(8)
	defer d.Close()

	var got []int
	for i := 0; i < 3; i++ {
		require.True(t, d.Post(context.Background(), func() { got = append(got, i) }))
	}

	assert.Equal(t, 3, d.Drain())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Equal(t, 0, d.Drain())
}

func TestDispatcherPostDuringDrainRunsNextTime(t *testing.T) {
	d := NewDispatcher(8)
	defer d.Close()

	ran := 0
	d.Post(context.Background(), func() {
		d.Post(context.Background(), func() { ran++ })
	})

	assert.Equal(t, 1, d.Drain())
	assert.Equal(t, 0, ran)
	assert.Equal(t, 1, d.Drain())
	assert.Equal(t, 1, ran)
}

func TestDispatcherPostUnblocks(t *testing.T) {
	t.Run("on close", func(t *testing.T) {
		d := NewDispatcher(1)
		require.True(t, d.Post(context.Background(), func() {}))

		result := make(chan bool)
		go func() { result <- d.Post(context.Background(), func() {}) }()
		d.Close()
		assert.False(t, <-result)
	})

	t.Run("on context cancel", func(t *testing.T) {
		d := NewDispatcher(1)
		defer d.Close()
		require.True(t, d.Post(context.Background(), func() {}))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.False(t, d.Post(ctx, func() {}))
	})
}

func TestTimer(t *testing.T) {
	t.Run("fires on drain", func(t *testing.T) {
		d := NewDispatcher(8)
		defer d.Close()
		timer := d.NewTimer()

		var fired atomic.Int32
		timer.Schedule(time.Millisecond, func() { fired.Add(1) })
		assert.True(t, timer.Pending())

		drainUntil(t, d, func() bool { return fired.Load() == 1 })
		assert.False(t, timer.Pending())
	})

	t.Run("reschedule replaces", func(t *testing.T) {
		d := NewDispatcher(8)
		defer d.Close()
		timer := d.NewTimer()

		var first, second atomic.Int32
		timer.Schedule(time.Millisecond, func() { first.Add(1) })
		time.Sleep(5 * time.Millisecond)
		timer.Schedule(time.Millisecond, func() { second.Add(1) })

		drainUntil(t, d, func() bool { return second.Load() == 1 })
		d.Drain()
		assert.Equal(t, int32(0), first.Load())
	})

	t.Run("stop drops a pending fire", func(t *testing.T) {
		d := NewDispatcher(8)
		defer d.Close()
		timer := d.NewTimer()

		var fired atomic.Int32
		timer.Schedule(time.Millisecond, func() { fired.Add(1) })
		time.Sleep(5 * time.Millisecond)
		timer.Stop()

		assert.False(t, timer.Pending())
		d.Drain()
		assert.Equal(t, int32(0), fired.Load())
	})
}
