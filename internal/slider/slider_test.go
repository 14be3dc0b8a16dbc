// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package slider

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T) *Controller {
	t.Helper()
	c := NewController()
	require.NoError(t, c.Register("time", 0, 10))
	require.NoError(t, c.Register("time-2", 0, 10))
	return c
}

func TestRegister(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Register("a", 0, 5))

	assert.Error(t, c.Register("a", 0, 5), "duplicate id")
	assert.Error(t, c.Register("", 0, 5), "empty id")
	assert.Error(t, c.Register("b", 5, 0), "inverted range")

	_, err := c.Set("a", 3)
	require.NoError(t, err)
	require.NoError(t, c.Register("c", 0, 2))

	snap := c.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "c", snap[1].ID)
	assert.Equal(t, 2.0, snap[1].Value, "new slider joins at the shared value, clamped")
}

func TestSetSynchronizesAll(t *testing.T) {
	c := newPair(t)

	v, err := c.Set("time", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	for _, s := range c.Snapshot() {
		assert.Equal(t, 4.0, s.Value, "slider %s", s.ID)
	}

	_, err = c.Set("time-2", 7)
	require.NoError(t, err)
	for _, s := range c.Snapshot() {
		assert.Equal(t, 7.0, s.Value, "slider %s", s.ID)
	}
}

func TestSetResyncsNarrowerRange(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Register("a", 0, 10))
	require.NoError(t, c.Register("b", 0, 5))
	events, cancel := c.Subscribe()
	defer cancel()

	_, err := c.Set("a", 8)
	require.NoError(t, err)
	// b is already at its max of 5; a must still follow it.
	_, err = c.Set("b", 5)
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, 5.0, snap[0].Value)
	assert.Equal(t, 5.0, snap[1].Value)

	assert.Equal(t, Event{Source: "a", Value: 8, Seq: 1}, <-events)
	assert.Equal(t, Event{Source: "b", Value: 5, Seq: 2}, <-events)
}

func TestSetClamps(t *testing.T) {
	c := newPair(t)

	v, err := c.Set("time", 99)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	v, err = c.Set("time", -1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestSetErrors(t *testing.T) {
	c := newPair(t)
	_, err := c.Set("absent", 1)
	assert.Error(t, err)
}

func TestEventsOnlyOnChange(t *testing.T) {
	c := newPair(t)
	events, cancel := c.Subscribe()
	defer cancel()

	_, err := c.Set("time", 3)
	require.NoError(t, err)
	_, err = c.Set("time-2", 3) // already at 3
	require.NoError(t, err)
	_, err = c.Set("time-2", 5)
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, Event{Source: "time", Value: 3, Seq: 1}, first)
	second := <-events
	assert.Equal(t, Event{Source: "time-2", Value: 5, Seq: 2}, second)
	assert.Len(t, events, 0)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	c := NewController()
	require.NoError(t, c.Register("time", 0, 1000))
	_, cancel := c.Subscribe()
	defer cancel()

	for i := 1; i <= subscriberBuffer+5; i++ {
		_, err := c.Set("time", float64(i))
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(5), c.Dropped())
}

func TestCancelClosesChannel(t *testing.T) {
	c := newPair(t)
	events, cancel := c.Subscribe()
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)

	_, err := c.Set("time", 1)
	require.NoError(t, err)
}

func TestConcurrentSet(t *testing.T) {
	c := newPair(t)
	events, cancel := c.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set("time", float64(i%10))
		}(i)
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, snap[0].Value, snap[1].Value)

	var last uint64
	for len(events) > 0 {
		ev := <-events
		assert.Greater(t, ev.Seq, last)
		last = ev.Seq
	}
}
