// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package slider keeps a set of named sliders at the same value. Setting any
// slider moves all of them and notifies subscribers once per change.
package slider

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// subscriberBuffer is the channel capacity given to each subscriber.
const subscriberBuffer = 16

// State is one slider's range and current value.
type State struct {
	ID    string  `json:"id"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Value float64 `json:"value"`
}

// Event reports a synchronized value change. Seq increases by one per
// change.
type Event struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
	Seq    uint64  `json:"seq"`
}

// Controller synchronizes registered sliders. It is safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	sliders map[string]*State
	subs    map[int]chan Event
	nextSub int
	seq     uint64
	dropped uint64
}

// NewController returns a controller with no sliders.
func NewController() *Controller {
	return &Controller{
		sliders: make(map[string]*State),
		subs:    make(map[int]chan Event),
	}
}

// Register adds a slider with the given range. Its value starts at the
// current shared value when other sliders exist, otherwise at min.
func (c *Controller) Register(id string, min, max float64) error {
	if id == "" {
		return fmt.Errorf("slider id is empty")
	}
	if math.IsNaN(min) || math.IsNaN(max) || min > max {
		return fmt.Errorf("slider %s: invalid range [%g, %g]", id, min, max)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sliders[id]; ok {
		return fmt.Errorf("slider %s already registered", id)
	}
	s := &State{ID: id, Min: min, Max: max, Value: min}
	for _, other := range c.sliders {
		s.Value = clamp(other.Value, min, max)
		break
	}
	c.sliders[id] = s
	return nil
}

// Set moves slider id to value, clamped to its range, and moves every other
// slider to the same value within its own range. Subscribers receive an
// event only when some slider's value changed. It returns the applied
// value.
func (c *Controller) Set(id string, value float64) (float64, error) {
	if math.IsNaN(value) {
		return 0, fmt.Errorf("slider %s: value is NaN", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	src, ok := c.sliders[id]
	if !ok {
		return 0, fmt.Errorf("slider %s not registered", id)
	}
	v := clamp(value, src.Min, src.Max)

	changed := false
	for _, s := range c.sliders {
		next := clamp(v, s.Min, s.Max)
		if next != s.Value {
			s.Value = next
			changed = true
		}
	}
	if !changed {
		return v, nil
	}
	c.seq++
	c.broadcast(Event{Source: id, Value: v, Seq: c.seq})
	return v, nil
}

// broadcast delivers ev without blocking; a full subscriber misses it.
func (c *Controller) broadcast(ev Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.dropped++
		}
	}
}

// Subscribe returns a channel of change events and a function that cancels
// the subscription and closes the channel.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan Event, subscriberBuffer)
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Snapshot returns every slider's state ordered by id.
func (c *Controller) Snapshot() []State {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]State, 0, len(c.sliders))
	for _, s := range c.sliders {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dropped returns the number of events not delivered to slow subscribers.
func (c *Controller) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
