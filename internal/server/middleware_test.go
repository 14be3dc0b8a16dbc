// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPRateLimiterEvictsIdleClients(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	l := newIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	a := l.getLimiter("10.0.0.1")
	now = start.Add(5 * time.Minute)
	b := l.getLimiter("10.0.0.2")
	assert.Equal(t, 2, l.size())
	now = start.Add(8 * time.Minute)
	assert.Same(t, a, l.getLimiter("10.0.0.1"), "active client keeps its bucket")

	now = start.Add(16 * time.Minute)
	l.getLimiter("10.0.0.3")
	assert.Equal(t, 2, l.size(), "idle 10.0.0.2 should be evicted")
	assert.Same(t, a, l.getLimiter("10.0.0.1"))
	assert.NotSame(t, b, l.getLimiter("10.0.0.2"), "evicted client gets a fresh bucket")
}
