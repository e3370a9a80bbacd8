// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"sync"
	"time"
)

// Gate serializes a fixed minimum pause between requests to one upstream
// service. All workers of a phase share a single Gate, so the aggregate
// request rate stays at one request per interval no matter how many
// workers run: N paced calls take at least N×interval of wall time.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
}

// NewGate returns a Gate enforcing the given minimum interval. A zero or
// negative interval disables pacing.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Pause blocks for the gate's interval while holding the gate, so
// concurrent pauses queue rather than overlap. Callers defer it so the
// pause runs on every exit path of a request, success and failure alike.
// A cancelled context releases the caller early.
func (g *Gate) Pause(ctx context.Context) {
	if g == nil || g.interval <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(g.interval):
	}
}
