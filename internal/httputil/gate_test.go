// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_SerializedPacing(t *testing.T) {
	const (
		interval = 20 * time.Millisecond
		calls    = 5
	)
	g := NewGate(interval)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Pause(context.Background())
		}()
	}
	wg.Wait()

	// Pauses queue on the gate, so N calls take at least N×interval
	// regardless of how many goroutines issue them.
	assert.GreaterOrEqual(t, time.Since(start), calls*interval)
}

func TestGate_ZeroIntervalDisabled(t *testing.T) {
	g := NewGate(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		g.Pause(context.Background())
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestGate_NilGateIsNoop(t *testing.T) {
	var g *Gate
	g.Pause(context.Background())
}

func TestGate_ContextCancelReleasesEarly(t *testing.T) {
	g := NewGate(10 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	g.Pause(ctx)
	assert.Less(t, time.Since(start), time.Second)
}
