package proaudio

import (
	"context"
	"sync"
)

// applyGate admits one apply at a time and remembers which attempt holds it,
// so a queued caller can log what it is waiting for.
type applyGate struct {
	slot chan struct{}

	mu      sync.Mutex
	holder  string
	waiting int
}

func newApplyGate() *applyGate {
	return &applyGate{slot: make(chan struct{}, 1)}
}

// enter blocks until attemptID holds the gate or ctx ends
func (g *applyGate) enter(ctx context.Context, attemptID string) error {
	g.mu.Lock()
	g.waiting++
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.waiting--
		g.mu.Unlock()
	}()

	select {
	case g.slot <- struct{}{}:
		g.mu.Lock()
		g.holder = attemptID
		g.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *applyGate) leave() {
	g.mu.Lock()
	g.holder = ""
	g.mu.Unlock()
	<-g.slot
}

// state returns the holding attempt ("" when free) and the number of
// callers currently blocked in enter
func (g *applyGate) state() (holder string, waiting int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder, g.waiting
}
