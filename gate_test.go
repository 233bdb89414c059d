package proaudio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyGate_EnterLeave(t *testing.T) {
	g := newApplyGate()

	require.NoError(t, g.enter(context.Background(), "first"))
	holder, waiting := g.state()
	assert.Equal(t, "first", holder)
	assert.Equal(t, 0, waiting)

	g.leave()
	holder, _ = g.state()
	assert.Equal(t, "", holder)

	require.NoError(t, g.enter(context.Background(), "second"))
	g.leave()
}

func TestApplyGate_EnterEndsWithContext(t *testing.T) {
	g := newApplyGate()
	require.NoError(t, g.enter(context.Background(), "held"))
	defer g.leave()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.enter(ctx, "queued")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	holder, waiting := g.state()
	assert.Equal(t, "held", holder)
	assert.Equal(t, 0, waiting)
}

func TestApplyGate_WaiterProceedsAfterLeave(t *testing.T) {
	g := newApplyGate()
	require.NoError(t, g.enter(context.Background(), "held"))

	entered := make(chan error, 1)
	go func() {
		entered <- g.enter(context.Background(), "queued")
	}()

	require.Eventually(t, func() bool {
		_, waiting := g.state()
		return waiting == 1
	}, time.Second, 5*time.Millisecond)

	select {
	case <-entered:
		t.Fatal("entered while the gate was held")
	default:
	}

	g.leave()

	select {
	case err := <-entered:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter never entered")
	}

	holder, waiting := g.state()
	assert.Equal(t, "queued", holder)
	assert.Equal(t, 0, waiting)
	g.leave()
}
