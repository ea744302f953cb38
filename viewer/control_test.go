package viewer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evosoup/mactierra/mterra"
	"github.com/evosoup/mactierra/mterra/rng"
	"github.com/evosoup/mactierra/viewer"
)

func newTestControl(t *testing.T, tick time.Duration) (*viewer.Control, *mterra.World) {
	t.Helper()
	settings := mterra.DefaultSettings(1000)
	w := mterra.NewWorld(settings, rng.New(1))
	_, err := w.InsertCreature(10, []mterra.Instruction{mterra.OpNop0, mterra.OpIncA})
	require.NoError(t, err)
	return viewer.NewControl(w, nil, 10, tick), w
}

func TestControl_PauseResumeToggleState(t *testing.T) {
	c, _ := newTestControl(t, time.Millisecond)
	assert.False(t, c.Paused())

	c.Pause()
	assert.True(t, c.Paused())

	c.Resume()
	assert.False(t, c.Paused())
}

func TestControl_SetCosmicRateUpdatesWorldSettings(t *testing.T) {
	c, w := newTestControl(t, time.Millisecond)
	c.SetCosmicRate(0.25)
	assert.Equal(t, 0.25, w.Settings().CosmicRate)
}

func TestControl_RunStopsOnContextCancel(t *testing.T) {
	c, _ := newTestControl(t, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestControl_RunCallsOnTickAfterEachBatch(t *testing.T) {
	c, _ := newTestControl(t, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	ticks := make(chan struct{}, 10)
	c.OnTick = func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}

	go c.Run(ctx)

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("OnTick was never called")
	}
	cancel()
}

func TestControl_RunSkipsIterateWhilePaused(t *testing.T) {
	c, w := newTestControl(t, 2*time.Millisecond)
	c.Pause()
	before := w.TimeSlicer().InstructionsExecuted()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_ = c.Run(ctx)

	assert.Equal(t, before, w.TimeSlicer().InstructionsExecuted())
}
