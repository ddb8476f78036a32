package runtime

import (
	"testing"
	"time"

	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBus struct {
	mu   chan struct{}
	msgs []wire.ControlMessage
}

func newRecordingBus() *recordingBus {
	return &recordingBus{mu: make(chan struct{}, 1)}
}

func (b *recordingBus) Publish(msg wire.ControlMessage) {
	b.msgs = append(b.msgs, msg)
}

func cfgWithOriginalSize(w, h uint32) mapping.Config {
	return mapping.Config{OriginalSize: mapping.Size{Width: w, Height: h}}
}

func TestSwipeTwoPointEmitsDownFourMovesUp(t *testing.T) {
	bus := newRecordingBus()
	cfg := cfgWithOriginalSize(1000, 1000)
	cfg.Mappings = []mapping.Item{{Kind: mapping.KindSwipe, Swipe: &mapping.Swipe{
		PointerID: 7,
		Positions: []mapping.Position{{X: 0, Y: 0}, {X: 100, Y: 0}},
		Interval:  100,
	}}}
	eng := NewEngine(bus, cfg, 1000, 1000)

	eng.PulseSwipe(0)
	time.Sleep(200 * time.Millisecond)

	require.Len(t, bus.msgs, 6) // Down + 4 Move + Up
	down := bus.msgs[0].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionDown), down.Action)
	assert.Equal(t, int32(0), down.X)

	for i := 1; i <= 4; i++ {
		m := bus.msgs[i].(wire.InjectTouchEvent)
		assert.Equal(t, uint8(wire.ActionMove), m.Action)
	}

	up := bus.msgs[5].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionUp), up.Action)
	assert.Equal(t, int32(100), up.X)
}

func TestSingleTapSyncSendsDownThenUpOnlyOnRelease(t *testing.T) {
	bus := newRecordingBus()
	cfg := cfgWithOriginalSize(1000, 1000)
	cfg.Mappings = []mapping.Item{{Kind: mapping.KindSingleTap, SingleTap: &mapping.SingleTap{
		Position: mapping.Position{X: 10, Y: 20}, Sync: true, PointerID: 1,
	}}}
	eng := NewEngine(bus, cfg, 1000, 1000)

	eng.ActivateSingleTap(0)
	require.Len(t, bus.msgs, 1)
	assert.Equal(t, uint8(wire.ActionDown), bus.msgs[0].(wire.InjectTouchEvent).Action)

	eng.DeactivateSingleTap(0)
	require.Len(t, bus.msgs, 2)
	assert.Equal(t, uint8(wire.ActionUp), bus.msgs[1].(wire.InjectTouchEvent).Action)
}

func TestSingleTapNonSyncSchedulesUpAfterDuration(t *testing.T) {
	bus := newRecordingBus()
	cfg := cfgWithOriginalSize(1000, 1000)
	cfg.Mappings = []mapping.Item{{Kind: mapping.KindSingleTap, SingleTap: &mapping.SingleTap{
		Position: mapping.Position{X: 10, Y: 20}, Sync: false, Duration: 30, PointerID: 1,
	}}}
	eng := NewEngine(bus, cfg, 1000, 1000)

	eng.ActivateSingleTap(0)
	require.Len(t, bus.msgs, 1)

	time.Sleep(80 * time.Millisecond)
	require.Len(t, bus.msgs, 2)
	assert.Equal(t, uint8(wire.ActionUp), bus.msgs[1].(wire.InjectTouchEvent).Action)
}
