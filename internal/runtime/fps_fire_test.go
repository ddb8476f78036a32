package runtime

import (
	"testing"

	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fpsFireConfig() mapping.Config {
	cfg := cfgWithOriginalSize(1000, 1000)
	cfg.Mappings = []mapping.Item{
		{Kind: mapping.KindFps, Fps: &mapping.Fps{
			Position:     mapping.Position{X: 500, Y: 500},
			PointerID:    1,
			SensitivityX: 1,
			SensitivityY: 1,
		}},
		{Kind: mapping.KindFire, Fire: &mapping.Fire{
			Position:     mapping.Position{X: 800, Y: 200},
			PointerID:    2,
			SensitivityX: 1,
			SensitivityY: 1,
		}},
	}
	return cfg
}

func TestToggleFpsEntersAndExits(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, fpsFireConfig(), 1000, 1000)

	eng.ToggleFps(0)
	require.Len(t, bus.msgs, 1)
	down := bus.msgs[0].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionDown), down.Action)
	assert.Equal(t, int32(500), down.X)
	assert.Equal(t, uint64(1), down.PointerID)

	eng.ToggleFps(0)
	require.Len(t, bus.msgs, 2)
	up := bus.msgs[1].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionUp), up.Action)
	assert.Equal(t, int32(500), up.X)
}

func TestFpsMotionWithinMarginIsPlainMove(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, fpsFireConfig(), 1000, 1000)

	eng.ToggleFps(0)
	eng.UpdateFpsMotion(Vec2{10, 0})

	require.Len(t, bus.msgs, 2)
	move := bus.msgs[1].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionMove), move.Action)
	assert.Equal(t, int32(510), move.X)
}

func TestFpsMotionBeyondMarginRecenters(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, fpsFireConfig(), 1000, 1000)

	eng.ToggleFps(0)
	// Well past the right margin (mask is 1000x1000, margin 25).
	eng.UpdateFpsMotion(Vec2{600, 0})

	// Down(entry) + Move(edge) + Up(edge) + Down(center) + Move(final)
	require.GreaterOrEqual(t, len(bus.msgs), 5)
	edgeMove := bus.msgs[1].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionMove), edgeMove.Action)
	assert.LessOrEqual(t, edgeMove.X, int32(975))
	up := bus.msgs[2].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionUp), up.Action)
	recenterDown := bus.msgs[3].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionDown), recenterDown.Action)
	assert.Equal(t, int32(500), recenterDown.X)
}

func TestFireSuspendsFpsAndTracksIndependently(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, fpsFireConfig(), 1000, 1000)

	eng.ToggleFps(0)
	before := len(bus.msgs)

	eng.ActivateFire(0)
	// Up(fps) + Down(fire)
	require.Len(t, bus.msgs, before+2)
	fpsUp := bus.msgs[before].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionUp), fpsUp.Action)
	assert.Equal(t, uint64(1), fpsUp.PointerID)
	fireDown := bus.msgs[before+1].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionDown), fireDown.Action)
	assert.Equal(t, uint64(2), fireDown.PointerID)
	assert.Equal(t, int32(800), fireDown.X)

	eng.UpdateFireMotion(Vec2{5, 0})
	fireMove := bus.msgs[len(bus.msgs)-1].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionMove), fireMove.Action)
	assert.Equal(t, int32(805), fireMove.X)

	eng.DeactivateFire(0)
	// Up(fire) + Down(fps center)
	last := bus.msgs[len(bus.msgs)-1].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionDown), last.Action)
	assert.Equal(t, uint64(1), last.PointerID)
	assert.Equal(t, int32(500), last.X)

	prior := bus.msgs[len(bus.msgs)-2].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionUp), prior.Action)
	assert.Equal(t, uint64(2), prior.PointerID)
}
