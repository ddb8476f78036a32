package runtime

import (
	"testing"

	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observationConfig() mapping.Config {
	cfg := cfgWithOriginalSize(1000, 1000)
	cfg.Mappings = []mapping.Item{{Kind: mapping.KindObservation, Observation: &mapping.Observation{
		Position:    mapping.Position{X: 500, Y: 500},
		Sensitivity: 2,
		PointerID:   4,
	}}}
	return cfg
}

func TestObservationDragsByCursorDeltaTimesSensitivity(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, observationConfig(), 1000, 1000)

	eng.SetCursor(100, 100)
	eng.ActivateObservation(0)
	require.Len(t, bus.msgs, 1)
	down := bus.msgs[0].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionDown), down.Action)
	assert.Equal(t, int32(500), down.X)
	assert.Equal(t, int32(500), down.Y)

	eng.SetCursor(110, 100)
	eng.UpdateCursorForObservation(Vec2{110, 100})
	require.Len(t, bus.msgs, 2)
	move := bus.msgs[1].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionMove), move.Action)
	assert.Equal(t, int32(520), move.X) // 500 + (110-100)*2
	assert.Equal(t, int32(500), move.Y)

	eng.DeactivateObservation(0)
	require.Len(t, bus.msgs, 3)
	up := bus.msgs[2].(wire.InjectTouchEvent)
	assert.Equal(t, uint8(wire.ActionUp), up.Action)
	assert.Equal(t, int32(520), up.X)
}
