package runtime

import (
	"math"
	"testing"
	"time"

	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mouseCastConfig() mapping.Config {
	cfg := cfgWithOriginalSize(1000, 1000)
	cfg.Mappings = []mapping.Item{{Kind: mapping.KindMouseCastSpell, MouseCastSpell: &mapping.MouseCastSpell{
		Position:              mapping.Position{X: 500, Y: 500},
		CenterPosition:        mapping.Position{X: 500, Y: 500},
		DragRadius:            40,
		CastRadius:            200,
		HorizontalScaleFactor: 1,
		VerticalScaleFactor:   1,
		ReleaseMode:           mapping.ReleaseOnRelease,
		PointerID:             9,
	}}}
	return cfg
}

func TestMouseCastSpellTracksCursorWithinDragRadiusAndReleasesOnce(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, mouseCastConfig(), 1000, 1000)

	eng.ActivateMouseCastSpell(0)
	time.Sleep(120 * time.Millisecond) // past the settle window

	eng.SetCursor(700, 500)
	eng.UpdateCursorForCast(Vec2{700, 500})
	eng.SetCursor(500, 800)
	eng.UpdateCursorForCast(Vec2{500, 800})

	for _, raw := range bus.msgs {
		m := raw.(wire.InjectTouchEvent)
		dist := math.Hypot(float64(m.X-500), float64(m.Y-500))
		assert.LessOrEqual(t, dist, 40.5)
	}

	eng.DeactivateMouseCastSpell(0)

	ups := 0
	for _, raw := range bus.msgs {
		if raw.(wire.InjectTouchEvent).Action == wire.ActionUp {
			ups++
		}
	}
	assert.Equal(t, 1, ups)
}

func TestCancelCastEmitsBoundedMovesThenOneUp(t *testing.T) {
	bus := newRecordingBus()
	cfg := mouseCastConfig()
	cfg.Mappings = append(cfg.Mappings, mapping.Item{Kind: mapping.KindCancelCast, CancelCast: &mapping.CancelCast{
		CancelPosition: mapping.Position{X: 500, Y: 500},
	}})
	eng := NewEngine(bus, cfg, 1000, 1000)

	eng.ActivateMouseCastSpell(0)
	time.Sleep(120 * time.Millisecond)

	before := len(bus.msgs)
	eng.PulseCancelCast(0)

	moves, ups := 0, 0
	for _, raw := range bus.msgs[before:] {
		m := raw.(wire.InjectTouchEvent)
		switch m.Action {
		case wire.ActionMove:
			moves++
		case wire.ActionUp:
			ups++
		}
	}
	require.Equal(t, 1, ups)
	// cancel interpolation (<=5 by construction) + jitter pause (exactly 10)
	assert.LessOrEqual(t, moves, 5+10)
}
