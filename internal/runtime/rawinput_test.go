package runtime

import (
	"testing"

	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawInputKeyEventEmitsDownWithIncrementingRepeat(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, cfgWithOriginalSize(1000, 1000), 1000, 1000)

	eng.EnterRawInput()
	eng.RawInputKeyEvent("a", true, Modifiers{})
	eng.RawInputKeyEvent("a", true, Modifiers{})

	require.Len(t, bus.msgs, 2)
	first := bus.msgs[0].(wire.InjectKeycode)
	second := bus.msgs[1].(wire.InjectKeycode)
	assert.Equal(t, uint8(wire.ActionDown), first.Action)
	assert.Equal(t, uint32(0), first.Repeat)
	assert.Equal(t, uint32(1), second.Repeat)

	eng.RawInputKeyEvent("a", false, Modifiers{})
	require.Len(t, bus.msgs, 3)
	up := bus.msgs[2].(wire.InjectKeycode)
	assert.Equal(t, uint8(wire.ActionUp), up.Action)
}

func TestRawInputUnmappedKeyIsDropped(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, cfgWithOriginalSize(1000, 1000), 1000, 1000)

	eng.EnterRawInput()
	eng.RawInputKeyEvent("not_a_real_key", true, Modifiers{})

	assert.Len(t, bus.msgs, 0)
}

func TestRawInputMetastateReflectsModifiers(t *testing.T) {
	bus := newRecordingBus()
	eng := NewEngine(bus, cfgWithOriginalSize(1000, 1000), 1000, 1000)

	eng.EnterRawInput()
	eng.RawInputKeyEvent("a", true, Modifiers{Shift: true, Ctrl: true})

	require.Len(t, bus.msgs, 1)
	m := bus.msgs[0].(wire.InjectKeycode)
	assert.Equal(t, uint32(wire.MetaShiftOn|wire.MetaCtrlOn), m.Metastate)
}

func TestRawInputRightMouseHoldExitsAfterDuration(t *testing.T) {
	eng := NewEngine(newRecordingBus(), cfgWithOriginalSize(1000, 1000), 1000, 1000)
	eng.EnterRawInput()

	assert.False(t, eng.RawInputRightMouseHeldLongEnough())
	eng.RawInputRightMouseDown()
	assert.False(t, eng.RawInputRightMouseHeldLongEnough())

	eng.rawInput.rightMouseHoldSince = nowMS() - rawInputHoldExitDurationMS - 1
	assert.True(t, eng.RawInputRightMouseHeldLongEnough())

	eng.RawInputRightMouseUp()
	assert.False(t, eng.RawInputRightMouseHeldLongEnough())
}
