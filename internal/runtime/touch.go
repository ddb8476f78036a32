package runtime

import (
	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/wire"
)

// MinMoveStepLength / MinMoveStepInterval govern interpolation density for
// Swipe and the eased DirectionPad/cast-spell/CancelCast moves.
const (
	MinMoveStepLength   = mapping.MinMoveStepLength
	MinMoveStepInterval = mapping.MinMoveStepInterval
)

// primaryButton is the MotionEvent button bit scrcpy uses for a
// single-finger/mouse-primary touch.
const primaryButton uint32 = 1 << 0

// Bus is the subset of *controller.Bus the runtime needs. Declared locally
// (rather than imported from internal/controller) so internal/runtime does
// not depend on internal/controller — the control bus is the seam spec §9
// calls out to break the cycle between the two.
type Bus interface {
	Publish(msg wire.ControlMessage)
}

// sendTouch publishes a touch event with pressure=1.0 and the primary
// button bits set, per the "universal helper" in spec §4.3.
func sendTouch(bus Bus, action uint8, pointerID uint64, size mapping.Size, pos Vec2) {
	p := vec2ToPos(pos)
	bus.Publish(wire.InjectTouchEvent{
		Action:       action,
		PointerID:    pointerID,
		X:            p.X,
		Y:            p.Y,
		W:            uint16(size.Width),
		H:            uint16(size.Height),
		Pressure:     1.0,
		ActionButton: primaryButton,
		Buttons:      primaryButton,
	})
}

func sendKeycode(bus Bus, keycode uint32, metastate uint32, down bool, repeat uint32) {
	action := uint8(wire.ActionUp)
	if down {
		action = wire.ActionDown
	}
	bus.Publish(wire.InjectKeycode{
		Action:    action,
		Keycode:   keycode,
		Repeat:    repeat,
		Metastate: metastate,
	})
}
