package runtime

import (
	"time"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

type padState struct {
	lastState Vec2
	enableAt  int64 // unix ms; active-but-not-yet-enabled until this instant
}

// scaleDirection maps a unit-square input in [-1,1]^2 onto the ellipse with
// semi-axes (maxX, maxY), clamping any input outside the unit circle to the
// circle boundary along the same ray before scaling per axis.
func scaleDirection(in Vec2, maxX, maxY float32) Vec2 {
	if lenSq := in.X*in.X + in.Y*in.Y; lenSq > 1 {
		in = in.Normalized()
	}
	return Vec2{in.X * maxX, in.Y * maxY}
}

// UpdateDirectionPad feeds a new raw input state (chord or gamepad axis, in
// [-1,1]^2) for the pad at index, implementing spec §4.3.e.
func (e *Engine) UpdateDirectionPad(index int, inState Vec2) {
	e.mu.Lock()
	m := e.b.DirectionPad[index]
	if e.blockPad {
		e.mu.Unlock()
		return
	}
	d2d := scaleDirection(inState, m.MaxOffsetX, m.MaxOffsetY)
	center := posToVec2(m.Position)

	st, active := e.padState[index]
	if !active {
		if d2d == (Vec2{}) {
			e.mu.Unlock()
			return
		}
		enableAt := nowMS() + int64(m.InitialDuration) + int64(MinMoveStepInterval)
		e.padState[index] = &padState{lastState: d2d, enableAt: enableAt}
		e.mu.Unlock()

		e.touch(wire.ActionDown, m.PointerID, center)
		go e.rampDirectionPad(m.PointerID, center, d2d, m.InitialDuration)
		return
	}

	if nowMS() < st.enableAt {
		e.mu.Unlock()
		return
	}
	if d2d == (Vec2{}) {
		last := st.lastState
		delete(e.padState, index)
		e.mu.Unlock()
		e.touch(wire.ActionUp, m.PointerID, center.Add(last))
		return
	}
	if d2d != st.lastState {
		st.lastState = d2d
		e.mu.Unlock()
		e.touch(wire.ActionMove, m.PointerID, center.Add(d2d))
		return
	}
	e.mu.Unlock()
}

func (e *Engine) rampDirectionPad(pointerID uint64, center, target Vec2, durationMS uint64) {
	steps := interpolationSteps(durationMS, MinMoveStepInterval)
	for s := 1; s <= steps; s++ {
		t := easeSigmoidLike(float32(s) / float32(steps))
		e.touch(wire.ActionMove, pointerID, center.Add(target.Scale(t)))
		if s < steps {
			time.Sleep(msDuration(uint32(durationMS / uint64(steps))))
		}
	}
}

// SetBlockDirectionPad sets or clears the module-wide pad-block latch
// (spec §4.3.e): while set, any live pad items are Up'd at their last
// position and removed.
func (e *Engine) SetBlockDirectionPad(blocked bool) {
	e.mu.Lock()
	e.blockPad = blocked
	if !blocked {
		e.mu.Unlock()
		return
	}
	type liveItem struct {
		pointerID uint64
		pos       Vec2
	}
	var toRelease []liveItem
	for index, st := range e.padState {
		m := e.b.DirectionPad[index]
		toRelease = append(toRelease, liveItem{m.PointerID, posToVec2(m.Position).Add(st.lastState)})
		delete(e.padState, index)
	}
	e.mu.Unlock()

	for _, item := range toRelease {
		e.touch(wire.ActionUp, item.pointerID, item.pos)
	}
}
