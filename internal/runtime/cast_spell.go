package runtime

import (
	"fmt"
	"time"

	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/wire"
)

// castState is the single process-wide active-cast-spell record (spec
// §3/§4.3.f/g): at most one cast spell is active at a time, whether it was
// triggered by a MouseCastSpell or a PadCastSpell binding.
type castState struct {
	key       string // "Mouse#<index>" or "Pad#<index>", for the same-action-stops rule
	pointerID uint64
	isPad     bool
	ownsBlock bool // true if this cast set the pad-block latch

	// mouse fields
	center, anchor         Vec2
	dragRadius, castRadius float32
	hScale, vScale         float32
	castNoDirection        bool

	// pad fields
	padIndex int

	currentPos Vec2
	enabled    bool
}

const castSpellDelayMS = mapping.CastSpellDelayMS

func castMouseKey(index int) string { return fmt.Sprintf("Mouse#%d", index) }
func castPadKey(index int) string   { return fmt.Sprintf("Pad#%d", index) }

// currentPosMouse implements spec §4.3.f's current_pos(cursor): anisotropic
// delta shrink onto a circle, then clamp to cast_radius and scale into
// drag_radius.
func currentPosMouse(cursor, center, anchor Vec2, dragRadius, castRadius, hScale, vScale float32) Vec2 {
	delta := cursor.Sub(center)
	ratio := float32(1)
	if hScale >= vScale {
		if hScale != 0 {
			ratio = vScale / hScale
		}
		delta.X *= ratio
	} else {
		if vScale != 0 {
			ratio = hScale / vScale
		}
		delta.Y *= ratio
	}
	effectiveCastRadius := castRadius * ratio
	if l := delta.Len(); l > effectiveCastRadius {
		delta = delta.Normalized().Scale(dragRadius)
	} else if effectiveCastRadius != 0 {
		delta = delta.Scale(dragRadius / effectiveCastRadius)
	}
	return anchor.Add(delta)
}

// releaseActiveCast ups the currently active cast (if any) and clears it,
// releasing the pad-block latch if the cast owned it. Must be called with
// e.mu unlocked; it takes and releases the lock itself.
func (e *Engine) releaseActiveCast() {
	e.mu.Lock()
	cast := e.cast
	e.cast = nil
	e.mu.Unlock()
	if cast == nil {
		return
	}
	e.touch(wire.ActionUp, cast.pointerID, cast.currentPos)
	if cast.ownsBlock {
		e.SetBlockDirectionPad(false)
	}
}

// ActivateMouseCastSpell implements spec §4.3.f's activation branch.
func (e *Engine) ActivateMouseCastSpell(index int) {
	key := castMouseKey(index)

	e.mu.Lock()
	m := e.b.MouseCastSpell[index]
	if e.cast != nil {
		if e.cast.key == key {
			// OnSecondPress completes: same action pressed again.
			e.mu.Unlock()
			e.releaseActiveCast()
			return
		}
		e.mu.Unlock()
		e.releaseActiveCast()
	} else {
		e.mu.Unlock()
	}

	anchor := posToVec2(m.Position)
	center := posToVec2(m.CenterPosition)
	cast := &castState{
		key: key, pointerID: m.PointerID,
		center: center, anchor: anchor, currentPos: anchor,
		dragRadius: m.DragRadius, castRadius: m.CastRadius,
		hScale: m.HorizontalScaleFactor, vScale: m.VerticalScaleFactor,
		castNoDirection: m.CastNoDirection,
	}
	e.mu.Lock()
	e.cast = cast
	e.mu.Unlock()

	e.touch(wire.ActionDown, m.PointerID, anchor)
	go e.settleMouseCast(index, cast, m)
}

func (e *Engine) settleMouseCast(index int, cast *castState, m mapping.MouseCastSpell) {
	settleDiagonalJitter(e, cast.pointerID, cast.anchor)

	if !cast.castNoDirection {
		cursor := e.Cursor()
		target := currentPosMouse(cursor, cast.center, cast.anchor, cast.dragRadius, cast.castRadius, cast.hScale, cast.vScale)
		moveInSteps(e, cast.pointerID, cast.anchor, target, MinMoveStepLength)
		e.mu.Lock()
		if e.cast == cast {
			cast.currentPos = target
		}
		e.mu.Unlock()
	}

	e.mu.Lock()
	stillActive := e.cast == cast
	if stillActive {
		cast.enabled = true
	}
	e.mu.Unlock()
	if !stillActive {
		return
	}

	if m.ReleaseMode == mapping.ReleaseOnPress {
		e.releaseActiveCast()
	}
}

// UpdateCursorForCast is called whenever the live cursor moves; while a
// mouse cast spell is active and past its settle window, it tracks the
// cursor with a Move (spec §4.3.f's "per-tick while active and enabled").
func (e *Engine) UpdateCursorForCast(cursor Vec2) {
	e.mu.Lock()
	cast := e.cast
	if cast == nil || cast.isPad || !cast.enabled {
		e.mu.Unlock()
		return
	}
	target := currentPosMouse(cursor, cast.center, cast.anchor, cast.dragRadius, cast.castRadius, cast.hScale, cast.vScale)
	cast.currentPos = target
	pointerID := cast.pointerID
	e.mu.Unlock()
	e.touch(wire.ActionMove, pointerID, target)
}

// DeactivateMouseCastSpell handles the OnRelease release mode; OnPress and
// OnSecondPress already resolved at activation.
func (e *Engine) DeactivateMouseCastSpell(index int) {
	e.mu.Lock()
	m := e.b.MouseCastSpell[index]
	cast := e.cast
	e.mu.Unlock()
	if cast == nil || cast.key != castMouseKey(index) || m.ReleaseMode != mapping.ReleaseOnRelease {
		return
	}
	e.releaseActiveCast()
}

// ActivatePadCastSpell implements spec §4.3.g.
func (e *Engine) ActivatePadCastSpell(index int) {
	key := castPadKey(index)

	e.mu.Lock()
	hadCast := e.cast != nil
	sameAction := hadCast && e.cast.key == key
	e.mu.Unlock()
	if hadCast {
		e.releaseActiveCast()
	}
	if sameAction {
		// OnSecondPress completes: same action pressed again.
		return
	}

	e.mu.Lock()
	m := e.b.PadCastSpell[index]
	position := posToVec2(m.Position)
	cast := &castState{
		key: key, pointerID: m.PointerID, isPad: true, padIndex: index,
		anchor: position, currentPos: position,
		dragRadius: m.DragRadius,
	}
	if m.BlockDirectionPad {
		cast.ownsBlock = true
	}
	e.cast = cast
	e.mu.Unlock()

	if m.BlockDirectionPad {
		e.SetBlockDirectionPad(true)
	}

	e.touch(wire.ActionDown, m.PointerID, position)
	go func() {
		settleDiagonalJitter(e, m.PointerID, position)
		e.mu.Lock()
		if e.cast == cast {
			cast.enabled = true
		}
		e.mu.Unlock()
	}()
}

// UpdatePadCastDirection feeds the pad-cast aim binding's live state; Moves
// whenever the clamped position changes (spec §4.3.g).
func (e *Engine) UpdatePadCastDirection(index int, inState Vec2) {
	e.mu.Lock()
	cast := e.cast
	if cast == nil || !cast.isPad || cast.padIndex != index || !cast.enabled {
		e.mu.Unlock()
		return
	}
	clamped := inState
	if l := clamped.Len(); l > 1 {
		clamped = clamped.Normalized()
	}
	target := cast.anchor.Add(clamped.Scale(cast.dragRadius))
	if target == cast.currentPos {
		e.mu.Unlock()
		return
	}
	cast.currentPos = target
	pointerID := cast.pointerID
	e.mu.Unlock()
	e.touch(wire.ActionMove, pointerID, target)
}

// DeactivatePadCastSpell handles OnRelease; OnSecondPress is resolved by a
// subsequent ActivatePadCastSpell call on the same binding.
func (e *Engine) DeactivatePadCastSpell(index int) {
	e.mu.Lock()
	m := e.b.PadCastSpell[index]
	cast := e.cast
	e.mu.Unlock()
	if cast == nil || cast.key != castPadKey(index) || m.ReleaseMode != mapping.ReleaseOnRelease {
		return
	}
	e.releaseActiveCast()
}

// PulseCancelCast implements spec §4.3.h: interpolate from the active
// cast's current position toward cancel_position (<=5 steps of
// <=MIN_MOVE_STEP_LENGTH), a 10x5ms jitter pause, then Up at
// cancel_position.
func (e *Engine) PulseCancelCast(index int) {
	e.mu.Lock()
	m := e.b.CancelCast[index]
	cast := e.cast
	e.mu.Unlock()
	if cast == nil {
		return
	}

	target := posToVec2(m.CancelPosition)
	from := cast.currentPos
	steps := stepsForDistance(from, target, MinMoveStepLength, 1)
	if steps > 5 {
		steps = 5
	}
	for s := 1; s <= steps; s++ {
		t := float32(s) / float32(steps)
		e.touch(wire.ActionMove, cast.pointerID, from.Lerp(target, t))
		time.Sleep(5 * time.Millisecond)
	}
	for i := 0; i < 10; i++ {
		e.touch(wire.ActionMove, cast.pointerID, Vec2{target.X + 5, target.Y})
		time.Sleep(5 * time.Millisecond)
	}

	e.mu.Lock()
	if e.cast == cast {
		e.cast = nil
	}
	e.mu.Unlock()
	e.touch(wire.ActionUp, cast.pointerID, target)
	if cast.ownsBlock {
		e.SetBlockDirectionPad(false)
	}
}

// settleDiagonalJitter is the small diagonal-steps settle a cast-spell Down
// does before it starts tracking, spread over ~50ms.
func settleDiagonalJitter(e *Engine, pointerID uint64, at Vec2) {
	const steps = 3
	for i := 1; i <= steps; i++ {
		jitter := Vec2{at.X + float32(i), at.Y + float32(i)}
		e.touch(wire.ActionMove, pointerID, jitter)
		time.Sleep(time.Duration(castSpellDelayMS/steps) * time.Millisecond)
	}
	e.touch(wire.ActionMove, pointerID, at)
}

// moveInSteps interpolates from..to in at least 2 steps of length
// <= maxStepLength.
func moveInSteps(e *Engine, pointerID uint64, from, to Vec2, maxStepLength float32) {
	steps := stepsForDistance(from, to, maxStepLength, 2)
	for s := 1; s <= steps; s++ {
		t := float32(s) / float32(steps)
		e.touch(wire.ActionMove, pointerID, from.Lerp(to, t))
	}
}

func stepsForDistance(from, to Vec2, maxStepLength float32, minSteps int) int {
	dist := to.Sub(from).Len()
	steps := minSteps
	if maxStepLength > 0 {
		if n := int(dist/maxStepLength) + 1; n > steps {
			steps = n
		}
	}
	return steps
}
