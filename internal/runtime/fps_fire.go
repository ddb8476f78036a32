package runtime

import (
	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/wire"
)

// fireState is one currently-held Fire binding's independent aim point
// (spec §4.3.j: "track an independent current_pos += Δ·fire_sensitivity").
type fireState struct {
	pointerID   uint64
	currentPos  Vec2
	sensitivity Vec2
}

func (e *Engine) sendMaskTouch(action uint8, pointerID uint64, pos Vec2) {
	w, h := e.mask.Get()
	sendTouch(e.bus, action, pointerID, mapping.Size{Width: w, Height: h}, pos)
}

// ToggleFps implements spec §4.3.j's toggle binding: entering Fps teleports
// the cursor to the item's center and Downs there; toggling again while in
// Fps exits, Up'ing at the live cursor.
func (e *Engine) ToggleFps(index int) {
	e.mu.Lock()
	if e.cursorMode == CursorFps {
		pointerID := e.fpsPointerID
		live := e.cursor
		e.cursorMode = CursorNormal
		e.fpsActive = false
		e.mu.Unlock()
		e.sendMaskTouch(wire.ActionUp, pointerID, live)
		return
	}

	m := e.b.Fps[index]
	center, _ := e.rescale(posToVec2(m.Position))
	e.fpsPointerID = m.PointerID
	e.fpsCenter = center
	e.fpsSensitivity = Vec2{m.SensitivityX, m.SensitivityY}
	e.ignoreFpsMotion = false
	e.cursor = center
	e.cursorMode = CursorFps
	e.fpsActive = true
	e.fpsIndex = index
	e.mu.Unlock()

	e.sendMaskTouch(wire.ActionDown, m.PointerID, center)
}

// UpdateFpsMotion feeds one tick of raw mouse delta while in Fps mode (spec
// §4.3.j). When the candidate position would leave the FPS_MARGIN-shrunk
// mask rectangle, it performs a re-center stroke (move to the edge, up,
// down at center, then apply the remainder — once) instead of letting the
// touch point run off the mask.
func (e *Engine) UpdateFpsMotion(delta Vec2) {
	e.mu.Lock()
	if e.cursorMode != CursorFps || e.ignoreFpsMotion {
		e.mu.Unlock()
		return
	}
	w, h := e.mask.Get()
	margin := float32(mapping.FPSMargin)
	cur := e.cursor
	center := e.fpsCenter
	pointerID := e.fpsPointerID

	oob := func(p Vec2) bool {
		return p.X < margin || p.X > float32(w)-margin || p.Y < margin || p.Y > float32(h)-margin
	}
	clamp := func(p Vec2) Vec2 {
		return Vec2{clampf(p.X, margin, float32(w)-margin), clampf(p.Y, margin, float32(h)-margin)}
	}

	newPos := cur.Add(Vec2{delta.X * e.fpsSensitivity.X, delta.Y * e.fpsSensitivity.Y})

	type step struct {
		action uint8
		pos    Vec2
	}
	var steps []step
	final := newPos

	if !oob(newPos) {
		steps = append(steps, step{wire.ActionMove, newPos})
	} else {
		edge := clamp(newPos)
		remainder := newPos.Sub(cur).Sub(edge.Sub(cur))
		steps = append(steps, step{wire.ActionMove, edge}, step{wire.ActionUp, edge}, step{wire.ActionDown, center})

		newPos2 := center.Add(remainder)
		if !oob(newPos2) {
			steps = append(steps, step{wire.ActionMove, newPos2})
			final = newPos2
		} else {
			edge2 := clamp(newPos2)
			steps = append(steps, step{wire.ActionMove, edge2}, step{wire.ActionUp, edge2}, step{wire.ActionDown, center})
			final = edge2
		}
	}
	e.cursor = final
	e.mu.Unlock()

	for _, s := range steps {
		e.sendMaskTouch(s.action, pointerID, s.pos)
	}
}

// ActivateFire implements spec §4.3.j's Fire-press branch: suspend Fps
// motion, Up the Fps pointer at the live cursor, Down at the Fire binding's
// own position, and start tracking its independent current_pos.
func (e *Engine) ActivateFire(index int) {
	e.mu.Lock()
	if _, active := e.fire[index]; active {
		e.mu.Unlock()
		return
	}
	m := e.b.Fire[index]

	var fpsPointer uint64
	var fpsPos Vec2
	hadFps := e.cursorMode == CursorFps
	if hadFps {
		e.ignoreFpsMotion = true
		fpsPointer = e.fpsPointerID
		fpsPos = e.cursor
	}

	anchor, _ := e.rescale(posToVec2(m.Position))
	e.fire[index] = &fireState{
		pointerID:   m.PointerID,
		currentPos:  anchor,
		sensitivity: Vec2{m.SensitivityX, m.SensitivityY},
	}
	e.mu.Unlock()

	if hadFps {
		e.sendMaskTouch(wire.ActionUp, fpsPointer, fpsPos)
	}
	e.sendMaskTouch(wire.ActionDown, m.PointerID, anchor)
}

// UpdateFireMotion feeds raw mouse delta to every currently-held Fire
// binding, each tracking its own current_pos independently.
func (e *Engine) UpdateFireMotion(delta Vec2) {
	e.mu.Lock()
	if len(e.fire) == 0 {
		e.mu.Unlock()
		return
	}
	type live struct {
		pointerID uint64
		pos       Vec2
	}
	var updates []live
	for _, st := range e.fire {
		st.currentPos = st.currentPos.Add(Vec2{delta.X * st.sensitivity.X, delta.Y * st.sensitivity.Y})
		updates = append(updates, live{st.pointerID, st.currentPos})
	}
	e.mu.Unlock()

	for _, u := range updates {
		e.sendMaskTouch(wire.ActionMove, u.pointerID, u.pos)
	}
}

// DeactivateFire implements spec §4.3.j's Fire-release branch: Up the Fire
// pointer, then Down at the Fps center, reset the cursor to center, and
// resume Fps motion.
func (e *Engine) DeactivateFire(index int) {
	e.mu.Lock()
	st, active := e.fire[index]
	if !active {
		e.mu.Unlock()
		return
	}
	delete(e.fire, index)

	resumeFps := e.cursorMode == CursorFps
	var fpsPointer uint64
	var center Vec2
	if resumeFps {
		fpsPointer = e.fpsPointerID
		center = e.fpsCenter
		e.cursor = center
		e.ignoreFpsMotion = false
	}
	e.mu.Unlock()

	e.sendMaskTouch(wire.ActionUp, st.pointerID, st.currentPos)
	if resumeFps {
		e.sendMaskTouch(wire.ActionDown, fpsPointer, center)
	}
}
