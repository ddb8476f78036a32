package runtime

import "github.com/akichase/scrcpy-mask/internal/wire"

// observationState is the live state for one activated Observation binding
// (spec §4.3.i): a free-look drag anchored at the binding's own position,
// following the cursor's delta from where it stood at activation.
type observationState struct {
	startCursor Vec2
	maskPos     Vec2
}

// ActivateObservation implements spec §4.3.i's activation branch: Down at
// position, recording the cursor position and the mask-space start point
// that later ticks drag from.
func (e *Engine) ActivateObservation(index int) {
	e.mu.Lock()
	m := e.b.Observation[index]
	pos := posToVec2(m.Position)
	e.observation[index] = &observationState{startCursor: e.cursor, maskPos: pos}
	e.mu.Unlock()

	e.touch(wire.ActionDown, m.PointerID, pos)
}

// UpdateCursorForObservation feeds the live cursor position to every
// currently-active Observation binding, Moving each to
// mask_pos + (cursor - start_cursor) * sensitivity.
func (e *Engine) UpdateCursorForObservation(cursor Vec2) {
	e.mu.Lock()
	if len(e.observation) == 0 {
		e.mu.Unlock()
		return
	}
	type live struct {
		pointerID uint64
		target    Vec2
	}
	var updates []live
	for index, st := range e.observation {
		m := e.b.Observation[index]
		delta := cursor.Sub(st.startCursor).Scale(m.Sensitivity)
		target := st.maskPos.Add(delta)
		updates = append(updates, live{m.PointerID, target})
	}
	e.mu.Unlock()

	for _, u := range updates {
		e.touch(wire.ActionMove, u.pointerID, u.target)
	}
}

// DeactivateObservation implements spec §4.3.i's deactivation branch: Up at
// the last computed drag point.
func (e *Engine) DeactivateObservation(index int) {
	e.mu.Lock()
	m := e.b.Observation[index]
	st, active := e.observation[index]
	if !active {
		e.mu.Unlock()
		return
	}
	delta := e.cursor.Sub(st.startCursor).Scale(m.Sensitivity)
	target := st.maskPos.Add(delta)
	delete(e.observation, index)
	e.mu.Unlock()

	e.touch(wire.ActionUp, m.PointerID, target)
}
