package runtime

import (
	"time"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

func msDuration(ms uint32) time.Duration { return time.Duration(ms) * time.Millisecond }

// ActivateSingleTap implements spec §4.3.a: Down at position; Up
// immediately if sync, else on deactivation. index addresses
// e.b.SingleTap[index].
func (e *Engine) ActivateSingleTap(index int) {
	e.mu.Lock()
	m := e.b.SingleTap[index]
	e.mu.Unlock()

	pos := posToVec2(m.Position)
	e.touch(wire.ActionDown, m.PointerID, pos)

	if !m.Sync {
		go func() {
			sleepMS(m.Duration)
			e.touch(wire.ActionUp, m.PointerID, pos)
		}()
	}
}

// DeactivateSingleTap sends the sync-mode Up. Non-sync taps ignore this:
// their Up was already scheduled on activation (spec §9's documented
// "no latest-activation guard" behavior — kept intentionally).
func (e *Engine) DeactivateSingleTap(index int) {
	e.mu.Lock()
	m := e.b.SingleTap[index]
	e.mu.Unlock()

	if m.Sync {
		e.touch(wire.ActionUp, m.PointerID, posToVec2(m.Position))
	}
}

// ActivateRepeatTap starts the periodic Down-wait-Up timer (spec §4.3.b).
func (e *Engine) ActivateRepeatTap(index int) {
	e.mu.Lock()
	m := e.b.RepeatTap[index]
	if _, running := e.repeatTap[index]; running {
		e.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	e.repeatTap[index] = &repeatTapState{stop: stop}
	e.mu.Unlock()

	go func() {
		pos := posToVec2(m.Position)
		ticker := time.NewTicker(msDuration(m.Interval))
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.touch(wire.ActionDown, m.PointerID, pos)
				sleepMS(m.Duration)
				e.touch(wire.ActionUp, m.PointerID, pos)
			}
		}
	}()
}

// DeactivateRepeatTap cancels the timer.
func (e *Engine) DeactivateRepeatTap(index int) {
	e.mu.Lock()
	st, running := e.repeatTap[index]
	delete(e.repeatTap, index)
	e.mu.Unlock()
	if running {
		close(st.stop)
	}
}

type repeatTapState struct {
	stop chan struct{}
}

// PulseMultipleTap runs the item's ordered wait-Down-wait-Up sequence in
// the background (spec §4.3.c).
func (e *Engine) PulseMultipleTap(index int) {
	e.mu.Lock()
	m := e.b.MultipleTap[index]
	e.mu.Unlock()

	go func() {
		for _, item := range m.Items {
			sleepMS(item.Wait)
			pos := posToVec2(item.Position)
			e.touch(wire.ActionDown, m.PointerID, pos)
			sleepMS(item.Duration)
			e.touch(wire.ActionUp, m.PointerID, pos)
		}
	}()
}
