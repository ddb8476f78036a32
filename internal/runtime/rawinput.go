package runtime

import (
	"math/rand"

	"github.com/go-vgo/robotgo"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

// rawInputHoldExitDuration is how long the right mouse button must be held
// to exit RawInput mode (spec §4.3.k).
const rawInputHoldExitDurationMS = 1000

// rawInputState is RawInput mode's per-session bookkeeping: it is reset
// fresh on every EnterRawInput.
type rawInputState struct {
	keyRepeat           map[uint32]uint32
	rightMouseHoldSince int64 // unix ms; 0 means not currently held
}

// Modifiers is the live keyboard modifier set RawInput key events are
// reported against; lock states are intentionally not tracked (spec
// §4.3.k).
type Modifiers struct {
	Shift, Ctrl, Alt bool
}

func (m Modifiers) metastate() uint32 {
	var bits uint32
	if m.Shift {
		bits |= wire.MetaShiftOn
	}
	if m.Alt {
		bits |= wire.MetaAltOn
	}
	if m.Ctrl {
		bits |= wire.MetaCtrlOn
	}
	return bits
}

// EnterRawInput switches the top-level mapping mode to RawInput, clearing
// the key-repeat counters and the right-mouse-hold timer.
func (e *Engine) EnterRawInput() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mappingMode = ModeRawInput
	e.rawInput = &rawInputState{keyRepeat: make(map[uint32]uint32)}
}

// ExitRawInput returns to Normal mode.
func (e *Engine) ExitRawInput() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mappingMode = ModeNormal
	e.rawInput = nil
}

// RawInputMode reports whether the engine is currently in RawInput mode.
func (e *Engine) RawInputMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mappingMode == ModeRawInput
}

// RawInputKeyEvent delivers one platform keyboard event while in RawInput
// mode (spec §4.3.k). Unmapped keys are dropped. Ctrl+V is intercepted into
// a clipboard paste instead of an InjectKeycode.
func (e *Engine) RawInputKeyEvent(name string, down bool, mods Modifiers) {
	e.mu.Lock()
	st := e.rawInput
	if st == nil {
		e.mu.Unlock()
		return
	}

	if mods.Ctrl && name == "v" && down {
		e.mu.Unlock()
		e.pasteHostClipboard()
		return
	}

	keycode, ok := lookupKeycode(name)
	if !ok {
		e.mu.Unlock()
		return
	}

	var repeat uint32
	if down {
		repeat = st.keyRepeat[keycode]
		st.keyRepeat[keycode] = repeat + 1
	} else {
		delete(st.keyRepeat, keycode)
	}
	metastate := mods.metastate()
	e.mu.Unlock()

	sendKeycode(e.bus, keycode, metastate, down, repeat)
}

// pasteHostClipboard reads the host clipboard and publishes it as a
// SetClipboard{paste:true}.
func (e *Engine) pasteHostClipboard() {
	text, err := robotgo.ReadAll()
	if err != nil {
		return
	}
	e.bus.Publish(wire.SetClipboard{Sequence: rand.Uint64(), Paste: true, Text: text})
}

// RawInputRightMouseDown/Up track the hold-to-exit rule: holding the right
// mouse button for >= 1s exits RawInput mode. The caller is expected to
// poll RawInputRightMouseHeldLongEnough (or call RawInputRightMouseUp on
// release) on its own timer/tick.
func (e *Engine) RawInputRightMouseDown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rawInput == nil {
		return
	}
	if e.rawInput.rightMouseHoldSince == 0 {
		e.rawInput.rightMouseHoldSince = nowMS()
	}
}

func (e *Engine) RawInputRightMouseUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rawInput == nil {
		return
	}
	e.rawInput.rightMouseHoldSince = 0
}

// RawInputRightMouseHeldLongEnough reports whether the right mouse button
// has now been held >= rawInputHoldExitDurationMS; callers poll this on
// tick and call ExitRawInput when it returns true.
func (e *Engine) RawInputRightMouseHeldLongEnough() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rawInput == nil || e.rawInput.rightMouseHoldSince == 0 {
		return false
	}
	return nowMS()-e.rawInput.rightMouseHoldSince >= rawInputHoldExitDurationMS
}
