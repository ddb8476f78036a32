package runtime

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

// scriptHost adapts an Engine to script.Host, so script-invoked builtins
// publish through the same rescale/bus path every other gesture uses.
// send_key resolves key names against Table T-KC (keycodeTable), the same
// table RawInput uses, rather than the separate Rust Keycode enum spelling
// original_source's send_key_func accepted — one key-name vocabulary for
// the whole engine.
type scriptHost struct{ e *Engine }

func (h scriptHost) Tap(pointerID uint64, x, y int32, action string) error {
	act, ok := touchActionFor(action)
	if !ok {
		return fmt.Errorf("unknown tap action %q", action)
	}
	h.e.touch(act, pointerID, Vec2{X: float32(x), Y: float32(y)})
	return nil
}

func (h scriptHost) Swipe(pointerID uint64, intervalMS uint64, points [][2]int32) error {
	if len(points) == 0 {
		return fmt.Errorf("swipe requires at least one point")
	}
	vpoints := make([]Vec2, len(points))
	for i, p := range points {
		vpoints[i] = Vec2{X: float32(p[0]), Y: float32(p[1])}
	}
	h.e.runSwipe(pointerID, intervalMS, vpoints)
	return nil
}

func (h scriptHost) SendKey(name, action, metastate string) error {
	keycode, ok := lookupKeycode(name)
	if !ok {
		return fmt.Errorf("unknown key %q", name)
	}
	bits, ok := parseMetastate(metastate)
	if !ok {
		return fmt.Errorf("unknown metastate %q", metastate)
	}
	sendKeycode(h.e.bus, keycode, bits, action == "down", 0)
	return nil
}

func (h scriptHost) PasteText(text string) error {
	h.e.bus.Publish(wire.SetClipboard{Sequence: rand.Uint64(), Paste: true, Text: text})
	return nil
}

func (h scriptHost) Log(line string) { log.Info().Msg(line) }

func touchActionFor(action string) (uint8, bool) {
	switch action {
	case "down":
		return wire.ActionDown, true
	case "up":
		return wire.ActionUp, true
	case "move":
		return wire.ActionMove, true
	default:
		return 0, false
	}
}
