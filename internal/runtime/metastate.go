package runtime

import (
	"strings"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

// metastateNames is the device's metastate flag spelling (spec §4.4's
// send_key metastate argument), matching the bitflag names the companion
// deserializes.
var metastateNames = map[string]uint32{
	"NONE":            wire.MetaNone,
	"SHIFT_ON":        wire.MetaShiftOn,
	"ALT_ON":          wire.MetaAltOn,
	"SYM_ON":          wire.MetaSymOn,
	"FUNCTION_ON":     wire.MetaFunctionOn,
	"ALT_LEFT_ON":     wire.MetaAltLeftOn,
	"ALT_RIGHT_ON":    wire.MetaAltRightOn,
	"SHIFT_LEFT_ON":   wire.MetaShiftLeftOn,
	"SHIFT_RIGHT_ON":  wire.MetaShiftRightOn,
	"CTRL_ON":         wire.MetaCtrlOn,
	"CTRL_LEFT_ON":    wire.MetaCtrlLeftOn,
	"CTRL_RIGHT_ON":   wire.MetaCtrlRightOn,
	"META_ON":         wire.MetaMetaOn,
	"META_LEFT_ON":    wire.MetaMetaLeftOn,
	"META_RIGHT_ON":   wire.MetaMetaRightOn,
	"CAPS_LOCK_ON":    wire.MetaCapsLockOn,
	"NUM_LOCK_ON":     wire.MetaNumLockOn,
	"SCROLL_LOCK_ON":  wire.MetaScrollLockOn,
}

// parseMetastate parses a "|"-joined set of flag names, e.g.
// "CTRL_ON|SHIFT_ON", into its combined bitmask.
func parseMetastate(s string) (uint32, bool) {
	var bits uint32
	for _, part := range strings.Split(s, "|") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		bit, ok := metastateNames[name]
		if !ok {
			return 0, false
		}
		bits |= bit
	}
	return bits, true
}
