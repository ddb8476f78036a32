package runtime

// keycodeTable is Table T-KC (spec §6): platform key name -> Android
// KeyEvent keycode. Key names follow the teacher's cross-platform key
// vocabulary (the same lower-case names `github.com/vcaesar/keycode`
// exposes for `robotgo.KeyTap`), not a single OS's native virtual-key
// codes, so one table serves every client platform.
//
// A key with no entry is dropped (spec §4.3.k): RawInput simply emits
// nothing for it rather than guessing.
var keycodeTable = map[string]uint32{
	"0": 7, "1": 8, "2": 9, "3": 10, "4": 11,
	"5": 12, "6": 13, "7": 14, "8": 15, "9": 16,

	"a": 29, "b": 30, "c": 31, "d": 32, "e": 33, "f": 34, "g": 35,
	"h": 36, "i": 37, "j": 38, "k": 39, "l": 40, "m": 41, "n": 42,
	"o": 43, "p": 44, "q": 45, "r": 46, "s": 47, "t": 48, "u": 49,
	"v": 50, "w": 51, "x": 52, "y": 53, "z": 54,

	"comma": 55, "period": 56, "space": 62, "tab": 61, "enter": 66,
	"backspace": 67, "delete": 112, "escape": 111, "grave": 68,
	"minus": 69, "equal": 70, "left_bracket": 71, "right_bracket": 72,
	"backslash": 73, "semicolon": 74, "apostrophe": 75, "slash": 76,
	"star": 17, "plus": 81, "at": 77, "pound": 18,

	"up": 19, "down": 20, "left": 21, "right": 22,
	"home": 3, "end": 123, "page_up": 92, "page_down": 93,
	"insert": 124, "caps_lock": 115,

	"shift": 59, "shift_left": 59, "shift_right": 60,
	"ctrl": 113, "ctrl_left": 113, "ctrl_right": 114,
	"alt": 57, "alt_left": 57, "alt_right": 58,
	"meta": 117, "meta_left": 117, "meta_right": 118,

	"f1": 131, "f2": 132, "f3": 133, "f4": 134, "f5": 135, "f6": 136,
	"f7": 137, "f8": 138, "f9": 139, "f10": 140, "f11": 141, "f12": 142,

	"num0": 144, "num1": 145, "num2": 146, "num3": 147, "num4": 148,
	"num5": 149, "num6": 150, "num7": 151, "num8": 152, "num9": 153,
	"num_divide": 154, "num_multiply": 155, "num_subtract": 156,
	"num_add": 157, "num_dot": 158, "num_enter": 160, "num_lock": 143,

	"volume_up": 24, "volume_down": 25, "volume_mute": 164,
	"media_play_pause": 85, "media_stop": 86, "media_next": 87,
	"media_previous": 88,
}

// lookupKeycode resolves a platform key name to its Android keycode.
func lookupKeycode(name string) (uint32, bool) {
	code, ok := keycodeTable[name]
	return code, ok
}

// LookupKeycode exports Table T-KC for callers outside the package (the
// facade's `/api/device/control/send_key` endpoint resolves key names
// against the same table RawInput and the script engine use, per spec
// §6's single shared T-KC).
func LookupKeycode(name string) (uint32, bool) { return lookupKeycode(name) }
