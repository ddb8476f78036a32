package wire

import (
	"fmt"
	"io"
)

// DecodeControl parses a host→device control message back out of its wire
// encoding. Production code never calls this — the device side decodes
// control messages, not us — but the encoder's round-trip property is
// exercised against it in tests, and a simulated-companion test harness
// can use it to assert on what the controller actually wrote.
func DecodeControl(r io.Reader) (ControlMessage, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}

	switch ControlType(tag[0]) {
	case TypeInjectKeycode:
		action, err := readU8(r)
		if err != nil {
			return nil, err
		}
		keycode, err := readU32(r)
		if err != nil {
			return nil, err
		}
		repeat, err := readU32(r)
		if err != nil {
			return nil, err
		}
		metastate, err := readU32(r)
		if err != nil {
			return nil, err
		}
		return InjectKeycode{Action: action, Keycode: keycode, Repeat: repeat, Metastate: metastate}, nil

	case TypeInjectText:
		text, err := readText(r)
		if err != nil {
			return nil, err
		}
		return InjectText{Text: text}, nil

	case TypeInjectTouchEvent:
		action, err := readU8(r)
		if err != nil {
			return nil, err
		}
		pointerID, err := readU64(r)
		if err != nil {
			return nil, err
		}
		x, err := readI32(r)
		if err != nil {
			return nil, err
		}
		y, err := readI32(r)
		if err != nil {
			return nil, err
		}
		w, err := readU16(r)
		if err != nil {
			return nil, err
		}
		h, err := readU16(r)
		if err != nil {
			return nil, err
		}
		pressure, err := readU16(r)
		if err != nil {
			return nil, err
		}
		actionButton, err := readU32(r)
		if err != nil {
			return nil, err
		}
		buttons, err := readU32(r)
		if err != nil {
			return nil, err
		}
		return InjectTouchEvent{
			Action: action, PointerID: pointerID, X: x, Y: y, W: w, H: h,
			Pressure: float64(pressure) / 65536, ActionButton: actionButton, Buttons: buttons,
		}, nil

	case TypeInjectScrollEvent:
		x, err := readI32(r)
		if err != nil {
			return nil, err
		}
		y, err := readI32(r)
		if err != nil {
			return nil, err
		}
		w, err := readU16(r)
		if err != nil {
			return nil, err
		}
		h, err := readU16(r)
		if err != nil {
			return nil, err
		}
		hs, err := readI16(r)
		if err != nil {
			return nil, err
		}
		vs, err := readI16(r)
		if err != nil {
			return nil, err
		}
		buttons, err := readU32(r)
		if err != nil {
			return nil, err
		}
		return InjectScrollEvent{
			X: x, Y: y, W: w, H: h,
			HScroll: float64(hs) / 32768, VScroll: float64(vs) / 32768, Buttons: buttons,
		}, nil

	case TypeBackOrScreenOn:
		action, err := readU8(r)
		if err != nil {
			return nil, err
		}
		return BackOrScreenOn{Action: action}, nil

	case TypeGetClipboard:
		key, err := readU8(r)
		if err != nil {
			return nil, err
		}
		return GetClipboard{CopyKey: key}, nil

	case TypeSetClipboard:
		seq, err := readU64(r)
		if err != nil {
			return nil, err
		}
		pasteByte, err := readU8(r)
		if err != nil {
			return nil, err
		}
		text, err := readText(r)
		if err != nil {
			return nil, err
		}
		return SetClipboard{Sequence: seq, Paste: pasteByte != 0, Text: text}, nil

	case TypeSetDisplayPower:
		mode, err := readU8(r)
		if err != nil {
			return nil, err
		}
		return SetDisplayPower{Mode: mode}, nil

	case TypeRotateDevice:
		return RotateDevice{}, nil

	case TypeResetVideo:
		return ResetVideo{}, nil

	default:
		return nil, fmt.Errorf("wire: unknown control message type %d", tag[0])
	}
}

func readU8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func readI16(r io.Reader) (int16, error) {
	v, err := readU16(r)
	return int16(v), err
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func readText(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}
