package wire

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// ControlType is the 1-byte discriminator of a host→device control message.
type ControlType uint8

const (
	TypeInjectKeycode    ControlType = 0
	TypeInjectText       ControlType = 1
	TypeInjectTouchEvent ControlType = 2
	TypeInjectScrollEvent ControlType = 3
	TypeBackOrScreenOn   ControlType = 4
	TypeGetClipboard     ControlType = 8
	TypeSetClipboard     ControlType = 9
	TypeSetDisplayPower  ControlType = 10
	TypeRotateDevice     ControlType = 11
	TypeResetVideo       ControlType = 17
)

// Action values shared by key and touch/back events.
const (
	ActionDown = 0
	ActionUp   = 1
	ActionMove = 2
)

// Metastate bits InjectKeycode reports (Android KeyEvent.META_* values).
// RawInput mode only ever sets Shift/Alt/Ctrl (lock states are
// intentionally not tracked there); the full set exists for the script
// engine's send_key, which accepts an arbitrary metastate string.
const (
	MetaNone         = 0x000000
	MetaShiftOn      = 0x000001
	MetaAltOn        = 0x000002
	MetaSymOn        = 0x000004
	MetaFunctionOn   = 0x000008
	MetaAltLeftOn    = 0x000010
	MetaAltRightOn   = 0x000020
	MetaShiftLeftOn  = 0x000040
	MetaShiftRightOn = 0x000080
	MetaCtrlOn       = 0x001000
	MetaCtrlLeftOn   = 0x002000
	MetaCtrlRightOn  = 0x004000
	MetaMetaOn       = 0x010000
	MetaMetaLeftOn   = 0x020000
	MetaMetaRightOn  = 0x040000
	MetaCapsLockOn   = 0x100000
	MetaNumLockOn    = 0x200000
	MetaScrollLockOn = 0x400000
)

// InjectTextMaxLength is the maximum byte length of an InjectText payload.
const InjectTextMaxLength = 300

// SetClipboardMaxLength is the maximum byte length of a SetClipboard payload:
// 2^18 - 14, leaving room for the fixed-size header within a 256KiB message.
const SetClipboardMaxLength = (1 << 18) - 14

// ControlMessage is any host→device control message. Implementations are
// the concrete structs below; Encode dispatches on the concrete type so the
// set is closed (a Go "tagged variant").
type ControlMessage interface {
	controlType() ControlType
}

type InjectKeycode struct {
	Action    uint8
	Keycode   uint32
	Repeat    uint32
	Metastate uint32
}

func (InjectKeycode) controlType() ControlType { return TypeInjectKeycode }

type InjectText struct {
	Text string
}

func (InjectText) controlType() ControlType { return TypeInjectText }

type InjectTouchEvent struct {
	Action       uint8
	PointerID    uint64
	X, Y         int32
	W, H         uint16
	Pressure     float64 // [0,1]
	ActionButton uint32
	Buttons      uint32
}

func (InjectTouchEvent) controlType() ControlType { return TypeInjectTouchEvent }

type InjectScrollEvent struct {
	X, Y           int32
	W, H           uint16
	HScroll, VScroll float64 // [-1,1]
	Buttons        uint32
}

func (InjectScrollEvent) controlType() ControlType { return TypeInjectScrollEvent }

type BackOrScreenOn struct {
	Action uint8
}

func (BackOrScreenOn) controlType() ControlType { return TypeBackOrScreenOn }

type GetClipboard struct {
	CopyKey uint8
}

func (GetClipboard) controlType() ControlType { return TypeGetClipboard }

type SetClipboard struct {
	Sequence uint64
	Paste    bool
	Text     string
}

func (SetClipboard) controlType() ControlType { return TypeSetClipboard }

type SetDisplayPower struct {
	Mode uint8
}

func (SetDisplayPower) controlType() ControlType { return TypeSetDisplayPower }

type RotateDevice struct{}

func (RotateDevice) controlType() ControlType { return TypeRotateDevice }

type ResetVideo struct{}

func (ResetVideo) controlType() ControlType { return TypeResetVideo }

// Encode serializes msg into its wire layout, network (big-endian) byte
// order throughout.
func Encode(msg ControlMessage) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(msg.controlType()))

	switch m := msg.(type) {
	case InjectKeycode:
		buf.WriteByte(m.Action)
		writeU32(buf, m.Keycode)
		writeU32(buf, m.Repeat)
		writeU32(buf, m.Metastate)

	case InjectText:
		writeText(buf, m.Text, InjectTextMaxLength)

	case InjectTouchEvent:
		buf.WriteByte(m.Action)
		writeU64(buf, m.PointerID)
		writeI32(buf, m.X)
		writeI32(buf, m.Y)
		writeU16(buf, m.W)
		writeU16(buf, m.H)
		writeU16(buf, floatToU16Fixed(m.Pressure))
		writeU32(buf, m.ActionButton)
		writeU32(buf, m.Buttons)

	case InjectScrollEvent:
		writeI32(buf, m.X)
		writeI32(buf, m.Y)
		writeU16(buf, m.W)
		writeU16(buf, m.H)
		writeI16(buf, floatToI16Fixed(m.HScroll))
		writeI16(buf, floatToI16Fixed(m.VScroll))
		writeU32(buf, m.Buttons)

	case BackOrScreenOn:
		buf.WriteByte(m.Action)

	case GetClipboard:
		buf.WriteByte(m.CopyKey)

	case SetClipboard:
		writeU64(buf, m.Sequence)
		if m.Paste {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		writeText(buf, m.Text, SetClipboardMaxLength)

	case SetDisplayPower:
		buf.WriteByte(m.Mode)

	case RotateDevice, ResetVideo:
		// header only

	default:
		panic("wire: unhandled ControlMessage type")
	}

	return buf.Bytes()
}

// writeText writes a u32 length prefix followed by the UTF-8 bytes of s,
// truncated at the last full rune boundary not exceeding maxBytes.
func writeText(buf *bytes.Buffer, s string, maxBytes int) {
	truncated := truncateUTF8(s, maxBytes)
	writeU32(buf, uint32(len(truncated)))
	buf.WriteString(truncated)
}

// truncateUTF8 trims s to at most maxBytes bytes without splitting a rune.
func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	b := s[:maxBytes]
	for len(b) > 0 {
		r, size := utf8.DecodeLastRuneInString(b)
		if r != utf8.RuneError || size != 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeI16(buf *bytes.Buffer, v int16) {
	writeU16(buf, uint16(v))
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeI32(buf *bytes.Buffer, v int32) {
	writeU32(buf, uint32(v))
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
