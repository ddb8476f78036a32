package wire

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, spaced string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(spaced, " ", ""))
	require.NoError(t, err)
	return b
}

func TestEncodeInjectKeycode(t *testing.T) {
	got := Encode(InjectKeycode{Action: ActionUp, Keycode: 66, Repeat: 5, Metastate: 0x41})
	want := mustHex(t, "00 01 00 00 00 42 00 00 00 05 00 00 00 41")
	assert.Equal(t, want, got)
	assert.Len(t, got, 14)
}

func TestEncodeInjectText(t *testing.T) {
	got := Encode(InjectText{Text: "hello, world!"})
	want := mustHex(t, "01 00 00 00 0D")
	want = append(want, []byte("hello, world!")...)
	assert.Equal(t, want, got)
}

func TestEncodeInjectTouchEvent(t *testing.T) {
	got := Encode(InjectTouchEvent{
		Action:       ActionDown,
		PointerID:    0x1234567887654321,
		X:            100,
		Y:            200,
		W:            1080,
		H:            1920,
		Pressure:     1.0,
		ActionButton: 0x1,
		Buttons:      0x1,
	})
	want := mustHex(t, "02 00 12 34 56 78 87 65 43 21 00 00 00 64 00 00 00 C8 04 38 07 80 FF FF 00 00 00 01 00 00 00 01")
	assert.Equal(t, want, got)
	assert.Len(t, got, 32)
}

func TestEncodeInjectScrollEvent(t *testing.T) {
	got := Encode(InjectScrollEvent{
		X: 260, Y: 1026, W: 1080, H: 1920,
		HScroll: 1.0, VScroll: -1.0, Buttons: 1,
	})
	want := mustHex(t, "03 00 00 01 04 00 00 04 02 04 38 07 80 7F FF 80 00 00 00 00 01")
	assert.Equal(t, want, got)
	assert.Len(t, got, 21)
}

func TestEncodeSetClipboard(t *testing.T) {
	got := Encode(SetClipboard{Sequence: 0x0102030405060708, Paste: true, Text: "hello, world!"})
	want := mustHex(t, "09 01 02 03 04 05 06 07 08 01 00 00 00 0D")
	want = append(want, []byte("hello, world!")...)
	assert.Equal(t, want, got)
}

func TestFloatToI16FixedBoundaries(t *testing.T) {
	assert.Equal(t, int16(0x7FFF), floatToI16Fixed(1.0))
	assert.Equal(t, int16(-0x8000), floatToI16Fixed(-1.0))
	assert.Equal(t, uint16(0x8000), uint16(floatToI16Fixed(-1.0)))
}

func TestInjectTextTruncatesAtCharBoundary(t *testing.T) {
	// "é" is 2 bytes in UTF-8; pad so the max-length cut falls mid-rune.
	base := strings.Repeat("a", InjectTextMaxLength-1)
	text := base + "é" // last rune would straddle the 300-byte cut
	got := Encode(InjectText{Text: text})

	length := int(got[1])<<24 | int(got[2])<<16 | int(got[3])<<8 | int(got[4])
	assert.LessOrEqual(t, length, InjectTextMaxLength)
	payload := got[5:]
	assert.True(t, len(payload) == length)
	// must not have split the final multi-byte rune
	assert.Truef(t, isValidUTF8Prefix(payload), "payload split a rune: %q", payload)
}

func isValidUTF8Prefix(b []byte) bool {
	for len(b) > 0 {
		r := rune(b[0])
		if r < 0x80 {
			b = b[1:]
			continue
		}
		// any byte whose top bits are a continuation byte at position 0 means
		// we cut mid-rune.
		if r&0xC0 == 0x80 {
			return false
		}
		return true // good enough for this test's single multi-byte case
	}
	return true
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	cases := []ControlMessage{
		InjectKeycode{Action: ActionDown, Keycode: 4, Repeat: 0, Metastate: 0},
		InjectText{Text: "hello"},
		InjectTouchEvent{Action: ActionMove, PointerID: 7, X: -5, Y: 10, W: 100, H: 200, Pressure: 0.5, ActionButton: 1, Buttons: 1},
		InjectScrollEvent{X: 1, Y: 2, W: 3, H: 4, HScroll: 0.25, VScroll: -0.25, Buttons: 0},
		BackOrScreenOn{Action: ActionUp},
		GetClipboard{CopyKey: 1},
		SetClipboard{Sequence: 42, Paste: false, Text: "clip"},
		SetDisplayPower{Mode: 2},
	}
	for _, c := range cases {
		encoded := Encode(c)
		decoded, err := DecodeControl(bytes.NewReader(encoded))
		require.NoError(t, err)
		assert.Equal(t, byte(c.controlType()), encoded[0])

		switch want := c.(type) {
		case InjectTouchEvent:
			got := decoded.(InjectTouchEvent)
			assert.Equal(t, want.Action, got.Action)
			assert.Equal(t, want.PointerID, got.PointerID)
			assert.Equal(t, want.X, got.X)
			assert.Equal(t, want.Y, got.Y)
			assert.InDelta(t, want.Pressure, got.Pressure, 1e-4)
		case InjectScrollEvent:
			got := decoded.(InjectScrollEvent)
			assert.Equal(t, want.X, got.X)
			assert.InDelta(t, want.HScroll, got.HScroll, 1e-4)
			assert.InDelta(t, want.VScroll, got.VScroll, 1e-4)
		default:
			assert.Equal(t, c, decoded)
		}
	}
}
