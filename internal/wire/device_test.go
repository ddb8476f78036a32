package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDeviceClipboard(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(DeviceTypeClipboard))
	writeU32(&buf, 5)
	buf.WriteString("hello")

	msg, err := DecodeDevice(&buf)
	require.NoError(t, err)
	assert.Equal(t, Clipboard{Text: "hello"}, msg)
}

func TestDecodeDeviceClipboardMalformedUTF8(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(DeviceTypeClipboard))
	writeU32(&buf, 2)
	buf.Write([]byte{0xFF, 0xFE})

	_, err := DecodeDevice(&buf)
	assert.ErrorIs(t, err, ErrMalformedUTF8)
}

func TestDecodeDeviceAckClipboard(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(DeviceTypeAckClipboard))
	writeU64(&buf, 0x0102030405060708)

	msg, err := DecodeDevice(&buf)
	require.NoError(t, err)
	assert.Equal(t, AckClipboard{Sequence: 0x0102030405060708}, msg)
}

func TestDecodeDeviceUhidOutput(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(DeviceTypeUhidOutput))
	writeU16(&buf, 3)
	writeU16(&buf, 4)
	buf.Write([]byte{1, 2, 3, 4})

	msg, err := DecodeDevice(&buf)
	require.NoError(t, err)
	assert.Equal(t, UhidOutput{ID: 3, Data: []byte{1, 2, 3, 4}}, msg)
}

func TestDecodeDeviceRotation(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(DeviceTypeRotation))
	writeU16(&buf, 1)
	writeU32(&buf, 1080)
	writeU32(&buf, 1920)

	msg, err := DecodeDevice(&buf)
	require.NoError(t, err)
	assert.Equal(t, Rotation{Rotation: 1, Width: 1080, Height: 1920}, msg)
}

func TestDecodeDeviceUnknownTagDoesNotAbort(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x7F)

	msg, err := DecodeDevice(&buf)
	require.NoError(t, err)
	assert.Equal(t, Unknown{Type: 0x7F}, msg)
}

func TestDecodeDeviceShortReadIsFatal(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(byte(DeviceTypeAckClipboard))
	buf.Write([]byte{1, 2, 3}) // needs 8 bytes

	_, err := DecodeDevice(&buf)
	assert.Error(t, err)
}
