package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DeviceMsgType is the 1-byte discriminator of a device→host message.
type DeviceMsgType uint8

const (
	DeviceTypeClipboard    DeviceMsgType = 0
	DeviceTypeAckClipboard DeviceMsgType = 1
	DeviceTypeUhidOutput   DeviceMsgType = 2
	DeviceTypeRotation     DeviceMsgType = 3
)

// ErrMalformedUTF8 is returned when a Clipboard message's payload is not
// valid UTF-8. Per spec this is fatal to the owning control socket.
var ErrMalformedUTF8 = errors.New("wire: malformed UTF-8 in clipboard payload")

// DeviceMessage is any device→host message decoded off a control socket.
type DeviceMessage interface {
	deviceType() DeviceMsgType
}

type Clipboard struct {
	Text string
}

func (Clipboard) deviceType() DeviceMsgType { return DeviceTypeClipboard }

type AckClipboard struct {
	Sequence uint64
}

func (AckClipboard) deviceType() DeviceMsgType { return DeviceTypeAckClipboard }

type UhidOutput struct {
	ID   uint16
	Data []byte
}

func (UhidOutput) deviceType() DeviceMsgType { return DeviceTypeUhidOutput }

type Rotation struct {
	Rotation     uint16
	Width, Height uint32
}

func (Rotation) deviceType() DeviceMsgType { return DeviceTypeRotation }

// Unknown wraps a message whose type tag isn't one we recognize. It is
// never fatal: the caller logs and continues reading the stream.
type Unknown struct {
	Type DeviceMsgType
}

func (Unknown) deviceType() DeviceMsgType { return 0xFF }

// DecodeDevice reads exactly one device message from r. A short read
// anywhere in the fixed-layout header or the payload is fatal to the
// socket and is returned as-is (typically io.ErrUnexpectedEOF or io.EOF);
// the caller is expected to close the connection on any non-nil error other
// than via Unknown, which is never an error.
func DecodeDevice(r io.Reader) (DeviceMessage, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}

	switch DeviceMsgType(tag[0]) {
	case DeviceTypeClipboard:
		n, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read clipboard length: %w", err)
		}
		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("wire: read clipboard payload: %w", err)
		}
		if !utf8.Valid(data) {
			return nil, ErrMalformedUTF8
		}
		return Clipboard{Text: string(data)}, nil

	case DeviceTypeAckClipboard:
		seq, err := readU64(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read ack clipboard sequence: %w", err)
		}
		return AckClipboard{Sequence: seq}, nil

	case DeviceTypeUhidOutput:
		id, err := readU16(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read uhid id: %w", err)
		}
		size, err := readU16(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read uhid size: %w", err)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("wire: read uhid payload: %w", err)
		}
		return UhidOutput{ID: id, Data: data}, nil

	case DeviceTypeRotation:
		rot, err := readU16(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read rotation: %w", err)
		}
		w, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read rotation width: %w", err)
		}
		h, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read rotation height: %w", err)
		}
		return Rotation{Rotation: rot, Width: w, Height: h}, nil

	default:
		return Unknown{Type: DeviceMsgType(tag[0])}, nil
	}
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
