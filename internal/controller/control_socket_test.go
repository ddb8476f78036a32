package controller

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/akichase/scrcpy-mask/internal/registry"
	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeRotation builds the raw device-message bytes for a Rotation event,
// mirroring the wire layout DecodeDevice expects (tag | u16 rot | u32 w | u32 h).
func encodeRotation(rot uint16, w, h uint32) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(wire.DeviceTypeRotation))
	binary.Write(buf, binary.BigEndian, rot)
	binary.Write(buf, binary.BigEndian, w)
	binary.Write(buf, binary.BigEndian, h)
	return buf.Bytes()
}

func TestRunControlReaderAppliesRotationToRegistryAndSize(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Device{SCID: "10111111"}))

	client, server := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rotated struct {
		scid    string
		rot     uint16
		w, h    uint32
		notified bool
	}
	hooks := Hooks{
		OnRotation: func(scid string, rot uint16, w, h uint32) {
			rotated.scid, rotated.rot, rotated.w, rotated.h, rotated.notified = scid, rot, w, h, true
		},
	}

	var size deviceSize
	done := make(chan error, 1)
	go func() {
		done <- runControlReader(ctx, server, "10111111", true, reg, &size, hooks, newDeviceMetrics("rot-test"), newActivityClock())
	}()

	_, err := client.Write(encodeRotation(1, 1080, 1920))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	cancel()
	client.Close()
	server.Close()
	<-done

	assert.True(t, rotated.notified)
	assert.Equal(t, uint16(1), rotated.rot)
	assert.Equal(t, uint32(1080), rotated.w)

	d, ok := reg.Get("10111111")
	require.True(t, ok)
	assert.Equal(t, uint32(1080), d.Width)
	assert.Equal(t, uint32(1920), d.Height)

	w, h := size.Get()
	assert.Equal(t, uint32(1080), w)
	assert.Equal(t, uint32(1920), h)
}

func TestRescaleForDeviceAppliesWriterRescaleRule(t *testing.T) {
	var size deviceSize
	size.Set(100, 100)

	msg := wire.InjectTouchEvent{X: 100, Y: 100, W: 200, H: 200, Pressure: 1.0}
	got := rescaleForDevice(msg, &size).(wire.InjectTouchEvent)

	assert.Equal(t, int32(50), got.X)
	assert.Equal(t, int32(50), got.Y)
	assert.Equal(t, uint16(100), got.W)
	assert.Equal(t, uint16(100), got.H)
}

func TestRescaleForDevicePassesThroughWhenSizeUnknown(t *testing.T) {
	var size deviceSize
	msg := wire.InjectTouchEvent{X: 100, Y: 100, W: 200, H: 200}
	got := rescaleForDevice(msg, &size)
	assert.Equal(t, msg, got)
}

func TestRunControlWriterRescalesAndEncodesBusMessages(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	var size deviceSize
	size.Set(100, 100)

	client, server := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runControlWriter(ctx, server, sub, &size, newDeviceMetrics("writer-test"), newActivityClock())
	}()

	bus.Publish(wire.InjectTouchEvent{Action: wire.ActionDown, X: 100, Y: 100, W: 200, H: 200, Pressure: 1.0})

	readBuf := make([]byte, 32)
	client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(readBuf)
	require.NoError(t, err)
	require.Equal(t, 32, n)

	decoded, err := wire.DecodeControl(bytes.NewReader(readBuf[:n]))
	require.NoError(t, err)
	touch := decoded.(wire.InjectTouchEvent)
	assert.Equal(t, int32(50), touch.X)
	assert.Equal(t, int32(50), touch.Y)

	cancel()
	client.Close()
	server.Close()
	<-done
}

func TestShutdownGracefullyFlushesWithinGrace(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go func() {
		buf := make([]byte, 16)
		client.Read(buf)
	}()

	bw := bufio.NewWriter(server)
	bw.WriteString("hi")
	err := shutdownGracefully(bw)
	assert.NoError(t, err)
}
