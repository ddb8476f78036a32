package controller

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/akichase/scrcpy-mask/internal/registry"
	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/rs/zerolog/log"
)

// Hooks lets the facade observe controller-driven events without the
// controller package depending on the facade.
type Hooks struct {
	OnConnectionChanged func(scid string, connected bool)
	OnRotation          func(scid string, rot uint16, w, h uint32)
	OnClipboard         func(scid string, text string)
	OnAckClipboard      func(scid string, seq uint64)
}

// readDeviceName consumes up to deviceNameMaxBytes of a NUL-terminated (or
// buffer-length) device name from the first control connection for a
// device.
func readDeviceName(r io.Reader) (string, error) {
	buf := make([]byte, deviceNameMaxBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("controller: read device name: %w", err)
	}
	buf = buf[:n]
	for i, b := range buf {
		if b == 0 {
			buf = buf[:i]
			break
		}
	}
	return string(buf), nil
}

// runControlReader loops on decode_device and applies the §4.2 semantics:
// Rotation updates the registry and the device-size watch (and, for the
// main socket, notifies subscribers); Clipboard/AckClipboard are forwarded
// for main sockets only; Unknown is logged and ignored. A malformed
// Clipboard UTF-8 payload or a short read ends the socket.
func runControlReader(ctx context.Context, r io.Reader, scid string, isMain bool, reg *registry.Registry, size *deviceSize, hooks Hooks, metrics *deviceMetrics, activity *activityClock) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg, err := wire.DecodeDevice(r)
		if err != nil {
			metrics.ctrlReadsErr.Add(1)
			return fmt.Errorf("controller: control reader scid=%s: %w", scid, err)
		}
		metrics.ctrlReadsOK.Add(1)
		activity.Touch()

		switch m := msg.(type) {
		case wire.Rotation:
			size.Set(m.Width, m.Height)
			_ = reg.UpdateSize(scid, m.Width, m.Height)
			if isMain && hooks.OnRotation != nil {
				hooks.OnRotation(scid, m.Rotation, m.Width, m.Height)
			}
		case wire.Clipboard:
			if isMain && hooks.OnClipboard != nil {
				hooks.OnClipboard(scid, m.Text)
			}
		case wire.AckClipboard:
			if isMain && hooks.OnAckClipboard != nil {
				hooks.OnAckClipboard(scid, m.Sequence)
			}
		case wire.Unknown:
			log.Debug().Str("component", "controller").Str("scid", scid).Uint8("tag", uint8(m.Type)).Msg("unknown device message tag")
		}
	}
}

// runControlWriter pulls from a bus subscription and writes rescaled
// control messages to w. Before encoding InjectTouchEvent/InjectScrollEvent,
// (x,y) is rescaled from the message's own embedded (w,h) — the
// mapping-authored / mask frame — to the live device frame tracked by size,
// and (w,h) is overwritten with the device's current size. readActivity
// tracks the last device message read by the paired reader half; a
// heartbeat GetClipboard is sent once that goes stale past
// controlStaleAfter.
func runControlWriter(ctx context.Context, w io.Writer, sub *Subscription, size *deviceSize, metrics *deviceMetrics, readActivity *activityClock) error {
	bw := bufio.NewWriter(w)
	heartbeat := time.NewTicker(controlHealthTick)
	defer heartbeat.Stop()

	write := func(msg wire.ControlMessage) error {
		encoded := wire.Encode(msg)
		if _, err := bw.Write(encoded); err != nil {
			metrics.ctrlWritesErr.Add(1)
			return err
		}
		if err := bw.Flush(); err != nil {
			metrics.ctrlWritesErr.Add(1)
			return err
		}
		metrics.ctrlWritesOK.Add(1)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return shutdownGracefully(bw)

		case skipped := <-sub.Skipped():
			log.Warn().Str("component", "controller").Int("skipped", skipped).Msg("control bus subscriber lagging, resumed at head")

		case msg := <-sub.Messages():
			msg = rescaleForDevice(msg, size)
			if err := write(msg); err != nil {
				return fmt.Errorf("controller: control writer: %w", err)
			}

		case <-heartbeat.C:
			if readActivity.Since() > controlStaleAfter {
				if err := write(wire.GetClipboard{CopyKey: 0}); err != nil {
					return fmt.Errorf("controller: heartbeat write: %w", err)
				}
				metrics.heartbeatsSent.Add(1)
				readActivity.Touch()
			}
		}
	}
}

// rescaleForDevice applies the §4.2 rescale rule to touch/scroll messages;
// every other message type passes through unchanged.
func rescaleForDevice(msg wire.ControlMessage, size *deviceSize) wire.ControlMessage {
	devW, devH := size.Get()
	if devW == 0 || devH == 0 {
		return msg
	}
	switch m := msg.(type) {
	case wire.InjectTouchEvent:
		m.X = rescaleCoord(m.X, uint32(m.W), devW)
		m.Y = rescaleCoord(m.Y, uint32(m.H), devH)
		m.W, m.H = uint16(devW), uint16(devH)
		return m
	case wire.InjectScrollEvent:
		m.X = rescaleCoord(m.X, uint32(m.W), devW)
		m.Y = rescaleCoord(m.Y, uint32(m.H), devH)
		m.W, m.H = uint16(devW), uint16(devH)
		return m
	default:
		return msg
	}
}

// shutdownGracefully gives a buffered writer up to writerShutdownGrace to
// flush whatever is already queued before the caller drops the connection.
func shutdownGracefully(bw *bufio.Writer) error {
	done := make(chan error, 1)
	go func() { done <- bw.Flush() }()
	select {
	case err := <-done:
		return err
	case <-time.After(writerShutdownGrace):
		return fmt.Errorf("controller: writer shutdown exceeded %s grace period", writerShutdownGrace)
	}
}
