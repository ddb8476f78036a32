package controller

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/akichase/scrcpy-mask/internal/registry"
	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectMainControlNotifiesConnectionChanged(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Device{SCID: "10111111"}))

	var events []bool
	mgr := NewManager(reg, Hooks{
		OnConnectionChanged: func(scid string, connected bool) { events = append(events, connected) },
	})

	client, server := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		mgr.ConnectMainControl(ctx, "10111111", "sock1", server, false)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	client.Close()
	<-done

	require.GreaterOrEqual(t, len(events), 2)
	assert.True(t, events[0])
	assert.False(t, events[len(events)-1])
}

func TestShutdownSubCancelsOnlyThatSocket(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Device{SCID: "10111111"}))
	mgr := NewManager(reg, Hooks{})

	_, server := net.Pipe()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		mgr.ConnectSubControl(ctx, "10111111", "sub1", server)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	err := mgr.ShutdownSub("10111111", "sub1")
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ShutdownSub did not cancel the socket's token")
	}
}

func TestShutdownSubUnknownSocketErrors(t *testing.T) {
	reg := registry.New()
	mgr := NewManager(reg, Hooks{})
	err := mgr.ShutdownSub("10111111", "nope")
	assert.Error(t, err)
}

func TestBusAcceptsPublishAndReturnsHandle(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(registry.Device{SCID: "10111111"}))
	mgr := NewManager(reg, Hooks{})

	mgr.Bus().Publish(wire.RotateDevice{})
	// Purely checks Bus() returns a usable handle shared by the manager.
	assert.NotNil(t, mgr.Bus())
}
