package controller

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/akichase/scrcpy-mask/internal/registry"
	"github.com/rs/zerolog/log"
)

// socketKind distinguishes the three connections the companion opens per
// device (§4.2).
type socketKind int

const (
	kindMainControl socketKind = iota
	kindMainVideo
	kindSubControl
)

// socketToken is the cancellation handle for one live socket.
type socketToken struct {
	kind   socketKind
	id     string
	cancel context.CancelFunc
}

// deviceState bundles everything the controller tracks per scid beyond the
// registry entry itself: the device-size watch, per-device metrics, and the
// live socket tokens so Shutdown{Main,Sub} can cancel the right ones.
type deviceState struct {
	mu      sync.Mutex
	size    deviceSize
	metrics *deviceMetrics
	tokens  []*socketToken
}

// Manager is the session controller of §4.2: it demuxes accepted sockets by
// kind, runs each under its own cancellation token, and owns the broadcast
// control bus every writer half subscribes to.
type Manager struct {
	bus   *Bus
	reg   *registry.Registry
	hooks Hooks

	mu      sync.Mutex
	devices map[string]*deviceState
}

func NewManager(reg *registry.Registry, hooks Hooks) *Manager {
	return &Manager{
		bus:     NewBus(),
		reg:     reg,
		hooks:   hooks,
		devices: make(map[string]*deviceState),
	}
}

// Bus exposes the broadcast control bus so the mapping runtime and the
// WebSocket fast-path can publish onto it.
func (m *Manager) Bus() *Bus { return m.bus }

func (m *Manager) stateFor(scid string) *deviceState {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.devices[scid]
	if !ok {
		ds = &deviceState{metrics: newDeviceMetrics(scid)}
		m.devices[scid] = ds
	}
	return ds
}

func (ds *deviceState) addToken(t *socketToken) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.tokens = append(ds.tokens, t)
}

func (ds *deviceState) removeToken(id string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	out := ds.tokens[:0]
	for _, t := range ds.tokens {
		if t.id != id {
			out = append(out, t)
		}
	}
	ds.tokens = out
}

func (ds *deviceState) cancelAll() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for _, t := range ds.tokens {
		t.cancel()
	}
	ds.tokens = nil
}

func (ds *deviceState) cancelID(id string) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for _, t := range ds.tokens {
		if t.id == id {
			t.cancel()
			return true
		}
	}
	return false
}

// ConnectMainControl runs the reader+writer pair for a device's main
// control socket under a fresh token. consumeName tells it whether this
// socket is the one carrying the device-name header.
func (m *Manager) ConnectMainControl(parent context.Context, scid, socketID string, conn io.ReadWriteCloser, consumeName bool) {
	ds := m.stateFor(scid)
	ctx, cancel := context.WithCancel(parent)
	ds.addToken(&socketToken{kind: kindMainControl, id: socketID, cancel: cancel})
	defer ds.removeToken(socketID)

	if consumeName {
		name, err := readDeviceName(conn)
		if err != nil {
			log.Error().Err(err).Str("component", "controller").Str("scid", scid).Msg("read device name failed")
		} else {
			_ = m.reg.AddSocket(scid, socketID, name)
		}
	} else {
		_ = m.reg.AddSocket(scid, socketID, "")
	}

	if m.hooks.OnConnectionChanged != nil {
		m.hooks.OnConnectionChanged(scid, true)
	}
	defer func() {
		if m.hooks.OnConnectionChanged != nil {
			m.hooks.OnConnectionChanged(scid, false)
		}
		ds.cancelAll()
		m.reg.RemoveSocket(scid, socketID)
	}()

	m.runControlPair(ctx, conn, scid, true, ds)
}

// ConnectSubControl is like ConnectMainControl but never flips the
// device-connection-changed state.
func (m *Manager) ConnectSubControl(parent context.Context, scid, socketID string, conn io.ReadWriteCloser) {
	ds := m.stateFor(scid)
	ctx, cancel := context.WithCancel(parent)
	ds.addToken(&socketToken{kind: kindSubControl, id: socketID, cancel: cancel})
	defer ds.removeToken(socketID)
	defer m.reg.RemoveSocket(scid, socketID)

	_ = m.reg.AddSocket(scid, socketID, "")
	m.runControlPair(ctx, conn, scid, false, ds)
}

func (m *Manager) runControlPair(ctx context.Context, conn io.ReadWriteCloser, scid string, isMain bool, ds *deviceState) {
	sub := m.bus.Subscribe()
	defer sub.Unsubscribe()

	activity := newActivityClock()
	errc := make(chan error, 2)

	go func() {
		errc <- runControlReader(ctx, conn, scid, isMain, m.reg, &ds.size, m.hooks, ds.metrics, activity)
	}()
	go func() {
		errc <- runControlWriter(ctx, conn, sub, &ds.size, ds.metrics, activity)
	}()

	err := <-errc
	if err != nil {
		log.Debug().Err(err).Str("component", "controller").Str("scid", scid).Msg("control socket ended")
	}
	conn.Close()
	<-errc // drain the other half
}

// ConnectMainVideo runs the video loop for a device's video socket under
// its own token, publishing a terminal Close event on exit regardless of
// cause.
func (m *Manager) ConnectMainVideo(parent context.Context, scid, socketID string, conn io.ReadWriteCloser, decoder FrameDecoder, sink func(VideoEvent)) {
	ds := m.stateFor(scid)
	ctx, cancel := context.WithCancel(parent)
	ds.addToken(&socketToken{kind: kindMainVideo, id: socketID, cancel: cancel})
	defer ds.removeToken(socketID)
	defer conn.Close()

	if err := runVideoSocket(ctx, conn, scid, decoder, sink, ds.metrics); err != nil {
		log.Debug().Err(err).Str("component", "controller").Str("scid", scid).Msg("video socket ended")
	}
}

// ShutdownMain cancels every token for scid, reports the disconnect through
// OnConnectionChanged, and drops scid's entry from the manager's own device
// table. The registry is not touched here.
func (m *Manager) ShutdownMain(scid string) {
	ds := m.stateFor(scid)
	ds.cancelAll()
	if m.hooks.OnConnectionChanged != nil {
		m.hooks.OnConnectionChanged(scid, false)
	}
	m.mu.Lock()
	delete(m.devices, scid)
	m.mu.Unlock()
}

// ShutdownSub cancels only the named sub socket.
func (m *Manager) ShutdownSub(scid, socketID string) error {
	ds := m.stateFor(scid)
	if !ds.cancelID(socketID) {
		return fmt.Errorf("controller: no live socket %s for scid %s", socketID, scid)
	}
	return nil
}
