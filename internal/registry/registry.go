// Package registry holds the process-wide controlled-device table: scid →
// Device. It is a coarse-locked global singleton per the runtime's design
// notes, not an actor or a service — callers take the lock, read or mutate,
// and let go.
package registry

import (
	"fmt"
	"sync"
)

// Device mirrors one companion session's observable state.
type Device struct {
	DeviceID string
	SCID     string
	Main     bool
	SocketIDs []string
	Name     string
	Width    uint32
	Height   uint32
}

// Registry is the scid-keyed device table. Build one with New; the zero
// value has no map and Register on it panics.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

func New() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Register adds a new device entry. It is an error to register a scid that
// already exists, or to register a second main=true device.
func (r *Registry) Register(d Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[d.SCID]; exists {
		return fmt.Errorf("registry: scid %s already registered", d.SCID)
	}
	if d.Main {
		for _, existing := range r.devices {
			if existing.Main {
				return fmt.Errorf("registry: main device already present (scid %s)", existing.SCID)
			}
		}
	}
	cp := d
	r.devices[d.SCID] = &cp
	return nil
}

// AddSocket records a newly-connected socket id against scid, and sets the
// device's Name if this is its first socket.
func (r *Registry) AddSocket(scid, socketID, nameIfFirst string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[scid]
	if !ok {
		return fmt.Errorf("registry: unknown scid %s", scid)
	}
	if len(d.SocketIDs) == 0 && d.Name == "" && nameIfFirst != "" {
		d.Name = nameIfFirst
	}
	d.SocketIDs = append(d.SocketIDs, socketID)
	return nil
}

// RemoveSocket drops socketID from scid's live set. If this was the last
// live socket, the device entry is removed entirely — presence is tied to
// socket liveness.
func (r *Registry) RemoveSocket(scid, socketID string) (removed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[scid]
	if !ok {
		return false
	}
	d.SocketIDs = removeString(d.SocketIDs, socketID)
	if len(d.SocketIDs) == 0 {
		delete(r.devices, scid)
		return true
	}
	return false
}

// UpdateSize applies a Rotation-driven size update.
func (r *Registry) UpdateSize(scid string, width, height uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[scid]
	if !ok {
		return fmt.Errorf("registry: unknown scid %s", scid)
	}
	d.Width, d.Height = width, height
	return nil
}

// Get returns a copy of the device entry for scid.
func (r *Registry) Get(scid string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[scid]
	if !ok {
		return Device{}, false
	}
	return *d, true
}

// List returns a snapshot of every registered device.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, *d)
	}
	return out
}

// Main returns the single main=true device, if one is present.
func (r *Registry) Main() (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.devices {
		if d.Main {
			return *d, true
		}
	}
	return Device{}, false
}

func removeString(ss []string, target string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}
