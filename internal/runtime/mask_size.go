package runtime

import "sync/atomic"

// maskSize is the overlay window's live size in px, the frame every
// mapping-authored position is rescaled into before it is published (the
// session controller then rescales mask→device on top of this). Packed
// into a single uint64 so reads never tear, mirroring
// internal/controller's deviceSize.
type maskSize struct {
	packed atomic.Uint64
}

func newMaskSize(w, h uint32) *maskSize {
	m := &maskSize{}
	m.Set(w, h)
	return m
}

func (m *maskSize) Set(w, h uint32) {
	m.packed.Store(uint64(w)<<32 | uint64(h))
}

func (m *maskSize) Get() (w, h uint32) {
	v := m.packed.Load()
	return uint32(v >> 32), uint32(v)
}
