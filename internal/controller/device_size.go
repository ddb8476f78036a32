package controller

import "sync/atomic"

// deviceSize is the watch channel of §4.2: the reader half updates it on
// every Rotation device message, and the writer half reads it before
// rescaling each touch/scroll event. Packed into a single atomic word so
// readers never block on a writer in flight.
type deviceSize struct {
	packed atomic.Uint64
}

func (d *deviceSize) Set(w, h uint32) {
	d.packed.Store(uint64(w)<<32 | uint64(h))
}

func (d *deviceSize) Get() (w, h uint32) {
	v := d.packed.Load()
	return uint32(v >> 32), uint32(v)
}
