package controller

import "expvar"

// Per-device metrics, keyed by scid under a single expvar.Map exposed at
// /debug/vars — the teacher instruments nearly every subsystem with flat
// package-global expvar.Int counters; scoping them per device here follows
// the same later refactor direction its internal/device.Manager takes.
var (
	evDeviceVars = expvar.NewMap("scrcpymask_devices")
)

type deviceMetrics struct {
	framesRead      expvar.Int
	ctrlWritesOK    expvar.Int
	ctrlWritesErr   expvar.Int
	ctrlReadsOK     expvar.Int
	ctrlReadsErr    expvar.Int
	heartbeatsSent  expvar.Int
}

func newDeviceMetrics(scid string) *deviceMetrics {
	m := &deviceMetrics{}
	vars := new(expvar.Map)
	vars.Set("frames_read", &m.framesRead)
	vars.Set("control_writes_ok", &m.ctrlWritesOK)
	vars.Set("control_writes_err", &m.ctrlWritesErr)
	vars.Set("control_reads_ok", &m.ctrlReadsOK)
	vars.Set("control_reads_err", &m.ctrlReadsErr)
	vars.Set("heartbeats_sent", &m.heartbeatsSent)
	evDeviceVars.Set(scid, vars)
	return m
}
