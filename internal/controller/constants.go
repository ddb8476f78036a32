package controller

import "time"

const (
	// writerShutdownGrace is the cap on graceful writer shutdown after
	// cancellation; the reader half is dropped without waiting.
	writerShutdownGrace = 500 * time.Millisecond

	// deviceNameMaxBytes bounds the on-first-connection device name read.
	deviceNameMaxBytes = 64

	// controlHealthTick / controlStaleAfter drive the heartbeat: if no
	// device message has been read for controlStaleAfter, send a
	// GetClipboard(copyKey=0) to confirm the socket is still alive.
	controlHealthTick = 5 * time.Second
	controlStaleAfter = 15 * time.Second
)
