package controller

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
)

// Command is one queued accept-classification request. The companion dials
// into the controller port in whatever order its own startup produces;
// §4.2 resolves the ambiguity by having the facade push a Command before
// each dial it expects, so a given accept always consumes the next queued
// Command.
type Command struct {
	Kind        socketKind
	SCID        string
	SocketID    string
	ConsumeName bool
	Decoder     FrameDecoder
	VideoSink   func(VideoEvent)
}

// Listener owns the controller's TCP accept loop and dispatches each
// accepted connection to the next queued Command.
type Listener struct {
	ln  net.Listener
	mgr *Manager

	mu    sync.Mutex
	queue []Command
}

func NewListener(ln net.Listener, mgr *Manager) *Listener {
	return &Listener{ln: ln, mgr: mgr}
}

// NewMainControlCommand builds the Command for a device's main control
// socket. consumeName tells the controller whether this socket is the one
// carrying the device-name header (only one control socket per device
// consumes it).
func NewMainControlCommand(scid, socketID string, consumeName bool) Command {
	return Command{Kind: kindMainControl, SCID: scid, SocketID: socketID, ConsumeName: consumeName}
}

// NewSubControlCommand builds the Command for one of a device's secondary
// control sockets.
func NewSubControlCommand(scid, socketID string) Command {
	return Command{Kind: kindSubControl, SCID: scid, SocketID: socketID}
}

// NewMainVideoCommand builds the Command for a device's video socket.
func NewMainVideoCommand(scid, socketID string, decoder FrameDecoder, sink func(VideoEvent)) Command {
	return Command{Kind: kindMainVideo, SCID: scid, SocketID: socketID, Decoder: decoder, VideoSink: sink}
}

// Push enqueues a Command for the next accepted socket.
func (l *Listener) Push(cmd Command) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, cmd)
}

func (l *Listener) pop() (Command, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return Command{}, false
	}
	cmd := l.queue[0]
	l.queue = l.queue[1:]
	return cmd, true
}

// Serve runs the accept loop until ctx is cancelled or the listener errors.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("controller: accept: %w", err)
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}

		cmd, ok := l.pop()
		if !ok {
			log.Error().Str("component", "controller").Msg("accepted socket with no queued command, closing")
			conn.Close()
			continue
		}

		switch cmd.Kind {
		case kindMainControl:
			go l.mgr.ConnectMainControl(ctx, cmd.SCID, cmd.SocketID, conn, cmd.ConsumeName)
		case kindSubControl:
			go l.mgr.ConnectSubControl(ctx, cmd.SCID, cmd.SocketID, conn)
		case kindMainVideo:
			go l.mgr.ConnectMainVideo(ctx, cmd.SCID, cmd.SocketID, conn, cmd.Decoder, cmd.VideoSink)
		}
	}
}
