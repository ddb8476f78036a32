package api

import (
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akichase/scrcpy-mask/internal/adbexec"
	"github.com/akichase/scrcpy-mask/internal/config"
	"github.com/akichase/scrcpy-mask/internal/controller"
	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/registry"
	"github.com/akichase/scrcpy-mask/internal/video"
	"github.com/akichase/scrcpy-mask/internal/wire"
)

// deviceSession is the facade-side bookkeeping for one controlled device,
// keyed by its ADB device_id rather than its scid (the registry is
// scid-keyed; the facade's callers think in device ids, per
// handleDevicesGin's join of the two views).
type deviceSession struct {
	DeviceID string
	SCID     string
	Main     bool
	Video    bool
	decoder  *video.Decoder
	cmd      *exec.Cmd

	mu       sync.RWMutex
	lastW    uint32
	lastH    uint32
	webrtc   map[string]*webrtcPeer // session id -> peer, fed raw bitstream frames
}

func (ds *deviceSession) addPeer(id string, p *webrtcPeer) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.webrtc[id] = p
}

func (ds *deviceSession) removePeer(id string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.webrtc, id)
}

func (ds *deviceSession) peers() []*webrtcPeer {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	out := make([]*webrtcPeer, 0, len(ds.webrtc))
	for _, p := range ds.webrtc {
		out = append(out, p)
	}
	return out
}

// sessionTable is the facade's device_id -> deviceSession map.
type sessionTable struct {
	mu sync.RWMutex
	m  map[string]*deviceSession
}

func newSessionTable() *sessionTable {
	return &sessionTable{m: make(map[string]*deviceSession)}
}

func (t *sessionTable) get(deviceID string) (*deviceSession, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.m[deviceID]
	return s, ok
}

func (t *sessionTable) put(s *deviceSession) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[s.DeviceID] = s
}

func (t *sessionTable) delete(deviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, deviceID)
}

func (t *sessionTable) list() []*deviceSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*deviceSession, 0, len(t.m))
	for _, s := range t.m {
		out = append(out, s)
	}
	return out
}

// controlDeviceResult is what ControlDevice reports back to the HTTP
// handler.
type controlDeviceResult struct {
	SCID     string
	DeviceID string
}

// ControlDevice pushes the companion JAR, opens the reverse tunnel, queues
// the controller commands for the sockets the companion is about to dial,
// and launches the companion shell process — mirroring the original
// control_device handler's sequence exactly (push, reverse, queue, sleep,
// launch).
func (s *Server) ControlDevice(deviceID string, displayID int32, wantVideo bool) (controlDeviceResult, error) {
	if _, already := s.sessions.get(deviceID); already {
		return controlDeviceResult{}, fmt.Errorf("device already controlled: %s", deviceID)
	}

	scid, err := adbexec.GenerateSCID()
	if err != nil {
		return controlDeviceResult{}, fmt.Errorf("generate scid: %w", err)
	}

	adbDev := adbexec.NewDevice(s.adbOptionsFor(deviceID))
	if err := adbDev.PushServer(s.serverJAR); err != nil {
		return controlDeviceResult{}, err
	}

	c := s.cfg.Get()
	reverseName := fmt.Sprintf("scrcpy_%s", scid)
	if err := adbDev.Reverse(reverseName, int(c.ControllerPort)); err != nil {
		return controlDeviceResult{}, err
	}

	_, hasMain := s.reg.Main()
	main := !hasMain

	ds := &deviceSession{DeviceID: deviceID, SCID: scid, Main: main, Video: wantVideo, webrtc: make(map[string]*webrtcPeer)}

	if err := s.reg.Register(registry.Device{DeviceID: deviceID, SCID: scid, Main: main}); err != nil {
		return controlDeviceResult{}, err
	}

	if main {
		consumeName := true
		if wantVideo {
			codec, err := wireCodecFor(c.VideoCodec)
			if err != nil {
				s.reg.RemoveSocket(scid, "")
				return controlDeviceResult{}, err
			}
			decoder, err := video.NewDecoder(codec)
			if err != nil {
				s.reg.RemoveSocket(scid, "")
				return controlDeviceResult{}, fmt.Errorf("open decoder: %w", err)
			}
			ds.decoder = decoder
			s.listener.Push(controller.NewMainVideoCommand(scid, "main_video", decoder, func(ev controller.VideoEvent) {
				s.onVideoEvent(ds, ev)
			}))
		}
		s.listener.Push(controller.NewMainControlCommand(scid, "main_control", consumeName))
	} else {
		s.listener.Push(controller.NewSubControlCommand(scid, fmt.Sprintf("sub_control_%s", scid)))
	}

	s.sessions.put(ds)

	if main {
		s.activateMappingOn(scid)
	}

	time.Sleep(500 * time.Millisecond)
	log.Info().Str("component", "api").Str("device_id", deviceID).Str("scid", scid).Msg("starting companion")

	args := adbexec.CompanionArgs{
		Version:   ScrcpyVersion,
		SCID:      scid,
		Video:     wantVideo,
		DisplayID: displayID,
	}
	if wantVideo {
		args.VideoCodec = string(toWireCodecName(c.VideoCodec))
		args.VideoBitRate = c.VideoBitRate
		args.VideoMaxSize = c.VideoMaxSize
		args.VideoMaxFPS = c.VideoMaxFPS
	}

	cmd, err := adbDev.StartCompanion(args)
	if err != nil {
		s.sessions.delete(deviceID)
		s.reg.RemoveSocket(scid, "main_control")
		return controlDeviceResult{}, err
	}
	ds.cmd = cmd

	goSafe(fmt.Sprintf("companion-wait-%s", scid), func() {
		_ = cmd.Wait()
		log.Info().Str("component", "api").Str("scid", scid).Msg("companion process exited, removing device")
		s.DecontrolDevice(deviceID)
	})

	return controlDeviceResult{SCID: scid, DeviceID: deviceID}, nil
}

// DecontrolDevice cancels every socket for the device and drops its
// bookkeeping. Safe to call twice (the companion-exit watcher and an
// explicit decontrol_device request both call it).
func (s *Server) DecontrolDevice(deviceID string) error {
	ds, ok := s.sessions.get(deviceID)
	if !ok {
		return fmt.Errorf("device not found: %s", deviceID)
	}
	if ds.Main {
		s.ctrl.ShutdownMain(ds.SCID)
	} else {
		_ = s.ctrl.ShutdownSub(ds.SCID, fmt.Sprintf("sub_control_%s", ds.SCID))
	}
	if ds.decoder != nil {
		ds.decoder.Close()
	}
	s.reg.RemoveSocket(ds.SCID, "main_control")
	s.sessions.delete(deviceID)
	return nil
}

// onVideoEvent fans a decoded/raw frame out to every WebRTC peer attached
// to this device. Only the frame's width and height are kept on the session;
// the RGBA data is not stored (adb_screenshot pulls a PNG through ADB
// directly instead).
func (s *Server) onVideoEvent(ds *deviceSession, ev controller.VideoEvent) {
	if ev.Close {
		return
	}
	ds.mu.Lock()
	ds.lastW, ds.lastH = ev.Width, ev.Height
	ds.mu.Unlock()

	for _, p := range ds.peers() {
		p.pushFrame(ev.RawData, ev.Keyframe)
	}
}

func wireCodecFor(c config.VideoCodec) (wire.CodecID, error) {
	switch c {
	case config.VideoCodecH264:
		return wire.CodecH264, nil
	case config.VideoCodecH265:
		return wire.CodecH265, nil
	case config.VideoCodecAV1:
		return wire.CodecAV1, nil
	default:
		return 0, fmt.Errorf("unsupported video codec %q", c)
	}
}

func toWireCodecName(c config.VideoCodec) config.VideoCodec {
	switch c {
	case config.VideoCodecH264:
		return "h264"
	case config.VideoCodecH265:
		return "h265"
	case config.VideoCodecAV1:
		return "av1"
	default:
		return "h264"
	}
}

// activateMappingOn loads the currently-active mapping file (or the default
// config if none has been selected yet) and binds the runtime engine to the
// newly-main device's control bus.
func (s *Server) activateMappingOn(scid string) {
	s.mu.Lock()
	name := s.activeMapping
	s.mu.Unlock()

	s.bindEngine(scid, s.mappingOrDefault(name))
}

// mappingOrDefault loads name from the mapping store, falling back to the
// empty default config when no mapping has been activated yet or the load
// fails (an engine bound to the empty config still runs, it just has no
// bindings to activate).
func (s *Server) mappingOrDefault(name string) mapping.Config {
	if name == "" {
		return mapping.Default()
	}
	cfg, err := s.mappings.Read(name)
	if err != nil {
		s.log.Warn().Err(err).Str("mapping", name).Msg("failed to load active mapping, using default")
		return mapping.Default()
	}
	return cfg
}
