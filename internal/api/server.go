// Package api is the HTTP/WebSocket facade of spec §6: the external
// collaborator that turns ADB/controller/mapping-runtime primitives into
// the `/api/device`, `/api/mapping`, `/api/config`, `/api/ws` surface, plus
// the WebRTC video-delivery leg. None of the core packages
// (wire/controller/registry/mapping/runtime/script) import this one; it
// depends on all of them, exactly the layering spec §1 draws between "the
// core" and "external collaborators, interfaces only".
package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/akichase/scrcpy-mask/internal/adbexec"
	"github.com/akichase/scrcpy-mask/internal/config"
	"github.com/akichase/scrcpy-mask/internal/controller"
	"github.com/akichase/scrcpy-mask/internal/mapping"
	"github.com/akichase/scrcpy-mask/internal/registry"
	"github.com/akichase/scrcpy-mask/internal/runtime"
	"github.com/akichase/scrcpy-mask/internal/script"
)

// ScrcpyVersion is the companion protocol version the facade launches,
// matching the wire layouts internal/wire implements.
const ScrcpyVersion = "2.4"

// defaultServerJARLocalPath is where the bundled companion JAR lives on the host
// before it is pushed to a device.
const defaultServerJARLocalPath = "assets/scrcpy-mask-server.jar"

// Server wires every core package into the facade. It is the single place
// that is allowed to depend on all of them at once.
type Server struct {
	log zerolog.Logger

	cfg       *config.Store
	reg       *registry.Registry
	mappings  *mapping.Store
	serverJAR string

	ctrl     *controller.Manager
	listener *controller.Listener

	hub *wsHub

	mu            sync.Mutex
	engine        *runtime.Engine
	engineSCID    string
	activeMapping string
	maskW, maskH  uint32

	sessions *sessionTable
}

// NewServer builds a Server around its data-layer dependencies. Attach must
// be called once the controller.Manager/Listener pair exists (they need
// Server.Hooks() to build the Manager, so construction is two-phase).
func NewServer(cfg *config.Store, reg *registry.Registry, mappings *mapping.Store) *Server {
	c := cfg.Get()
	s := &Server{
		log:           log.With().Str("component", "api").Logger(),
		cfg:           cfg,
		reg:           reg,
		mappings:      mappings,
		serverJAR:     defaultServerJARLocalPath,
		hub:           newWSHub(),
		maskW:         c.HorizontalMaskWidth,
		maskH:         c.VerticalMaskHeight,
		sessions:      newSessionTable(),
		activeMapping: "",
	}
	return s
}

// Attach wires the controller.Manager/Listener once they have been built
// around Server.Hooks().
func (s *Server) Attach(ctrl *controller.Manager, listener *controller.Listener) {
	s.ctrl = ctrl
	s.listener = listener
}

// checkScript is the concrete mapping.ScriptChecker the facade supplies so
// internal/mapping never has to import internal/script directly.
func checkScript(source string) error { return script.CheckSource(source) }

// RegisterRoutes installs every endpoint of spec §6 onto r.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	device := r.Group("/api/device")
	{
		device.GET("/device_list", s.handleDeviceList)
		device.POST("/control_device", s.handleControlDevice)
		device.POST("/decontrol_device", s.handleDecontrolDevice)
		device.POST("/adb_connect", s.handleAdbConnect)
		device.POST("/adb_pair", s.handleAdbPair)
		device.POST("/adb_screenshot", s.handleAdbScreenshot)
		device.POST("/control/set_display_power", s.handleSetDisplayPower)
		device.POST("/control/send_key", s.handleSendKey)
		device.POST("/control/eval_script", s.handleEvalScript)
	}

	mp := r.Group("/api/mapping")
	{
		mp.GET("/get_mapping_list", s.handleGetMappingList)
		mp.POST("/read_mapping", s.handleReadMapping)
		mp.POST("/create_mapping", s.handleCreateMapping)
		mp.POST("/update_mapping", s.handleUpdateMapping)
		mp.POST("/rename_mapping", s.handleRenameMapping)
		mp.POST("/duplicate_mapping", s.handleDuplicateMapping)
		mp.POST("/delete_mapping", s.handleDeleteMapping)
		mp.POST("/migrate_mapping", s.handleMigrateMapping)
		mp.POST("/change_active_mapping", s.handleChangeActiveMapping)
	}

	cfgGroup := r.Group("/api/config")
	{
		cfgGroup.GET("/get_config", s.handleGetConfig)
		cfgGroup.POST("/update_config", s.handleUpdateConfig)
	}

	r.GET("/api/ws/connect", s.handleWSConnect)
	r.POST("/api/webrtc/offer", s.handleWebRTCOffer)
}

// Hooks builds the controller.Hooks this server reacts to: registry-driven
// WS pushes. A device rotation is only broadcast to WS clients; it does not
// change the mask size the mapping engine is bound against.
func (s *Server) Hooks() controller.Hooks {
	return controller.Hooks{
		OnConnectionChanged: s.onConnectionChanged,
		OnRotation:          s.onRotation,
		OnClipboard:         s.onClipboard,
		OnAckClipboard:      s.onAckClipboard,
	}
}

func (s *Server) onConnectionChanged(scid string, connected bool) {
	d, ok := s.reg.Get(scid)
	main := ok && d.Main
	s.hub.broadcast(wsNotification{
		Type:      "ScrcpyDeviceConnection",
		SCID:      scid,
		Main:      main,
		Connected: connected,
	})
	s.hub.broadcast(wsNotification{Type: "ScrcpyDeviceList", Devices: s.reg.List()})

	if main && !connected {
		s.mu.Lock()
		if s.engineSCID == scid {
			s.engine = nil
			s.engineSCID = ""
		}
		s.mu.Unlock()
	}
}

func (s *Server) onRotation(scid string, rot uint16, w, h uint32) {
	s.hub.broadcast(wsNotification{Type: "ScrcpyDeviceRotation", SCID: scid, Rotation: rot, Width: w, Height: h})
}

func (s *Server) onClipboard(scid string, text string) {
	if s.cfg.Get().ClipboardSync {
		s.log.Debug().Str("scid", scid).Msg("device clipboard received")
	}
}

func (s *Server) onAckClipboard(scid string, seq uint64) {
	s.log.Debug().Str("scid", scid).Uint64("sequence", seq).Msg("clipboard ack")
}

// bindEngine (re)builds the mapping engine bound to cfg against the active
// device's control bus, used whenever a new main device connects or the
// active mapping changes.
func (s *Server) bindEngine(scid string, cfg mapping.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = runtime.NewEngine(s.ctrl.Bus(), cfg, s.maskW, s.maskH)
	s.engineSCID = scid
}

func (s *Server) currentEngine() (*runtime.Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine, s.engine != nil
}

func (s *Server) adbOptions() adbexec.Options {
	c := s.cfg.Get()
	return adbexec.Options{Path: c.AdbPath}
}

func (s *Server) adbOptionsFor(serial string) adbexec.Options {
	o := s.adbOptions()
	o.Serial = serial
	return o
}

func (s *Server) noDeviceControlledError() error {
	if _, ok := s.reg.Main(); ok {
		return nil
	}
	return fmt.Errorf("no device is currently controlled")
}
