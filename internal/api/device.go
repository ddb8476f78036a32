package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akichase/scrcpy-mask/internal/adbexec"
	"github.com/akichase/scrcpy-mask/internal/runtime"
	"github.com/akichase/scrcpy-mask/internal/wire"
)

// deviceListResponse merges the registry's controlled-device view with a
// raw `adb devices` listing, the way the original device_list handler
// joins ControlledDevice::get_device_list() with Adb::devices().
type deviceListResponse struct {
	ControlledDevices []controlledDeviceView    `json:"controlled_devices"`
	AdbDevices        []adbexec.ADBListedDevice `json:"adb_devices"`
}

type controlledDeviceView struct {
	DeviceID string `json:"device_id"`
	SCID     string `json:"scid"`
	Main     bool   `json:"main"`
	Name     string `json:"name"`
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
}

func (s *Server) handleDeviceList(c *gin.Context) {
	adbDevices, err := adbexec.ListDevices(s.adbOptions())
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}

	views := make([]controlledDeviceView, 0, len(s.sessions.list()))
	for _, ds := range s.sessions.list() {
		d, ok := s.reg.Get(ds.SCID)
		if !ok {
			continue
		}
		views = append(views, controlledDeviceView{
			DeviceID: ds.DeviceID, SCID: d.SCID, Main: d.Main,
			Name: d.Name, Width: d.Width, Height: d.Height,
		})
	}

	respondOK(c, "ok", deviceListResponse{ControlledDevices: views, AdbDevices: adbDevices})
}

type controlDeviceRequest struct {
	DeviceID  string `json:"device_id"`
	DisplayID int32  `json:"display_id"`
	Video     bool   `json:"video"`
}

func (s *Server) handleControlDevice(c *gin.Context) {
	var req controlDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := s.ControlDevice(req.DeviceID, req.DisplayID, req.Video)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, fmt.Sprintf("controlling device: %s", req.DeviceID), result)
}

type decontrolDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

func (s *Server) handleDecontrolDevice(c *gin.Context) {
	var req decontrolDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := s.DecontrolDevice(req.DeviceID); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, fmt.Sprintf("decontrolled device: %s", req.DeviceID), nil)
}

type adbConnectRequest struct {
	Address string `json:"address"`
}

func (s *Server) handleAdbConnect(c *gin.Context) {
	var req adbConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	dev := adbexec.NewDevice(s.adbOptions())
	if _, err := dev.Connect(req.Address); err != nil {
		respondBadRequest(c, fmt.Sprintf("adb connect %s failed: %v", req.Address, err))
		return
	}
	respondOK(c, fmt.Sprintf("adb connected: %s", req.Address), nil)
}

type adbPairRequest struct {
	Address string `json:"address"`
	Code    string `json:"code"`
}

func (s *Server) handleAdbPair(c *gin.Context) {
	var req adbPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	dev := adbexec.NewDevice(s.adbOptions())
	if _, err := dev.Pair(req.Address, req.Code); err != nil {
		respondBadRequest(c, fmt.Sprintf("adb pair %s failed: %v", req.Address, err))
		return
	}
	respondOK(c, fmt.Sprintf("adb paired: %s", req.Address), nil)
}

type adbScreenshotRequest struct {
	ID string `json:"id"`
}

// screenshotRemotePath is where adb_screenshot stages the capture on-device
// before pulling it back, matching the original facade's fixed path.
const screenshotRemotePath = "/data/local/tmp/_screenshot_scrcpy_mask.png"

func (s *Server) handleAdbScreenshot(c *gin.Context) {
	var req adbScreenshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	dev := adbexec.NewDevice(s.adbOptionsFor(req.ID))
	if err := dev.Shell("screencap", "-p", screenshotRemotePath); err != nil {
		respondBadRequest(c, fmt.Sprintf("screenshot failed for %s: %v", req.ID, err))
		return
	}
	data, err := dev.Pull(screenshotRemotePath)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("failed to fetch screenshot: %v", err))
		return
	}
	_ = dev.Shell("rm", screenshotRemotePath)

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", data)
}

type setDisplayPowerRequest struct {
	Mode bool `json:"mode"`
}

func (s *Server) handleSetDisplayPower(c *gin.Context) {
	if err := s.noDeviceControlledError(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	var req setDisplayPowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	mode := uint8(0)
	if req.Mode {
		mode = 1
	}
	s.ctrl.Bus().Publish(wire.SetDisplayPower{Mode: mode})
	respondOK(c, "set display power ok", nil)
}

type sendKeyRequest struct {
	Keycode string `json:"keycode"`
}

// handleSendKey injects a Down, waits 500ms, then injects an Up for the
// named key, always at metastate=NONE — spec §9's decided behavior for
// this quick-action endpoint, since it has no notion of currently-held
// modifier chords to report honestly.
func (s *Server) handleSendKey(c *gin.Context) {
	if err := s.noDeviceControlledError(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	var req sendKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	code, ok := runtime.LookupKeycode(req.Keycode)
	if !ok {
		respondBadRequest(c, fmt.Sprintf("unknown keycode: %s", req.Keycode))
		return
	}

	s.ctrl.Bus().Publish(wire.InjectKeycode{Action: wire.ActionDown, Keycode: code, Metastate: wire.MetaNone})
	time.Sleep(500 * time.Millisecond)
	s.ctrl.Bus().Publish(wire.InjectKeycode{Action: wire.ActionUp, Keycode: code, Metastate: wire.MetaNone})

	respondOK(c, fmt.Sprintf("sent key: %s", req.Keycode), nil)
}

type evalScriptRequest struct {
	Script string `json:"script"`
}

func (s *Server) handleEvalScript(c *gin.Context) {
	if err := s.noDeviceControlledError(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	engine, ok := s.currentEngine()
	if !ok {
		respondBadRequest(c, "no mapping engine is bound to the controlled device")
		return
	}
	var req evalScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := engine.EvalScript(req.Script); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, "script evaluated", nil)
}
