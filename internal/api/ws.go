package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/akichase/scrcpy-mask/internal/registry"
	"github.com/akichase/scrcpy-mask/internal/wire"
)

// wsNotification is every server-to-client push the facade sends, tagged by
// Type the way WebSocketNotification's serde tag does. Only the fields
// relevant to Type are populated on a given value.
type wsNotification struct {
	Type string `json:"type"`

	SCID      string `json:"scid,omitempty"`
	Main      bool   `json:"main,omitempty"`
	Connected bool   `json:"connected,omitempty"`

	Rotation uint16 `json:"rotation,omitempty"`
	Width    uint32 `json:"width,omitempty"`
	Height   uint32 `json:"height,omitempty"`

	Devices []registry.Device `json:"devices,omitempty"`
}

// wsHub fans out notifications to every connected WebSocket client.
type wsHub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[string]*websocket.Conn)}
}

func (h *wsHub) add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = conn
}

func (h *wsHub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *wsHub) broadcast(n wsNotification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, conn := range h.clients {
		if err := conn.WriteJSON(n); err != nil {
			log.Debug().Str("component", "api").Str("client", id).Err(err).Msg("ws write failed")
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsInbound is one client-to-server message: InjectKeycode, InjectText,
// InjectTouchEvent, InjectScrollEvent, or SetClipboard, all flattened into
// one struct and dispatched on Type (mirrors WebSocketMsg's serde tag).
type wsInbound struct {
	Type string `json:"type"`

	Action    string `json:"action,omitempty"`
	Keycode   uint32 `json:"keycode,omitempty"`
	Metastate uint32 `json:"metastate,omitempty"`

	Text string `json:"text,omitempty"`

	PointerID uint64  `json:"pointer_id,omitempty"`
	X         int32   `json:"x,omitempty"`
	Y         int32   `json:"y,omitempty"`
	W         uint16  `json:"w,omitempty"`
	H         uint16  `json:"h,omitempty"`
	Pressure  float64 `json:"pressure,omitempty"`
	Buttons   uint32  `json:"buttons,omitempty"`

	HScroll float64 `json:"hscroll,omitempty"`
	VScroll float64 `json:"vscroll,omitempty"`

	Sequence uint64 `json:"sequence,omitempty"`
	Paste    bool   `json:"paste,omitempty"`
}

// handleWSConnect upgrades to a WebSocket, registers the connection on the
// broadcast hub, and loops reading injected input off it until it closes.
func (s *Server) handleWSConnect(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Str("component", "api").Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	s.hub.add(id, conn)
	defer s.hub.remove(id)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatchWSMessage(data)
	}
}

// dispatchWSMessage parses a client-originated injection request and
// publishes it onto the shared control bus directly, bypassing the mapping
// engine entirely: spec §9's fast path for raw-input / script-authoring
// clients always forces metastate=NONE rather than trusting whatever the
// client reports, since the bus has no per-pointer chord tracking to
// validate it against.
func (s *Server) dispatchWSMessage(data []byte) {
	var in wsInbound
	if err := json.Unmarshal(data, &in); err != nil {
		log.Debug().Str("component", "api").Err(err).Msg("ws message parse failed")
		return
	}

	msg, ok := toControlMessage(in)
	if !ok {
		log.Debug().Str("component", "api").Str("type", in.Type).Msg("unrecognized ws message type")
		return
	}
	s.ctrl.Bus().Publish(msg)
}

func toControlMessage(in wsInbound) (wire.ControlMessage, bool) {
	switch in.Type {
	case "InjectKeycode":
		return wire.InjectKeycode{
			Action:    actionFromName(in.Action),
			Keycode:   in.Keycode,
			Metastate: wire.MetaNone,
		}, true
	case "InjectText":
		return wire.InjectText{Text: in.Text}, true
	case "InjectTouchEvent":
		return wire.InjectTouchEvent{
			Action:    actionFromName(in.Action),
			PointerID: in.PointerID,
			X:         in.X,
			Y:         in.Y,
			W:         in.W,
			H:         in.H,
			Pressure:  in.Pressure,
			Buttons:   in.Buttons,
		}, true
	case "InjectScrollEvent":
		return wire.InjectScrollEvent{
			X: in.X, Y: in.Y, W: in.W, H: in.H,
			HScroll: in.HScroll, VScroll: in.VScroll,
			Buttons: in.Buttons,
		}, true
	case "SetClipboard":
		return wire.SetClipboard{Sequence: in.Sequence, Paste: in.Paste, Text: in.Text}, true
	default:
		return nil, false
	}
}

func actionFromName(name string) uint8 {
	switch name {
	case "Down":
		return wire.ActionDown
	case "Up":
		return wire.ActionUp
	case "Move":
		return wire.ActionMove
	default:
		return wire.ActionDown
	}
}
