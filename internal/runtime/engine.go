package runtime

import (
	"sync"
	"time"

	"github.com/akichase/scrcpy-mask/internal/mapping"
)

// CursorMode is the mapping runtime's cursor-tracking mode.
type CursorMode int

const (
	CursorNormal CursorMode = iota
	CursorFps
)

// Mode is the top-level mapping mode.
type Mode int

const (
	ModeStop Mode = iota
	ModeNormal
	ModeRawInput
)

// Engine is one tick of the mapping runtime: it owns every gesture
// instance's state and the cursor/mode singletons from spec §3's "Runtime
// state", and turns activations into touch/keycode sequences on the bus.
//
// The main loop is expected to be effectively single-threaded (spec §5: "a
// cooperative single-threaded main loop"): every exported method here takes
// the same mutex, so it is safe to call from multiple input-delivery
// goroutines, but only one state transition is ever in flight at a time.
// Background gesture tasks (spawned goroutines for timed Ups/interpolation)
// read a snapshot of what they need before they spawn and otherwise only
// ever call back into Engine's synchronized methods.
type Engine struct {
	mu   sync.Mutex
	bus  Bus
	mask *maskSize
	b    Bound

	cursor       Vec2
	cursorMode   CursorMode
	mappingMode  Mode
	blockPad     bool

	repeatTap   map[int]*repeatTapState
	padState    map[int]*padState
	cast        *castState // at most one process-wide
	observation map[int]*observationState
	fire        map[int]*fireState
	fpsActive   bool
	fpsIndex    int
	fpsPointerID    uint64
	fpsCenter       Vec2
	fpsSensitivity  Vec2
	ignoreFpsMotion bool

	rawInput *rawInputState

	scripts      []scriptSet
	scriptActive map[int]*scriptActiveState
}

// NewEngine builds an engine bound to cfg, publishing onto bus, with an
// initial live mask size (commonly the config's original_size until a
// resize hook fires).
func NewEngine(bus Bus, cfg mapping.Config, maskW, maskH uint32) *Engine {
	b := Bind(cfg)

	sources := make([]scriptSetSource, len(b.Script))
	for i, m := range b.Script {
		sources[i] = scriptSetSource{pressed: m.Pressed, held: m.Held, released: m.Released}
	}

	return &Engine{
		bus:          bus,
		mask:         newMaskSize(maskW, maskH),
		b:            b,
		repeatTap:    make(map[int]*repeatTapState),
		padState:     make(map[int]*padState),
		observation:  make(map[int]*observationState),
		fire:         make(map[int]*fireState),
		scripts:      buildScripts(sources),
		scriptActive: make(map[int]*scriptActiveState),
	}
}

// SetMaskSize updates the live overlay window size; subsequent publishes
// rescale against the new size.
func (e *Engine) SetMaskSize(w, h uint32) { e.mask.Set(w, h) }

// rescale maps pos (authored against e.b.OriginalSize) onto the live mask
// frame, and returns the live frame size to embed on the wire alongside it.
func (e *Engine) rescale(pos Vec2) (Vec2, mapping.Size) {
	w, h := e.mask.Get()
	ow, oh := e.b.OriginalSize.Width, e.b.OriginalSize.Height
	if ow == 0 || oh == 0 {
		return pos, mapping.Size{Width: w, Height: h}
	}
	return Vec2{
		X: pos.X * float32(w) / float32(ow),
		Y: pos.Y * float32(h) / float32(oh),
	}, mapping.Size{Width: w, Height: h}
}

func (e *Engine) touch(action uint8, pointerID uint64, pos Vec2) {
	scaled, size := e.rescale(pos)
	sendTouch(e.bus, action, pointerID, size, scaled)
}

// Cursor returns the current cursor position in mask coordinates.
func (e *Engine) Cursor() Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SetCursor sets the cursor position in mask coordinates (Normal mode
// input delivery calls this on every mouse move).
func (e *Engine) SetCursor(x, y float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = Vec2{x, y}
}

func sleepMS(ms uint64) { time.Sleep(time.Duration(ms) * time.Millisecond) }

func nowMS() int64 { return time.Now().UnixMilli() }
