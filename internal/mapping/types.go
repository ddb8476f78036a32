// Package mapping holds the on-disk mapping-configuration model: the tagged
// variants described by the mapping runtime, their per-kind geometry, and
// validation/storage around mapping/*.json files. It deliberately has no
// dependency on the runtime or script packages so both can depend on it.
package mapping

// Size is a virtual canvas size, in px, that mapping positions are authored
// against.
type Size struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// Position is a point in the original (authored) frame.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Bind is a button chord: every member must be held for the binding to be
// considered active. Members are platform-neutral names such as "KeyQ",
// "Mouse-Left", "G-South" resolved by the input source at runtime.
type Bind []string

// DirectionBind drives a dual-axis source: either a gamepad stick axis name
// ("G-LeftStick") or a four-way chord of discrete buttons resolved to a
// unit-square input state.
type DirectionBind struct {
	Axis string `json:"axis,omitempty"`
	Up    Bind  `json:"up,omitempty"`
	Down  Bind  `json:"down,omitempty"`
	Left  Bind  `json:"left,omitempty"`
	Right Bind  `json:"right,omitempty"`
}

// ReleaseMode governs when a cast-spell gesture's Up is sent.
type ReleaseMode string

const (
	ReleaseOnPress      ReleaseMode = "OnPress"
	ReleaseOnRelease    ReleaseMode = "OnRelease"
	ReleaseOnSecondPress ReleaseMode = "OnSecondPress"
)

// Kind names a mapping-item variant. The string values are the contract
// (used as the JSON discriminator and in kind#index addressing); they are
// not meant to resemble a Go type name.
type Kind string

const (
	KindSingleTap      Kind = "SingleTap"
	KindRepeatTap      Kind = "RepeatTap"
	KindMultipleTap    Kind = "MultipleTap"
	KindSwipe          Kind = "Swipe"
	KindDirectionPad   Kind = "DirectionPad"
	KindMouseCastSpell Kind = "MouseCastSpell"
	KindPadCastSpell   Kind = "PadCastSpell"
	KindCancelCast     Kind = "CancelCast"
	KindObservation    Kind = "Observation"
	KindFps            Kind = "Fps"
	KindFire           Kind = "Fire"
	KindRawInput       Kind = "RawInput"
	KindScript         Kind = "Script"
)

// AllKinds lists every variant in a stable order, used for validation
// counting and for UI enumeration.
var AllKinds = []Kind{
	KindSingleTap, KindRepeatTap, KindMultipleTap, KindSwipe, KindDirectionPad,
	KindMouseCastSpell, KindPadCastSpell, KindCancelCast, KindObservation,
	KindFps, KindFire, KindRawInput, KindScript,
}

// MaxInstancesPerKind is the per-kind instance ceiling a validated config
// must respect; the runtime addresses instances by kind#index up to this
// bound.
const MaxInstancesPerKind = 32

type SingleTap struct {
	Position  Position `json:"position"`
	Note      string   `json:"note"`
	PointerID uint64   `json:"pointer_id"`
	Duration  uint64   `json:"duration"`
	Sync      bool     `json:"sync"`
	Bind      Bind     `json:"bind"`
}

type RepeatTap struct {
	Position  Position `json:"position"`
	Note      string   `json:"note"`
	PointerID uint64   `json:"pointer_id"`
	Duration  uint64   `json:"duration"`
	Interval  uint32   `json:"interval"`
	Bind      Bind     `json:"bind"`
}

type MultipleTapItem struct {
	Position Position `json:"position"`
	Duration uint64   `json:"duration"`
	Wait     uint64   `json:"wait"`
}

type MultipleTap struct {
	Note      string            `json:"note"`
	PointerID uint64            `json:"pointer_id"`
	Items     []MultipleTapItem `json:"items"`
	Bind      Bind              `json:"bind"`
}

type Swipe struct {
	Note      string     `json:"note"`
	PointerID uint64     `json:"pointer_id"`
	Positions []Position `json:"positions"`
	Interval  uint64     `json:"interval"`
	Bind      Bind       `json:"bind"`
}

type DirectionPad struct {
	Note            string        `json:"note"`
	PointerID       uint64        `json:"pointer_id"`
	Position        Position      `json:"position"` // pad center
	InitialDuration uint64        `json:"initial_duration"`
	MaxOffsetX      float32       `json:"max_offset_x"`
	MaxOffsetY      float32       `json:"max_offset_y"`
	Bind            DirectionBind `json:"bind"`
}

type MouseCastSpell struct {
	Note                   string      `json:"note"`
	PointerID              uint64      `json:"pointer_id"`
	Position               Position    `json:"position"` // cast anchor
	CenterPosition         Position    `json:"center_position"`
	DragRadius             float32     `json:"drag_radius"`
	CastRadius             float32     `json:"cast_radius"`
	HorizontalScaleFactor  float32     `json:"horizontal_scale_factor"`
	VerticalScaleFactor    float32     `json:"vertical_scale_factor"`
	ReleaseMode            ReleaseMode `json:"release_mode"`
	CastNoDirection        bool        `json:"cast_no_direction"`
	Bind                   Bind        `json:"bind"`
}

type PadCastSpell struct {
	Note              string        `json:"note"`
	PointerID         uint64        `json:"pointer_id"`
	Position          Position      `json:"position"`
	DragRadius        float32       `json:"drag_radius"`
	ReleaseMode       ReleaseMode   `json:"release_mode"`
	BlockDirectionPad bool          `json:"block_direction_pad"`
	Bind              Bind          `json:"bind"`
	PadBind           DirectionBind `json:"pad_bind"`
}

type CancelCast struct {
	Note           string   `json:"note"`
	CancelPosition Position `json:"cancel_position"`
	Bind           Bind     `json:"bind"`
}

type Observation struct {
	Note        string   `json:"note"`
	PointerID   uint64   `json:"pointer_id"`
	Position    Position `json:"position"`
	Sensitivity float32  `json:"sensitivity"`
	Bind        Bind     `json:"bind"`
}

type Fps struct {
	Note          string   `json:"note"`
	PointerID     uint64   `json:"pointer_id"`
	Position      Position `json:"position"` // Fps-mode cursor center
	SensitivityX  float32  `json:"sensitivity_x"`
	SensitivityY  float32  `json:"sensitivity_y"`
	Bind          Bind     `json:"bind"`
}

type Fire struct {
	Note         string   `json:"note"`
	PointerID    uint64   `json:"pointer_id"`
	Position     Position `json:"position"`
	SensitivityX float32  `json:"sensitivity_x"`
	SensitivityY float32  `json:"sensitivity_y"`
	Bind         Bind     `json:"bind"`
}

type RawInput struct {
	Note string `json:"note"`
	Bind Bind   `json:"bind"`
}

type Script struct {
	Note     string   `json:"note"`
	Position Position `json:"position"`
	Pressed  string   `json:"pressed"`
	Held     string   `json:"held"`
	Released string   `json:"released"`
	Interval uint64   `json:"interval"`
	Bind     Bind     `json:"bind"`
}

// Item is a tagged union over the thirteen mapping-item variants. Exactly
// one of the pointer fields is non-nil; Kind names which one.
type Item struct {
	Kind Kind

	SingleTap      *SingleTap
	RepeatTap      *RepeatTap
	MultipleTap    *MultipleTap
	Swipe          *Swipe
	DirectionPad   *DirectionPad
	MouseCastSpell *MouseCastSpell
	PadCastSpell   *PadCastSpell
	CancelCast     *CancelCast
	Observation    *Observation
	Fps            *Fps
	Fire           *Fire
	RawInput       *RawInput
	Script         *Script
}

// Config is the root of a mapping file: a schema version, the virtual
// canvas the item positions are authored in, and the item list.
type Config struct {
	Version      string `json:"version"`
	OriginalSize Size   `json:"original_size"`
	Mappings     []Item `json:"mappings"`
}

// Default returns the empty starting config a newly-created mapping file
// gets.
func Default() Config {
	return Config{
		Version:      "1",
		OriginalSize: Size{Width: 2560, Height: 1440},
		Mappings:     nil,
	}
}
