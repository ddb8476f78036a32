// Package runtime is the mapping engine (spec's tick loop and per-gesture
// state machines): it turns mapping-item activations into sequences of
// wire.InjectTouchEvent / wire.InjectKeycode published onto the session
// controller's broadcast bus.
package runtime

import "github.com/akichase/scrcpy-mask/internal/mapping"

// Bound groups a validated mapping.Config's items by kind, in file order,
// so the engine can address an instance by kind + index (the "kind#index"
// addressing the mapping model documents).
type Bound struct {
	OriginalSize mapping.Size

	SingleTap      []mapping.SingleTap
	RepeatTap      []mapping.RepeatTap
	MultipleTap    []mapping.MultipleTap
	Swipe          []mapping.Swipe
	DirectionPad   []mapping.DirectionPad
	MouseCastSpell []mapping.MouseCastSpell
	PadCastSpell   []mapping.PadCastSpell
	CancelCast     []mapping.CancelCast
	Observation    []mapping.Observation
	Fps            []mapping.Fps
	Fire           []mapping.Fire
	RawInput       []mapping.RawInput
	Script         []mapping.Script
}

// Bind groups cfg's items by kind. cfg is assumed already validated.
func Bind(cfg mapping.Config) Bound {
	b := Bound{OriginalSize: cfg.OriginalSize}
	for _, item := range cfg.Mappings {
		switch item.Kind {
		case mapping.KindSingleTap:
			b.SingleTap = append(b.SingleTap, *item.SingleTap)
		case mapping.KindRepeatTap:
			b.RepeatTap = append(b.RepeatTap, *item.RepeatTap)
		case mapping.KindMultipleTap:
			b.MultipleTap = append(b.MultipleTap, *item.MultipleTap)
		case mapping.KindSwipe:
			b.Swipe = append(b.Swipe, *item.Swipe)
		case mapping.KindDirectionPad:
			b.DirectionPad = append(b.DirectionPad, *item.DirectionPad)
		case mapping.KindMouseCastSpell:
			b.MouseCastSpell = append(b.MouseCastSpell, *item.MouseCastSpell)
		case mapping.KindPadCastSpell:
			b.PadCastSpell = append(b.PadCastSpell, *item.PadCastSpell)
		case mapping.KindCancelCast:
			b.CancelCast = append(b.CancelCast, *item.CancelCast)
		case mapping.KindObservation:
			b.Observation = append(b.Observation, *item.Observation)
		case mapping.KindFps:
			b.Fps = append(b.Fps, *item.Fps)
		case mapping.KindFire:
			b.Fire = append(b.Fire, *item.Fire)
		case mapping.KindRawInput:
			b.RawInput = append(b.RawInput, *item.RawInput)
		case mapping.KindScript:
			b.Script = append(b.Script, *item.Script)
		}
	}
	return b
}
