package mapping

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes the item as its inner struct's fields plus a "type"
// discriminator, mirroring the tag="type" internally-tagged shape authors
// already have on disk.
func (i Item) MarshalJSON() ([]byte, error) {
	var inner interface{}
	switch i.Kind {
	case KindSingleTap:
		inner = i.SingleTap
	case KindRepeatTap:
		inner = i.RepeatTap
	case KindMultipleTap:
		inner = i.MultipleTap
	case KindSwipe:
		inner = i.Swipe
	case KindDirectionPad:
		inner = i.DirectionPad
	case KindMouseCastSpell:
		inner = i.MouseCastSpell
	case KindPadCastSpell:
		inner = i.PadCastSpell
	case KindCancelCast:
		inner = i.CancelCast
	case KindObservation:
		inner = i.Observation
	case KindFps:
		inner = i.Fps
	case KindFire:
		inner = i.Fire
	case KindRawInput:
		inner = i.RawInput
	case KindScript:
		inner = i.Script
	default:
		return nil, fmt.Errorf("mapping: unknown item kind %q", i.Kind)
	}

	b, err := json.Marshal(inner)
	if err != nil {
		return nil, fmt.Errorf("mapping: marshal %s item: %w", i.Kind, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	typeJSON, err := json.Marshal(i.Kind)
	if err != nil {
		return nil, err
	}
	fields["type"] = typeJSON
	return json.Marshal(fields)
}

// UnmarshalJSON reads the "type" discriminator first, then decodes the full
// object into the matching concrete struct.
func (i *Item) UnmarshalJSON(data []byte) error {
	var tagged struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("mapping: reading item type: %w", err)
	}
	i.Kind = tagged.Type

	switch tagged.Type {
	case KindSingleTap:
		i.SingleTap = &SingleTap{}
		return json.Unmarshal(data, i.SingleTap)
	case KindRepeatTap:
		i.RepeatTap = &RepeatTap{}
		return json.Unmarshal(data, i.RepeatTap)
	case KindMultipleTap:
		i.MultipleTap = &MultipleTap{}
		return json.Unmarshal(data, i.MultipleTap)
	case KindSwipe:
		i.Swipe = &Swipe{}
		return json.Unmarshal(data, i.Swipe)
	case KindDirectionPad:
		i.DirectionPad = &DirectionPad{}
		return json.Unmarshal(data, i.DirectionPad)
	case KindMouseCastSpell:
		i.MouseCastSpell = &MouseCastSpell{}
		return json.Unmarshal(data, i.MouseCastSpell)
	case KindPadCastSpell:
		i.PadCastSpell = &PadCastSpell{}
		return json.Unmarshal(data, i.PadCastSpell)
	case KindCancelCast:
		i.CancelCast = &CancelCast{}
		return json.Unmarshal(data, i.CancelCast)
	case KindObservation:
		i.Observation = &Observation{}
		return json.Unmarshal(data, i.Observation)
	case KindFps:
		i.Fps = &Fps{}
		return json.Unmarshal(data, i.Fps)
	case KindFire:
		i.Fire = &Fire{}
		return json.Unmarshal(data, i.Fire)
	case KindRawInput:
		i.RawInput = &RawInput{}
		return json.Unmarshal(data, i.RawInput)
	case KindScript:
		i.Script = &Script{}
		return json.Unmarshal(data, i.Script)
	default:
		return fmt.Errorf("mapping: unknown item type %q", tagged.Type)
	}
}
