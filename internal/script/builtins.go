package script

import (
	"strings"
	"time"
)

// callPrint info-logs the stringified, space-joined arguments.
func (it *interp) callPrint(args []Value) (Value, *Error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	if it.env.Host != nil {
		it.env.Host.Log(strings.Join(parts, " "))
	}
	return IntValue(0), nil
}

// callWait sleeps the current script task; it needs no Host since it has
// no device-facing side effect.
func (it *interp) callWait(span Span, args []Value) (Value, *Error) {
	if len(args) != 1 || !args[0].IsInt() {
		return Value{}, it.errAt(span, "the wait function takes one argument: time (int)")
	}
	time.Sleep(time.Duration(args[0].Int()) * time.Millisecond)
	return IntValue(0), nil
}

// callTap implements tap(pointer_id, x, y, action?) (spec §4.4):
// "default" does Down, sleep 30ms, Up.
func (it *interp) callTap(span Span, args []Value) (Value, *Error) {
	const usage = "the tap function takes 3-4 arguments: pointer_id (int), x (int), y (int), action (optional string: 'default', 'down', 'up', or 'move', default is 'default')"
	if len(args) < 3 || len(args) > 4 {
		return Value{}, it.errAt(span, usage)
	}
	action := "default"
	if len(args) == 4 {
		if !args[3].IsStr() {
			return Value{}, it.errAt(span, usage)
		}
		action = args[3].Str()
	}
	if !args[0].IsInt() || !args[1].IsInt() || !args[2].IsInt() {
		return Value{}, it.errAt(span, usage)
	}
	p := args[0].Int()
	if p < 0 {
		return Value{}, it.errAt(span, "the pointer_id must be non-negative")
	}
	switch action {
	case "default", "down", "up", "move":
	default:
		return Value{}, it.errAt(span, "invalid action '%s', action must be one of 'default', 'down', 'up', or 'move'", action)
	}

	x, y := int32(args[1].Int()), int32(args[2].Int())
	sendAction := action
	if action == "default" {
		sendAction = "down"
	}
	if err := it.env.Host.Tap(uint64(p), x, y, sendAction); err != nil {
		return Value{}, it.errAt(span, "tap failed: %s", err)
	}
	if action == "default" {
		time.Sleep(30 * time.Millisecond)
		if err := it.env.Host.Tap(uint64(p), x, y, "up"); err != nil {
			return Value{}, it.errAt(span, "tap failed: %s", err)
		}
	}
	return IntValue(0), nil
}

// callSwipe implements swipe(pointer_id, interval, x1, y1, x2, y2, ...):
// an even number of coordinates after the first two args, at least 3
// points (6 trailing values).
func (it *interp) callSwipe(span Span, args []Value) (Value, *Error) {
	const usage = "the swipe function takes at least 6 arguments: pointer_id (int), interval (int), x1 (int), y1 (int), x2 (int), y2 (int)..."
	if len(args) < 6 || len(args)%2 != 0 {
		return Value{}, it.errAt(span, usage)
	}
	if !args[0].IsInt() || !args[1].IsInt() || args[0].Int() < 0 || args[1].Int() < 0 {
		return Value{}, it.errAt(span, "the pointer_id and interval must be non-negative integers")
	}
	pointerID := uint64(args[0].Int())
	interval := uint64(args[1].Int())

	var points [][2]int32
	for i := 2; i < len(args); i += 2 {
		if !args[i].IsInt() || !args[i+1].IsInt() {
			return Value{}, it.errAt(span, "coordinates at index %d and %d must be integers", i, i+1)
		}
		points = append(points, [2]int32{int32(args[i].Int()), int32(args[i+1].Int())})
	}

	if err := it.env.Host.Swipe(pointerID, interval, points); err != nil {
		return Value{}, it.errAt(span, "swipe failed: %s", err)
	}
	return IntValue(0), nil
}

// callSendKey implements send_key(name, action?, metastate?); "default"
// sends Down then Up.
func (it *interp) callSendKey(span Span, args []Value) (Value, *Error) {
	const usage = "the send_key function takes 1-3 arguments: key_name (string), action (optional string: 'down' or 'up', default 'default'), metastate (optional string, default 'NONE')"
	if len(args) == 0 || len(args) > 3 {
		return Value{}, it.errAt(span, usage)
	}
	if !args[0].IsStr() {
		return Value{}, it.errAt(span, "first argument must be a string (key_name)")
	}
	name := args[0].Str()

	action := "default"
	if len(args) >= 2 {
		if !args[1].IsStr() {
			return Value{}, it.errAt(span, "second argument must be a string (action)")
		}
		action = args[1].Str()
	}
	metastate := "NONE"
	if len(args) >= 3 {
		if !args[2].IsStr() {
			return Value{}, it.errAt(span, "third argument must be a string (metastate)")
		}
		metastate = args[2].Str()
	}

	switch action {
	case "default", "down", "up":
	default:
		return Value{}, it.errAt(span, "invalid action '%s', must be 'default', 'down' or 'up'", action)
	}

	if action == "default" {
		if err := it.env.Host.SendKey(name, "down", metastate); err != nil {
			return Value{}, it.errAt(span, "send_key failed: %s", err)
		}
		if err := it.env.Host.SendKey(name, "up", metastate); err != nil {
			return Value{}, it.errAt(span, "send_key failed: %s", err)
		}
		return IntValue(0), nil
	}

	if err := it.env.Host.SendKey(name, action, metastate); err != nil {
		return Value{}, it.errAt(span, "send_key failed: %s", err)
	}
	return IntValue(0), nil
}

// callPasteText implements paste_text(text).
func (it *interp) callPasteText(span Span, args []Value) (Value, *Error) {
	if len(args) != 1 || !args[0].IsStr() {
		return Value{}, it.errAt(span, "the paste_text function takes one argument: text (string)")
	}
	if err := it.env.Host.PasteText(args[0].Str()); err != nil {
		return Value{}, it.errAt(span, "paste_text failed: %s", err)
	}
	return IntValue(0), nil
}
