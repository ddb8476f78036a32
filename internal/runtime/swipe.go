package runtime

import "github.com/akichase/scrcpy-mask/internal/wire"

// PulseSwipe implements spec §4.3.d: Down at positions[0]; for each
// subsequent point, interpolate with steps = max(1, interval /
// MIN_MOVE_STEP_INTERVAL) using the sigmoid easing, sleeping
// interval/steps ms between Moves; Up at the final point.
func (e *Engine) PulseSwipe(index int) {
	e.mu.Lock()
	m := e.b.Swipe[index]
	e.mu.Unlock()

	points := make([]Vec2, len(m.Positions))
	for i, p := range m.Positions {
		points[i] = posToVec2(p)
	}
	go e.runSwipe(m.PointerID, m.Interval, points)
}

// runSwipe is the shared Down→eased-Move*→Up walk used by both the Swipe
// mapping and the script engine's swipe() builtin.
func (e *Engine) runSwipe(pointerID uint64, intervalMS uint64, points []Vec2) {
	if len(points) == 0 {
		return
	}
	e.touch(wire.ActionDown, pointerID, points[0])

	steps := interpolationSteps(intervalMS, MinMoveStepInterval)
	stepSleep := intervalMS / uint64(steps)

	for i := 1; i < len(points); i++ {
		from, to := points[i-1], points[i]
		for s := 1; s <= steps; s++ {
			t := easeSigmoidLike(float32(s) / float32(steps))
			e.touch(wire.ActionMove, pointerID, from.Lerp(to, t))
			if s < steps || i < len(points)-1 {
				sleepMS(stepSleep)
			}
		}
	}
	e.touch(wire.ActionUp, pointerID, points[len(points)-1])
}
