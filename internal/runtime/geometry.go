package runtime

import (
	"math"

	"github.com/akichase/scrcpy-mask/internal/mapping"
)

func posToVec2(p mapping.Position) Vec2 { return Vec2{float32(p.X), float32(p.Y)} }

func vec2ToPos(v Vec2) mapping.Position {
	return mapping.Position{X: int32(math.Round(float64(v.X))), Y: int32(math.Round(float64(v.Y)))}
}

// Vec2 is a float point in the original (authored) frame, used internally
// by the gesture state machines for interpolation; mapping.Position is the
// integer on-disk/on-wire form.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

func (v Vec2) Lerp(o Vec2, t float32) Vec2 {
	return Vec2{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
	}
}

// easeSigmoidLike is the default easing curve for pad/swipe/cast
// interpolation: a logistic curve centered at t=0.5 with steepness 12. It
// is not renormalized, so ease(0)≈0.0025 and ease(1)≈0.9975.
func easeSigmoidLike(t float32) float32 {
	return float32(1 / (1 + math.Exp(float64(-12*(t-0.5)))))
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// interpolationSteps returns how many Move steps a duration should be split
// into given the minimum step interval, always at least 1.
func interpolationSteps(durationMS uint64, minStepIntervalMS uint64) int {
	if minStepIntervalMS == 0 {
		return 1
	}
	steps := int(durationMS / minStepIntervalMS)
	if steps < 1 {
		steps = 1
	}
	return steps
}
