package mapping

// Shared geometry/timing constants used by both validation here and the
// runtime's gesture state machines.
const (
	MinMoveStepLength   float32 = 25 // px
	MinMoveStepInterval         = 25 // ms

	// FPSMargin is how far a Fps item's center must sit inside the mask on
	// every side.
	FPSMargin int32 = 25

	// CastSpellDelayMS is the settle window a cast-spell Down waits before it
	// is considered "enabled" for per-tick Move tracking.
	CastSpellDelayMS uint64 = 50
)
