package mapping

import (
	"fmt"
	"strings"
)

// ScriptChecker parses a script source and returns a parse error, if any.
// internal/script implements this; mapping never imports script directly to
// keep the two packages decoupled, so callers that care about script
// validity pass a checker in.
type ScriptChecker func(source string) error

// Validate enforces the up-front config invariants: per-kind instance count
// <= MaxInstancesPerKind, non-empty MultipleTap/Swipe position lists, the
// Fps margin, and (when checkScript is non-nil) that every Script mapping's
// three phases parse. It returns every violation found, not just the first.
func Validate(cfg Config, checkScript ScriptChecker) error {
	var errs []string
	counts := make(map[Kind]int)

	for idx, item := range cfg.Mappings {
		counts[item.Kind]++
		label := fmt.Sprintf("%s#%d", item.Kind, counts[item.Kind])

		if err := validateItem(item, cfg.OriginalSize, checkScript); err != nil {
			errs = append(errs, fmt.Sprintf("[%s] (index %d): %v", label, idx, err))
		}
	}

	for kind, n := range counts {
		if n > MaxInstancesPerKind {
			errs = append(errs, fmt.Sprintf("%s: %d instances exceeds the max of %d", kind, n, MaxInstancesPerKind))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("mapping config validation failed:\n%s", strings.Join(errs, "\n"))
}

func validateItem(item Item, canvas Size, checkScript ScriptChecker) error {
	switch item.Kind {
	case KindMultipleTap:
		if len(item.MultipleTap.Items) == 0 {
			return fmt.Errorf("MultipleTap's operation item list is empty")
		}
	case KindSwipe:
		if len(item.Swipe.Positions) == 0 {
			return fmt.Errorf("Swipe's position list is empty")
		}
	case KindFps:
		if err := validateFPSMargin(item.Fps.Position, canvas); err != nil {
			return err
		}
	case KindScript:
		if checkScript == nil {
			return nil
		}
		for _, phase := range []struct {
			name   string
			source string
		}{
			{"pressed", item.Script.Pressed},
			{"held", item.Script.Held},
			{"released", item.Script.Released},
		} {
			if strings.TrimSpace(phase.source) == "" {
				continue
			}
			if err := checkScript(phase.source); err != nil {
				return fmt.Errorf("%s script: %w", phase.name, err)
			}
		}
	}
	return nil
}

func validateFPSMargin(pos Position, canvas Size) error {
	if pos.X < FPSMargin || pos.Y < FPSMargin ||
		int32(canvas.Width)-pos.X < FPSMargin || int32(canvas.Height)-pos.Y < FPSMargin {
		return fmt.Errorf("Fps center must lie at least %d px inside the mask", FPSMargin)
	}
	return nil
}
