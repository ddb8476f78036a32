package mapping

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsEmptyConfig(t *testing.T) {
	assert.NoError(t, Validate(Default(), nil))
}

func TestValidateRejectsEmptyMultipleTap(t *testing.T) {
	cfg := Default()
	cfg.Mappings = []Item{{Kind: KindMultipleTap, MultipleTap: &MultipleTap{}}}
	err := Validate(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation item list is empty")
}

func TestValidateRejectsEmptySwipe(t *testing.T) {
	cfg := Default()
	cfg.Mappings = []Item{{Kind: KindSwipe, Swipe: &Swipe{}}}
	err := Validate(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position list is empty")
}

func TestValidateEnforcesFPSMargin(t *testing.T) {
	cfg := Config{OriginalSize: Size{Width: 1000, Height: 1000}}
	cfg.Mappings = []Item{{Kind: KindFps, Fps: &Fps{Position: Position{X: 5, Y: 500}}}}
	err := Validate(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fps center")
}

func TestValidateAcceptsFPSWithinMargin(t *testing.T) {
	cfg := Config{OriginalSize: Size{Width: 1000, Height: 1000}}
	cfg.Mappings = []Item{{Kind: KindFps, Fps: &Fps{Position: Position{X: 500, Y: 500}}}}
	assert.NoError(t, Validate(cfg, nil))
}

func TestValidateRejectsTooManyInstancesOfAKind(t *testing.T) {
	cfg := Default()
	for i := 0; i < MaxInstancesPerKind+1; i++ {
		cfg.Mappings = append(cfg.Mappings, Item{Kind: KindRawInput, RawInput: &RawInput{}})
	}
	err := Validate(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds the max")
}

func TestValidateRunsScriptCheckerOnNonEmptyPhases(t *testing.T) {
	cfg := Default()
	cfg.Mappings = []Item{{Kind: KindScript, Script: &Script{Pressed: "bad syntax"}}}

	checker := func(source string) error {
		return fmt.Errorf("parse error at %q", source)
	}
	err := Validate(cfg, checker)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pressed script")
}

func TestValidateSkipsScriptCheckerOnEmptyPhases(t *testing.T) {
	cfg := Default()
	cfg.Mappings = []Item{{Kind: KindScript, Script: &Script{}}}

	called := false
	checker := func(source string) error {
		called = true
		return errors.New("should not be called")
	}
	assert.NoError(t, Validate(cfg, checker))
	assert.False(t, called)
}
