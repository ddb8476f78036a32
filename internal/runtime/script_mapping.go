package runtime

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/akichase/scrcpy-mask/internal/script"
)

// scriptSet is one Script mapping's pre-parsed pressed/held/released
// programs (spec §4.3.l: "Each script is parsed once into an AST").
type scriptSet struct {
	pressed, held, released *script.Script
}

// scriptActiveState is a Script binding's held-timer bookkeeping while
// activated; mirrors repeatTapState / original_source's ActiveScriptMap.
type scriptActiveState struct {
	stop chan struct{}
}

// buildScripts parses every Script mapping's three phases once. A phase
// that fails to parse is logged and treated as empty rather than aborting
// engine construction — mapping-config validation (internal/mapping.Validate
// with a script checker) is what's supposed to catch this before the
// config ever reaches here.
func buildScripts(items []scriptSetSource) []scriptSet {
	sets := make([]scriptSet, len(items))
	for i, it := range items {
		sets[i] = scriptSet{
			pressed:  mustParseScript(it.pressed, "pressed"),
			held:     mustParseScript(it.held, "held"),
			released: mustParseScript(it.released, "released"),
		}
	}
	return sets
}

type scriptSetSource struct {
	pressed, held, released string
}

func mustParseScript(source, phase string) *script.Script {
	s, err := script.New(source)
	if err != nil {
		log.Error().Str("phase", phase).Msg(err.String())
		empty, _ := script.New("")
		return empty
	}
	return s
}

// ActivateScript implements spec §4.3.l's activation branch: run pressed
// once on a background task; if held is non-empty, start its repeating
// timer.
func (e *Engine) ActivateScript(index int) {
	e.mu.Lock()
	m := e.b.Script[index]
	set := e.scripts[index]
	if _, running := e.scriptActive[index]; running {
		e.mu.Unlock()
		return
	}
	var stop chan struct{}
	if !set.held.Empty() {
		stop = make(chan struct{})
		e.scriptActive[index] = &scriptActiveState{stop: stop}
	}
	e.mu.Unlock()

	if !set.pressed.Empty() {
		env := e.scriptEnv()
		go runScript(set.pressed, env, "pressed")
	}

	if stop == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(time.Duration(m.Interval) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				env := e.scriptEnv()
				go runScript(set.held, env, "held")
			}
		}
	}()
}

// DeactivateScript implements spec §4.3.l's deactivation branch: stop the
// held timer (if any) and run released once on a background task.
func (e *Engine) DeactivateScript(index int) {
	e.mu.Lock()
	set := e.scripts[index]
	st, running := e.scriptActive[index]
	delete(e.scriptActive, index)
	e.mu.Unlock()

	if running {
		close(st.stop)
	}

	if !set.released.Empty() {
		env := e.scriptEnv()
		go runScript(set.released, env, "released")
	}
}

// scriptEnv snapshots the four preset variables at invocation time.
func (e *Engine) scriptEnv() script.Env {
	e.mu.Lock()
	cursor := e.cursor
	e.mu.Unlock()
	return script.Env{
		OriginalW: int64(e.b.OriginalSize.Width),
		OriginalH: int64(e.b.OriginalSize.Height),
		CursorX:   int64(cursor.X),
		CursorY:   int64(cursor.Y),
		Host:      scriptHost{e: e},
	}
}

func runScript(s *script.Script, env script.Env, phase string) {
	if err := s.Run(env); err != nil {
		log.Error().Str("phase", phase).Msg(err.String())
	}
}

// EvalScript parses and runs src once against the engine's current cursor
// and canvas state, synchronously. This is the facade's eval_script
// endpoint's entry point: an ad-hoc script that isn't bound to any mapping
// item, so there is no pre-parsed scriptSet to reuse.
func (e *Engine) EvalScript(src string) error {
	s, perr := script.New(src)
	if perr != nil {
		return fmt.Errorf("parse: %s", perr.String())
	}
	if rerr := s.Run(e.scriptEnv()); rerr != nil {
		return fmt.Errorf("run: %s", rerr.String())
	}
	return nil
}
