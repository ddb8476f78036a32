package api

import (
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// goSafe starts fn in its own goroutine, recovering and logging any panic
// instead of taking the process down — the same shape the teacher's
// utils.GoSafe uses around every long-lived goroutine (RTCP readers,
// companion-exit waiters).
func goSafe(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("component", "api").Str("task", name).
					Interface("panic", r).Bytes("stack", debug.Stack()).
					Msg("recovered panic")
			}
		}()
		fn()
	}()
}
