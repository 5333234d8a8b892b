package xgo

import (
	"runtime/debug"

	"github.com/go-kratos/kratos/v2/log"
)

// RecoverFromError recovers a panic in the calling goroutine, logs the stack,
// and hands the panic value to cb when it is set.
func RecoverFromError(cb func(e any)) {
	if e := recover(); e != nil {
		log.Errorf("Recover => %v\n%s\n", e, debug.Stack())
		if cb != nil {
			cb(e)
		}
	}
}

// SafeGo starts fn in a new goroutine guarded by RecoverFromError.
func SafeGo(fn func()) {
	go func() {
		defer RecoverFromError(nil)
		fn()
	}()
}
