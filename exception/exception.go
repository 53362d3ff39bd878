package exception

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/monitoring"
)

// SafeGo runs fn on its own goroutine and logs, rather than propagates, a panic.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverAndLog(name, false)
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the process cannot live without.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer recoverAndLog(name, true)
		fn()
	}()
}

func recoverAndLog(name string, fatal bool) {
	r := recover()
	if r == nil {
		return
	}
	monitoring.IncreasePanicCount()
	logx.Error("PANIC", "Panic in: ", name, " ", r, "\n", string(debug.Stack()))
	if fatal {
		os.Exit(1)
	}
}
