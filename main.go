package main

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/sawlet/cmd"
	"github.com/mezonai/sawlet/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("SAWLET CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
