package main

import (
	"github.com/devicenanny/notifier/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the worker that dispatches queued checkout events.
func main() {
	fx.New(app.WorkerModule).Run()
}
