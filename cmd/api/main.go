package main

import (
	"github.com/devicenanny/notifier/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the notification API server.
func main() {
	fx.New(app.APIModule).Run()
}
