package main

import (
	"context"
	"os"
	"time"

	"github.com/sendwell/sendwell/internal/app"
)

func main() {
	application := app.New()            // Initialize the application
	code := application.Run(os.Args[1:]) // Run one dispatcher invocation
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
	os.Exit(code)
}
