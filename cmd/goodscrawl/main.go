// cmd/goodscrawl/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/goodscrawl/internal/cli"
)

func main() {
	// Interrupts cancel the running command; pages and the browser pool are
	// closed before exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
