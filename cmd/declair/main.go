// declair adds, removes and lists packages in NixOS and Home Manager
// configurations without disturbing their formatting.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/timasoft/declair/internal/cmd"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.SetVersion(version)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "declair: %v\n", err)
		stop()
		os.Exit(1)
	}
}
