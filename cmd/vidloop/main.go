package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/igolaizola/vidloop/pkg/cli"
	"github.com/igolaizola/vidloop/pkg/cmd/loop"
)

// Build flags
var version = ""
var commit = ""
var date = ""

func main() {
	// Create signal based context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)

	// Launch command
	cmd := cli.NewCommand(version, commit, date)
	err := cmd.ParseAndRun(ctx, os.Args[1:])
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(loop.ExitCode(err))
	}
}
