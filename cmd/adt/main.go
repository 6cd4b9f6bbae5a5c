// Command adt is a command-line client for ABAP Development Tools services.
//
// Connection settings come from a profiles file, see package config.
//
// Usage:
//
//	adt [--profile name] <command> [flags]
//
// Examples:
//
//	# Create a program in a local package
//	adt program create zhello --package '$tmp' --description "Hello"
//
//	# Upload source and activate
//	adt source write program zhello hello.abap --activate
//
//	# Run unit tests as JUnit for CI
//	adt aunit run class zcl_demo --output junit > junit.xml
//
//	# Interactive session
//	adt shell
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newCLI().Exec(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ec exitCoder
		if errors.As(err, &ec) {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}
