// Package main is the entry point for the mudra CLI.
//
// Usage:
//
//	mudra [flags] <command> [args]
//
// Commands:
//
//	run       - Start gesture control
//	auth      - Authorize mudra against the Spotify account
//	accuracy  - Show recorded accuracy trials
//	history   - Show recent playback commands
//	config    - Show or initialize the configuration file
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/ayusman/mudra/cmd/mudra/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
