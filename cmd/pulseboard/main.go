// Package main is the entrypoint for the pulseboard CLI.
package main

import (
	"os"

	"github.com/pulseboard/pulseboard/cmd"
	"github.com/pulseboard/pulseboard/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
	os.Exit(0)
}
