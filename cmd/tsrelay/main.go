// Package main is the entry point for the tsrelay application.
package main

import (
	"os"

	"github.com/jmylchreest/tsrelay/cmd/tsrelay/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
