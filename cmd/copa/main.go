package main

import (
	"os"

	"github.com/wonny/copa/cmd/copa/commands"
)

// main is the entry point for the copa CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
