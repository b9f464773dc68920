// Command rainctl inspects rainfall datasets and runs predictions offline.
package main

import (
	"os"

	"github.com/couchcryptid/rainfall-intel/internal/cli/commands"
	"github.com/couchcryptid/rainfall-intel/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		ui.PrintError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
