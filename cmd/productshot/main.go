// productshot generates product photos from the command line.
package main

import (
	"os"

	"productshot/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
