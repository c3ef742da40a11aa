// Command mushroomctl is the command-line client for the mushroom catalogue.
package main

import (
	"os"

	"github.com/sakif/mushroom-tracker/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
