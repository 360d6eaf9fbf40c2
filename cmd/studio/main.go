// Command studio manages a studio's client forms, inventory and preferences.
package main

import (
	"os"

	"github.com/mesh-intelligence/studiobook/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
