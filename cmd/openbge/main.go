// Command openbge is a command line client for the OpenBGE platform.
package main

import (
	"github.com/openbge-client/cmd/openbge/cmd"
)

func main() {
	cmd.Execute()
}
