package main

import (
	"os"

	"github.com/RogueNAND/fleetcommandav/cmd"
	"github.com/RogueNAND/fleetcommandav/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
