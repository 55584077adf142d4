package main

import (
	"fmt"
	"os"

	"github.com/temirov/podrelease/cmd/cli"
	"github.com/temirov/podrelease/internal/releaseerrors"
	"github.com/temirov/podrelease/internal/ui"
)

// main executes the podrelease command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintln(os.Stderr, ui.FailureMessage(os.Stderr, executionError))
		os.Exit(releaseerrors.ExitCode(executionError))
	}
}
