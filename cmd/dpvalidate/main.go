// Command dpvalidate propagates data properties through DP computation graphs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dpvalidate/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		var exitErr *cli.ExitError
		// Failures were already reported on stdout by the command.
		if !errors.As(err, &exitErr) || exitErr.Code != cli.ExitFailure {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
