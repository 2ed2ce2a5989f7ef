package main

import (
	"fmt"
	"os"

	"github.com/stratalab/strata/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands format their own failures; this catches what they
		// return (usage errors, exit-code carriers).
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
