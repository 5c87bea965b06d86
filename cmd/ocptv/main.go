package main

import (
	"fmt"
	"os"

	"github.com/roach88/ocptv/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(cli.GetExitCode(err))
	}
}
