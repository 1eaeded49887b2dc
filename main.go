package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/uclalibrary/ftva-etl/cmd"
)

// version is stamped at release time; the default marks dev builds.
var version = "0.1.0-dev"

func main() {
	// fang layers completions, manpages and --version on the cobra tree.
	err := fang.Execute(
		context.Background(),
		cmd.NewRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	)
	if err != nil {
		os.Exit(1)
	}
}
