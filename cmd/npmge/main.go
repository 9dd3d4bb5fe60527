package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Mrjing/npm-global-exec/internal/cli/initcmd"
	"github.com/Mrjing/npm-global-exec/internal/cli/list"
	"github.com/Mrjing/npm-global-exec/internal/cli/logcmd"
	"github.com/Mrjing/npm-global-exec/internal/cli/remove"
	"github.com/Mrjing/npm-global-exec/internal/cli/run"
	"github.com/Mrjing/npm-global-exec/internal/cli/self"
	"github.com/Mrjing/npm-global-exec/internal/cli/update"
)

// version is overridden at release time via -ldflags.
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "npmge",
		Usage:   "Install npm packages just in time and launch their executables",
		Version: version,
		// The bare form `npmge <package> [args...]` behaves like the run
		// command; unknown first arguments fall through to this action.
		Flags:  run.Flags(),
		Action: run.Action,
		Commands: []*cli.Command{
			run.NewRunCommand(),
			initcmd.GetInitCommand(),
			list.ListCmd,
			remove.RemoveCommand(),
			update.NewUpdateCommand(),
			logcmd.LogCmd,
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
