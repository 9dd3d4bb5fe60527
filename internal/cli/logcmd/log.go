// Package logcmd implements the log command, which prints the tail of the
// workspace install log.
package logcmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/Mrjing/npm-global-exec/internal/core/config"
	"github.com/Mrjing/npm-global-exec/internal/core/workspace"
)

// LogCmd defines the structure for the 'log' command.
var LogCmd = &cli.Command{
	Name:  "log",
	Usage: "Prints the most recent install log lines",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "lines",
			Aliases: []string{"n"},
			Value:   20,
			Usage:   "number of log lines to print",
		},
		&cli.StringFlag{
			Name:    "workspace",
			Aliases: []string{"w"},
			Usage:   "workspace directory to inspect (overrides configuration)",
		},
	},
	Action: func(c *cli.Context) error {
		n := c.Int("lines")
		if n <= 0 {
			return cli.Exit("Error: --lines must be positive.", 1)
		}

		cfg, err := config.Load(config.DefaultPath())
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
		}
		if dir := c.String("workspace"); dir != "" {
			cfg.WorkspaceDir = dir
		}
		ws := workspace.New(cfg.WorkspaceDir)

		data, err := os.ReadFile(ws.LogPath())
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Printf("No install log at %s.\n", ws.LogPath())
				return nil
			}
			return cli.Exit(fmt.Sprintf("Error reading install log: %v", err), 1)
		}

		text := strings.TrimRight(string(data), "\n")
		if text == "" {
			return nil
		}

		lines := strings.Split(text, "\n")
		if len(lines) > n {
			lines = lines[len(lines)-n:]
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}
