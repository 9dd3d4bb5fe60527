// Package initcmd implements the init command, which provisions the shared
// install workspace ahead of its first use.
package initcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Mrjing/npm-global-exec/internal/core/config"
	"github.com/Mrjing/npm-global-exec/internal/core/workspace"
)

// GetInitCommand returns the definition for the "init" command.
func GetInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the shared install workspace and its seed files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "workspace directory to provision (overrides configuration)",
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "registry URL seeded into the workspace .npmrc (overrides configuration)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("verbose") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			cfg, err := config.Load(config.DefaultPath())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
			}
			if dir := c.String("workspace"); dir != "" {
				cfg.WorkspaceDir = dir
			}
			if reg := c.String("registry"); reg != "" {
				cfg.Registry = reg
			}

			ws := workspace.New(cfg.WorkspaceDir)
			slog.Debug("provisioning workspace", "dir", ws.Root, "registry", cfg.Registry)

			manifestExisted := fileExists(ws.ManifestPath())
			npmrcExisted := fileExists(ws.NpmrcPath())

			if err := ws.Ensure(cfg.Registry); err != nil {
				return cli.Exit(fmt.Sprintf("Error preparing workspace: %v", err), 1)
			}

			fmt.Printf("Workspace: %s\n", ws.Root)
			reportSeed(ws.ManifestPath(), manifestExisted)
			reportSeed(ws.NpmrcPath(), npmrcExisted)
			return nil
		},
	}
}

func reportSeed(path string, existed bool) {
	if existed {
		fmt.Printf("Kept existing %s\n", path)
	} else {
		fmt.Printf("Created %s\n", path)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
