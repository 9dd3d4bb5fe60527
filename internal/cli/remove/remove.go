package remove

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Mrjing/npm-global-exec/internal/core/config"
	"github.com/Mrjing/npm-global-exec/internal/core/installlog"
	"github.com/Mrjing/npm-global-exec/internal/core/specifier"
	"github.com/Mrjing/npm-global-exec/internal/core/workspace"
)

// RemoveCommand defines the structure for the 'remove' CLI command.
func RemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Removes an installed package tree from the shared workspace",
		ArgsUsage: "<package>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "workspace directory to operate on (overrides configuration)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("Error: Missing package name argument.", 1)
			}

			spec, err := specifier.Parse(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			cfg, err := config.Load(config.DefaultPath())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
			}
			if dir := c.String("workspace"); dir != "" {
				cfg.WorkspaceDir = dir
			}
			ws := workspace.New(cfg.WorkspaceDir)

			removed, err := ws.RemovePackageTree(spec.Name)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			if !removed {
				return cli.Exit(fmt.Sprintf("Error: Package '%s' is not installed.", spec.Name), 1)
			}

			logRemoval(ws, spec.Name)

			fmt.Printf("Removed %s.\n", spec.Name)
			return nil
		},
	}
}

// logRemoval records the removal in the install log. Logging is best effort;
// the tree is already gone.
func logRemoval(ws *workspace.Workspace, name string) {
	log, err := installlog.Open(ws.LogPath())
	if err != nil {
		return
	}
	defer func() { _ = log.Close() }()
	_ = log.Event("remove %s", name)
}
