package update

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Mrjing/npm-global-exec/internal/core/config"
	"github.com/Mrjing/npm-global-exec/internal/core/installer"
	"github.com/Mrjing/npm-global-exec/internal/core/installlog"
	"github.com/Mrjing/npm-global-exec/internal/core/pkgjson"
	"github.com/Mrjing/npm-global-exec/internal/core/specifier"
	"github.com/Mrjing/npm-global-exec/internal/core/workspace"
)

// NewUpdateCommand creates a new cli.Command for the "update" command.
func NewUpdateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Reinstalls an installed package at its latest version",
		ArgsUsage: "<package>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "workspace directory to operate on (overrides configuration)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Action: func(c *cli.Context) error {
			verbose := c.Bool("verbose")
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
				_, _ = fmt.Fprintln(os.Stdout, "Executing 'update' command...")
			}

			if c.NArg() < 1 {
				return cli.Exit("Error: Missing package name argument.", 1)
			}

			spec, err := specifier.Parse(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			if spec.Version != "" {
				_, _ = fmt.Fprintf(os.Stderr, "Warning: version suffix '%s' is ignored; update always installs the latest version.\n", spec.Version)
			}

			cfg, err := config.Load(config.DefaultPath())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
			}
			if dir := c.String("workspace"); dir != "" {
				cfg.WorkspaceDir = dir
			}
			ws := workspace.New(cfg.WorkspaceDir)

			treeDir := ws.PackageDir(spec.Name)
			if _, err := os.Stat(treeDir); err != nil {
				return cli.Exit(fmt.Sprintf("Error: Package '%s' is not installed; nothing to update.", spec.Name), 1)
			}

			previousVersion := ""
			if manifest, err := pkgjson.Load(treeDir); err == nil {
				previousVersion = manifest.Version
			}
			if verbose && previousVersion != "" {
				_, _ = fmt.Fprintf(os.Stdout, "Currently installed version of %s: %s\n", spec.Name, previousVersion)
			}

			if err := ws.Ensure(cfg.Registry); err != nil {
				return cli.Exit(fmt.Sprintf("Error preparing workspace: %v", err), 1)
			}

			log, err := installlog.Open(ws.LogPath())
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}
			defer func() { _ = log.Close() }()

			latest, err := specifier.Parse(spec.Name + "@latest")
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			inst := installer.New(ws, log, cfg)
			if err := inst.Install(c.Context, latest); err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			refreshed, err := pkgjson.Load(treeDir)
			if err != nil {
				// The install succeeded; reporting the new version is optional.
				_, _ = fmt.Fprintf(os.Stdout, "Updated %s.\n", spec.Name)
				return nil
			}

			switch {
			case previousVersion != "" && previousVersion == refreshed.Version:
				_, _ = fmt.Fprintf(os.Stdout, "Package %s is already at the latest version (%s).\n", spec.Name, refreshed.Version)
			case previousVersion != "":
				_, _ = fmt.Fprintf(os.Stdout, "Updated %s from %s to %s.\n", spec.Name, previousVersion, refreshed.Version)
			default:
				_, _ = fmt.Fprintf(os.Stdout, "Updated %s to %s.\n", spec.Name, refreshed.Version)
			}
			return nil
		},
	}
}
