// Package run implements the install-then-resolve-then-launch pipeline
// behind both the bare `npmge <spec>` invocation and the explicit run
// command.
package run

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Mrjing/npm-global-exec/internal/core/config"
	"github.com/Mrjing/npm-global-exec/internal/core/installer"
	"github.com/Mrjing/npm-global-exec/internal/core/installlog"
	"github.com/Mrjing/npm-global-exec/internal/core/launcher"
	"github.com/Mrjing/npm-global-exec/internal/core/pkgjson"
	"github.com/Mrjing/npm-global-exec/internal/core/specifier"
	"github.com/Mrjing/npm-global-exec/internal/core/workspace"
)

// Flags returns the pipeline flags, shared by the run command and the
// application-level default action.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "workspace",
			Aliases: []string{"w"},
			Usage:   "Override the workspace directory",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose output",
		},
	}
}

// NewRunCommand creates the cli.Command for the "run" command.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Install a package on demand and run its bin entry",
		ArgsUsage: "<package-spec> [args...]",
		Flags:     Flags(),
		Action:    Action,
	}
}

// Action executes the pipeline: workspace setup, npm install with retries,
// bin resolution, launch. On success the process exit code is exactly the
// child's exit code; every stage failure exits 1 with a diagnostic.
func Action(c *cli.Context) error {
	if c.NArg() < 1 {
		_ = cli.ShowAppHelp(c)
		return fail("missing package specifier")
	}
	verbose := c.Bool("verbose")
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	spec, err := specifier.Parse(c.Args().First())
	if err != nil {
		return fail("invalid package specifier: %v", err)
	}
	launchArgs := c.Args().Tail()

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fail("%v", err)
	}
	root := cfg.WorkspaceDir
	if dir := c.String("workspace"); dir != "" {
		root = dir
	}

	ws := workspace.New(root)
	if err := ws.Ensure(cfg.Registry); err != nil {
		return fail("failed to prepare workspace: %v", err)
	}
	if verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Workspace ready at %s\n", ws.Root)
	}

	log, err := installlog.Open(ws.LogPath())
	if err != nil {
		return fail("%v", err)
	}
	defer func() { _ = log.Close() }()

	if verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Installing %s (install log: %s)\n", spec.Raw, log.Path())
	}
	if err := installer.New(ws, log, cfg).Install(c.Context, spec); err != nil {
		return fail("%v", err)
	}

	treeDir := ws.PackageDir(spec.Name)
	binPath, err := pkgjson.ResolveBin(treeDir, spec.Name)
	if err != nil {
		return fail("%v", err)
	}
	if verbose {
		reportVersionSkew(spec, treeDir)
		_, _ = fmt.Fprintf(os.Stdout, "Launching %s\n", binPath)
	}

	code, err := launcher.New(cfg.NodeBin).Launch(c.Context, binPath, launchArgs)
	if err != nil {
		return fail("%v", err)
	}
	if code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

// fail formats a fatal pipeline diagnostic as an exit-1 error.
func fail(format string, args ...any) cli.ExitCoder {
	red := color.New(color.FgRed).SprintFunc()
	return cli.Exit(fmt.Sprintf("%s %s", red("Error:"), fmt.Sprintf(format, args...)), 1)
}

// reportVersionSkew notes when a pinned request resolved to a different
// installed version, which can happen when the registry substitutes a
// build or the tree predates the request.
func reportVersionSkew(spec specifier.Specifier, treeDir string) {
	requested, ok := spec.Pinned()
	if !ok {
		return
	}
	manifest, err := pkgjson.Load(treeDir)
	if err != nil {
		return
	}
	if installed, ok := manifest.SemVer(); ok && !installed.Equal(requested) {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: requested %s@%s but the installed tree reports %s\n",
			spec.Name, requested, installed)
	}
}
