package list

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Mrjing/npm-global-exec/internal/core/config"
	"github.com/Mrjing/npm-global-exec/internal/core/pkgjson"
	"github.com/Mrjing/npm-global-exec/internal/core/workspace"
)

// packageDisplayInfo holds all information needed for displaying one
// installed package.
type packageDisplayInfo struct {
	Name       string
	Version    string
	VersionOK  bool
	BinPath    string
	StatusInfo string // set when the manifest or bin entry is unusable
}

// ListCmd defines the structure for the 'list' command.
var ListCmd = &cli.Command{
	Name:    "list",
	Aliases: []string{"ls"},
	Usage:   "Displays packages installed in the shared workspace.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "workspace",
			Aliases: []string{"w"},
			Usage:   "workspace directory to inspect (overrides configuration)",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := config.Load(config.DefaultPath())
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error loading configuration: %v", err), 1)
		}
		if dir := c.String("workspace"); dir != "" {
			cfg.WorkspaceDir = dir
		}
		ws := workspace.New(cfg.WorkspaceDir)

		names, err := ws.InstalledNames()
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error reading workspace: %v", err), 1)
		}

		workspacePathColor := color.New(color.FgHiBlack, color.Bold, color.Underline).SprintFunc()
		packagesHeaderColor := color.New(color.FgCyan, color.Bold).SprintFunc()
		pkgNameColor := color.New(color.FgWhite).SprintFunc()
		pkgVersionColor := color.New(color.FgYellow).SprintFunc()
		pkgBinColor := color.New(color.FgHiBlack).SprintFunc()
		invalidColor := color.New(color.FgRed).SprintFunc()

		fmt.Printf("%s %s\n", packagesHeaderColor("workspace:"), workspacePathColor(ws.Root))
		fmt.Println()

		if len(names) == 0 {
			fmt.Println(packagesHeaderColor("packages:"))
			fmt.Println("No packages installed.")
			return nil
		}

		var displayPkgs []packageDisplayInfo
		for _, name := range names {
			info := packageDisplayInfo{Name: name}

			manifest, err := pkgjson.Load(ws.PackageDir(name))
			if err != nil {
				info.StatusInfo = "unreadable manifest"
				displayPkgs = append(displayPkgs, info)
				continue
			}

			info.Version = manifest.Version
			_, info.VersionOK = manifest.SemVer()

			if bin, err := manifest.BinPath(name); err == nil {
				info.BinPath = bin
			} else {
				info.StatusInfo = "no bin entry"
			}
			displayPkgs = append(displayPkgs, info)
		}

		fmt.Println(packagesHeaderColor("packages:"))
		for _, pkg := range displayPkgs {
			if pkg.StatusInfo == "unreadable manifest" {
				fmt.Printf("%s %s\n", pkgNameColor(pkg.Name), invalidColor(pkg.StatusInfo))
				continue
			}

			version := pkgVersionColor(pkg.Version)
			if !pkg.VersionOK {
				version = invalidColor("invalid")
			}

			binPart := pkgBinColor(pkg.BinPath)
			if pkg.StatusInfo == "no bin entry" {
				binPart = pkgBinColor(pkg.StatusInfo)
			}

			fmt.Printf("%s %s %s\n", pkgNameColor(pkg.Name), version, binPart)
		}
		return nil
	},
}
