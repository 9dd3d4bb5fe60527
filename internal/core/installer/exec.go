package installer

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
)

// runNpmInstall is the production RunFunc. Standard input stays disabled
// (nil Stdin reads from the null device) and stdout/stderr are captured for
// the install log only.
func runNpmInstall(ctx context.Context, bin string, args []string, dir string) (ExitCode, []byte, error) {
	name := bin
	argv := args
	if runtime.GOOS == "windows" {
		// npm ships as npm.cmd on Windows and has to run through the shell.
		// Outcomes are identical to the direct invocation on other platforms.
		shim := bin
		if filepath.Ext(shim) == "" {
			shim += ".cmd"
		}
		name = "cmd"
		argv = append([]string{"/C", shim}, args...)
	}

	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return ExitCode(exitErr.ExitCode()), output, nil
		}
		return 0, output, err
	}
	return 0, output, nil
}
