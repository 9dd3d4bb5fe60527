// Package launcher spawns a resolved bin entry as a child process with the
// operator's terminal streams inherited and reports the child's exit code.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// SpawnError reports that the bin entry could not be started at all; the
// child never ran.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Launcher runs bin entries. NodeBin is the node interpreter used for
// JavaScript entries; empty means "node" from PATH.
type Launcher struct {
	NodeBin string
}

// New returns a Launcher using the given node interpreter.
func New(nodeBin string) *Launcher {
	return &Launcher{NodeBin: nodeBin}
}

// Launch runs the entry at binPath with args appended, stdin/stdout/stderr
// inherited directly from this process. It returns the child's exit code on
// natural termination; termination without a code (a signal) maps to 1.
// A *SpawnError means the child never started.
func (l *Launcher) Launch(ctx context.Context, binPath string, args []string) (int, error) {
	name, argv := l.command(binPath, args)
	slog.Debug("launching bin entry", "bin", binPath, "command", name)

	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code := exitErr.ExitCode()
			if code < 0 {
				return 1, nil
			}
			return code, nil
		}
		return 0, &SpawnError{Path: binPath, Err: err}
	}
	return 0, nil
}

// command decides whether the entry runs directly or through node. npm bin
// entries are JavaScript as a rule, and files fresh out of a package tree
// often lack the executable bit, so node is the default interpreter; only
// an executable non-script file runs as-is.
func (l *Launcher) command(binPath string, args []string) (string, []string) {
	if !runsViaNode(binPath) {
		return binPath, args
	}
	node := l.NodeBin
	if node == "" {
		node = "node"
	}
	return node, append([]string{binPath}, args...)
}

func runsViaNode(binPath string) bool {
	switch strings.ToLower(filepath.Ext(binPath)) {
	case ".js", ".cjs", ".mjs":
		return true
	case ".exe", ".cmd", ".bat":
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	info, err := os.Stat(binPath)
	if err != nil {
		return true
	}
	return info.Mode()&0o111 == 0
}
