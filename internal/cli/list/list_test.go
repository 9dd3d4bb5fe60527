package list

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urfave/cli/v2"
)

// setupListTestEnvironment creates a temporary workspace populated with
// installed package trees. Each entry maps a canonical package name to its
// package.json content; an empty content means the tree exists without a
// manifest.
func setupListTestEnvironment(t *testing.T, manifests map[string]string) string {
	t.Helper()
	wsDir := t.TempDir()

	for name, manifest := range manifests {
		treeDir := filepath.Join(wsDir, "node_modules", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(treeDir, 0o755))
		if manifest != "" {
			err := os.WriteFile(filepath.Join(treeDir, "package.json"), []byte(manifest), 0o644)
			require.NoError(t, err, "Failed to write package manifest")
		}
	}
	return wsDir
}

// runListCommand executes the list command against the given workspace and
// captures its stdout.
func runListCommand(t *testing.T, wsDir string, appArgs ...string) (string, error) {
	t.Helper()

	// Keep the host configuration out of the test.
	t.Cleanup(func() { xdg.Reload() })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	originalStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	defer func() {
		os.Stdout = originalStdout
		_ = r.Close()
		_ = w.Close()
	}()

	app := &cli.App{
		Commands: []*cli.Command{
			ListCmd,
		},
		// Prevent os.Exit from being called by urfave/cli during tests
		ExitErrHandler: func(context *cli.Context, err error) {},
	}
	fullArgs := []string{"npmge"}
	fullArgs = append(fullArgs, appArgs...)
	fullArgs = append(fullArgs, "--workspace", wsDir)

	// Disable color output for consistent test results
	t.Setenv("NO_COLOR", "1")

	cmdErr := app.Run(fullArgs)

	err := w.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Note: Error closing pipe writer: %v\n", err)
	}

	var outBuf bytes.Buffer
	_, readErr := outBuf.ReadFrom(r)
	require.NoError(t, readErr, "Failed to read from stdout pipe")

	return outBuf.String(), cmdErr
}

func TestListCommand_EmptyWorkspace(t *testing.T) {
	wsDir := setupListTestEnvironment(t, nil)

	output, err := runListCommand(t, wsDir, "list")

	require.NoError(t, err)
	assert.Contains(t, output, "workspace: "+wsDir)
	assert.Contains(t, output, "No packages installed.")
}

func TestListCommand_WorkspaceNotYetCreated(t *testing.T) {
	wsDir := filepath.Join(t.TempDir(), "never-initialized")

	output, err := runListCommand(t, wsDir, "list")

	require.NoError(t, err, "a missing workspace is an empty inventory, not an error")
	assert.Contains(t, output, "No packages installed.")
}

func TestListCommand_InstalledPackagesVariedStates(t *testing.T) {
	wsDir := setupListTestEnvironment(t, map[string]string{
		"demo-a":      `{"name": "demo-a", "version": "1.2.3", "bin": "./cli.js"}`,
		"@scope/tool": `{"name": "@scope/tool", "version": "2.0.0", "bin": {"tool": "./bin/tool.js"}}`,
		"badver":      `{"name": "badver", "version": "not.a.version", "bin": "./x.js"}`,
		"nobin":       `{"name": "nobin", "version": "3.0.0"}`,
	})

	output, err := runListCommand(t, wsDir, "list")
	require.NoError(t, err)

	// Inventory order is sorted by canonical name.
	expectedOutput := fmt.Sprintf("workspace: %s\n\npackages:\n%s\n%s\n%s\n%s\n",
		wsDir,
		"@scope/tool 2.0.0 ./bin/tool.js",
		"badver invalid ./x.js",
		"demo-a 1.2.3 ./cli.js",
		"nobin 3.0.0 no bin entry",
	)
	assert.Equal(t, strings.TrimSpace(expectedOutput), strings.TrimSpace(output))
}

func TestListCommand_UnreadableManifest(t *testing.T) {
	wsDir := setupListTestEnvironment(t, map[string]string{
		"broken": "",
	})

	output, err := runListCommand(t, wsDir, "list")

	require.NoError(t, err)
	assert.Contains(t, output, "broken unreadable manifest")
}

func TestListCommand_AliasLs(t *testing.T) {
	wsDir := setupListTestEnvironment(t, map[string]string{
		"alias-tool": `{"name": "alias-tool", "version": "1.0.0", "bin": "./run.js"}`,
	})

	output, err := runListCommand(t, wsDir, "ls")

	require.NoError(t, err)
	assert.Contains(t, output, "alias-tool 1.0.0 ./run.js", "Output of 'npmge ls' should match 'npmge list'")
}
