package remove

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// setupRemoveTestEnvironment creates a temporary workspace holding the given
// installed package trees, each with a minimal manifest.
func setupRemoveTestEnvironment(t *testing.T, names ...string) (wsDir string) {
	t.Helper()
	wsDir = t.TempDir()

	for _, name := range names {
		treeDir := filepath.Join(wsDir, "node_modules", filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(treeDir, 0o755))
		manifest := `{"name": "` + name + `", "version": "1.0.0"}`
		err := os.WriteFile(filepath.Join(treeDir, "package.json"), []byte(manifest), 0o644)
		require.NoError(t, err, "Failed to write package manifest for %s", name)
	}
	return wsDir
}

func runRemoveCommand(t *testing.T, wsDir string, removeCmdArgs ...string) error {
	t.Helper()

	// Keep the host configuration out of the test.
	t.Cleanup(func() { xdg.Reload() })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	app := &cli.App{
		Name: "npmge-test-remove",
		Commands: []*cli.Command{
			RemoveCommand(),
		},
		Writer:         os.Stderr,
		ErrWriter:      os.Stderr,
		ExitErrHandler: func(context *cli.Context, err error) {},
	}

	cliArgs := []string{"npmge-test-remove", "remove", "--workspace", wsDir}
	cliArgs = append(cliArgs, removeCmdArgs...)

	return app.Run(cliArgs)
}

func TestRemoveCommand_SuccessfulRemoval(t *testing.T) {
	wsDir := setupRemoveTestEnvironment(t, "doomed-tool", "bystander")

	err := runRemoveCommand(t, wsDir, "doomed-tool")
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(wsDir, "node_modules", "doomed-tool"))
	assert.DirExists(t, filepath.Join(wsDir, "node_modules", "bystander"),
		"removal must not touch other installed packages")

	logContent, err := os.ReadFile(filepath.Join(wsDir, "npm-install.log"))
	require.NoError(t, err, "removal should be recorded in the install log")
	assert.Contains(t, string(logContent), "remove doomed-tool")
}

func TestRemoveCommand_ScopedPackageWithVersionSuffix(t *testing.T) {
	wsDir := setupRemoveTestEnvironment(t, "@scope/tool")

	// The version suffix is dropped during canonicalization.
	err := runRemoveCommand(t, wsDir, "@scope/tool@1.2.3")
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(wsDir, "node_modules", "@scope", "tool"))
}

func TestRemove_PackageNotInstalled(t *testing.T) {
	wsDir := setupRemoveTestEnvironment(t, "existing-tool")

	err := runRemoveCommand(t, wsDir, "non-existent-tool")

	assert.Error(t, err)
	assert.Equal(t, "Error: Package 'non-existent-tool' is not installed.", err.Error())
	assert.Equal(t, 1, err.(cli.ExitCoder).ExitCode())

	assert.DirExists(t, filepath.Join(wsDir, "node_modules", "existing-tool"),
		"existing package tree should not be deleted")
}

func TestRemove_MissingArgument(t *testing.T) {
	wsDir := setupRemoveTestEnvironment(t)

	err := runRemoveCommand(t, wsDir)

	assert.Error(t, err)
	assert.Equal(t, "Error: Missing package name argument.", err.Error())
	assert.Equal(t, 1, err.(cli.ExitCoder).ExitCode())
}
