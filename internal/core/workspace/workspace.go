// Package workspace manages the persistent per-user install directory that
// all just-in-time installs share. The workspace is created lazily on first
// use and never deleted; its seed files are written once and left alone so
// operator edits survive later runs.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mrjing/npm-global-exec/internal/core/installlog"
)

const (
	// ManifestName is the workspace manifest file npm reads.
	ManifestName = "package.json"
	// NpmrcName is the registry configuration file npm reads.
	NpmrcName = ".npmrc"
	// ModulesDirName is the directory npm materializes packages into.
	ModulesDirName = "node_modules"
)

// Seed values for a freshly created workspace manifest.
const (
	seedManifestName = "npm-global-exec"
	seedVersion      = "1.0.0"
)

// Manifest models the workspace's own package.json.
type Manifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Private      bool              `json:"private"`
	Dependencies map[string]string `json:"dependencies"`
}

// Workspace is a handle on the install directory. The root is always an
// explicit, resolved path so tests can point it at a temporary directory.
type Workspace struct {
	Root string
}

// New returns a Workspace rooted at root. Nothing is touched on disk until
// Ensure runs.
func New(root string) *Workspace {
	return &Workspace{Root: root}
}

// Ensure creates the workspace directory and its seed files if they are
// absent. Every write is skip-if-exists: an already-present manifest or
// .npmrc is never overwritten, whatever its content. Ensure is safe to call
// on every invocation.
func (w *Workspace) Ensure(registry string) error {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace directory %s: %w", w.Root, err)
	}

	if err := w.seedManifest(); err != nil {
		return err
	}
	return w.seedNpmrc(registry)
}

func (w *Workspace) seedManifest() error {
	path := w.ManifestPath()
	if exists, err := fileExists(path); err != nil || exists {
		return err
	}

	manifest := Manifest{
		Name:         seedManifestName,
		Version:      seedVersion,
		Private:      true,
		Dependencies: map[string]string{},
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workspace manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write workspace manifest %s: %w", path, err)
	}
	return nil
}

func (w *Workspace) seedNpmrc(registry string) error {
	path := w.NpmrcPath()
	if exists, err := fileExists(path); err != nil || exists {
		return err
	}

	content := fmt.Sprintf("registry=%s\n", registry)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write registry configuration %s: %w", path, err)
	}
	return nil
}

// ManifestPath returns the workspace package.json location.
func (w *Workspace) ManifestPath() string {
	return filepath.Join(w.Root, ManifestName)
}

// NpmrcPath returns the registry configuration file location.
func (w *Workspace) NpmrcPath() string {
	return filepath.Join(w.Root, NpmrcName)
}

// ModulesDir returns the node_modules directory location.
func (w *Workspace) ModulesDir() string {
	return filepath.Join(w.Root, ModulesDirName)
}

// LogPath returns the install log location.
func (w *Workspace) LogPath() string {
	return filepath.Join(w.Root, installlog.FileName)
}

// PackageDir returns the installed tree location for a canonical package
// name. Scoped names nest under their @scope directory.
func (w *Workspace) PackageDir(name string) string {
	return filepath.Join(w.ModulesDir(), filepath.FromSlash(name))
}

// RemovePackageTree force-deletes the installed tree for the given canonical
// name. It reports whether a tree was actually removed so callers can log
// the outcome; a missing tree is not an error.
func (w *Workspace) RemovePackageTree(name string) (bool, error) {
	dir := w.PackageDir(name)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect package tree %s: %w", dir, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("failed to remove package tree %s: %w", dir, err)
	}
	return true, nil
}

// InstalledNames returns the sorted canonical names of all packages present
// under node_modules, descending one level into @scope directories. npm's
// bookkeeping entries (.bin, .package-lock.json) are skipped.
func (w *Workspace) InstalledNames() ([]string, error) {
	entries, err := os.ReadDir(w.ModulesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", w.ModulesDir(), err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.HasPrefix(entry.Name(), "@") {
			scoped, err := os.ReadDir(filepath.Join(w.ModulesDir(), entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("failed to read scope directory %s: %w", entry.Name(), err)
			}
			for _, sub := range scoped {
				if sub.IsDir() {
					names = append(names, entry.Name()+"/"+sub.Name())
				}
			}
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func fileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	return true, nil
}
