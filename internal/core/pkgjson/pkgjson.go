// Package pkgjson loads installed package manifests and resolves their
// executable bin entries.
package pkgjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// FileName is the manifest file name inside an installed package tree.
const FileName = "package.json"

// Resolution-stage errors, matched by callers with errors.Is.
var (
	ErrPackageNotFound = errors.New("package manifest not found")
	ErrNoBinEntry      = errors.New("package declares no bin entry")
	ErrBinFileNotFound = errors.New("bin file not found")
)

// BinEntry is one command-name to relative-path pair from a bin mapping.
type BinEntry struct {
	Command string
	Path    string
}

// BinField models the manifest "bin" field, which is either a single path
// string or an object mapping command names to paths. Object entries keep
// the order they appear in the manifest; the fallback resolution rule
// depends on that order.
type BinField struct {
	Path    string     // set when the field is a plain string
	Entries []BinEntry // set when the field is an object
}

// UnmarshalJSON accepts both forms of the bin field. The object form is
// decoded token by token because encoding/json maps do not preserve key
// order.
func (b *BinField) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case nil:
		return nil
	case string:
		b.Path = v
		return nil
	case json.Delim:
		if v != '{' {
			return fmt.Errorf("bin field must be a string or an object, got %v", v)
		}
	default:
		return fmt.Errorf("bin field must be a string or an object, got %T", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("bin object key %v is not a string", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		val, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("bin entry %q is not a string", key)
		}
		b.Entries = append(b.Entries, BinEntry{Command: key, Path: val})
	}
	// Consume the closing brace.
	_, err = dec.Token()
	return err
}

// Manifest is the subset of an installed package.json this tool reads.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Bin         BinField `json:"bin"`
}

// Load reads and parses the manifest from an installed package tree.
// A missing manifest wraps ErrPackageNotFound; malformed JSON is reported
// as a parse failure.
func Load(treeDir string) (*Manifest, error) {
	path := filepath.Join(treeDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: expected manifest at %s", ErrPackageNotFound, path)
		}
		return nil, fmt.Errorf("failed to read package manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse package manifest %s: %w", path, err)
	}
	return &manifest, nil
}

// BinPath resolves the manifest-relative path of the package's executable
// entry. For the object form it prefers the entry keyed by the canonical
// package name, then (for scoped packages) the bare name after the slash,
// then the first entry in manifest order. Wraps ErrNoBinEntry when the
// field is absent or empty.
func (m *Manifest) BinPath(canonicalName string) (string, error) {
	if m.Bin.Path != "" {
		return m.Bin.Path, nil
	}
	if len(m.Bin.Entries) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoBinEntry, canonicalName)
	}

	for _, entry := range m.Bin.Entries {
		if entry.Command == canonicalName {
			return entry.Path, nil
		}
	}
	if idx := strings.LastIndex(canonicalName, "/"); idx != -1 {
		bare := canonicalName[idx+1:]
		for _, entry := range m.Bin.Entries {
			if entry.Command == bare {
				return entry.Path, nil
			}
		}
	}
	return m.Bin.Entries[0].Path, nil
}

// SemVer returns the manifest version as a parsed semantic version, or
// false when the version is absent or not semver.
func (m *Manifest) SemVer() (*semver.Version, bool) {
	if m.Version == "" {
		return nil, false
	}
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return nil, false
	}
	return v, true
}

// ResolveBin loads the manifest under treeDir and returns the absolute path
// of the package's executable entry, verifying the file exists. Wraps
// ErrBinFileNotFound when the declared entry points at nothing.
func ResolveBin(treeDir, canonicalName string) (string, error) {
	manifest, err := Load(treeDir)
	if err != nil {
		return "", err
	}

	rel, err := manifest.BinPath(canonicalName)
	if err != nil {
		return "", err
	}

	path := filepath.Join(treeDir, filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: manifest for %s declares %s", ErrBinFileNotFound, canonicalName, path)
		}
		return "", fmt.Errorf("failed to inspect bin file %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve bin path %s: %w", path, err)
	}
	return abs, nil
}
