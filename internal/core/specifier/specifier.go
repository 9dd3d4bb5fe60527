// Package specifier parses npm package specifiers into their canonical
// name and requested version parts.
package specifier

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Specifier holds the parts of an npm package specifier as given on the
// command line, e.g. "cowsay", "cowsay@1.6.0" or "@scope/tool@2.0.0".
type Specifier struct {
	Raw     string // the trimmed input, passed verbatim to npm install
	Name    string // canonical package name, scope prefix intact
	Version string // requested version, range or dist-tag; empty when absent
}

// Parse splits a raw specifier into canonical name and version.
//
// Scoped specifiers start with "@", so their version separator is the last
// "@" in the string; a scoped specifier without a second "@" carries no
// version. For unscoped specifiers everything after the first "@" is the
// version, which may be empty ("cowsay@").
func Parse(raw string) (Specifier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Specifier{}, fmt.Errorf("package specifier is empty")
	}

	spec := Specifier{Raw: trimmed}
	if strings.HasPrefix(trimmed, "@") {
		lastAt := strings.LastIndex(trimmed, "@")
		if lastAt > 0 {
			spec.Name = trimmed[:lastAt]
			spec.Version = trimmed[lastAt+1:]
		} else {
			spec.Name = trimmed
		}
		return spec, nil
	}

	name, version, _ := strings.Cut(trimmed, "@")
	spec.Name = name
	spec.Version = version
	return spec, nil
}

// String returns the specifier as given.
func (s Specifier) String() string {
	return s.Raw
}

// Pinned reports whether the requested version is an exact semantic version
// rather than a range, a dist-tag like "latest", or nothing at all.
func (s Specifier) Pinned() (*semver.Version, bool) {
	if s.Version == "" {
		return nil, false
	}
	v, err := semver.NewVersion(s.Version)
	if err != nil {
		return nil, false
	}
	return v, true
}
