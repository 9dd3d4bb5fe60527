// Package specifier_test contains tests for the specifier package.
package specifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrjing/npm-global-exec/internal/core/specifier"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		raw         string
		wantName    string
		wantVersion string
		wantErr     bool
	}{
		{
			name:     "bare name",
			raw:      "cowsay",
			wantName: "cowsay",
		},
		{
			name:        "name with exact version",
			raw:         "cowsay@1.6.0",
			wantName:    "cowsay",
			wantVersion: "1.6.0",
		},
		{
			name:        "name with dist-tag",
			raw:         "typescript@latest",
			wantName:    "typescript",
			wantVersion: "latest",
		},
		{
			name:        "name with range",
			raw:         "prettier@^3.0.0",
			wantName:    "prettier",
			wantVersion: "^3.0.0",
		},
		{
			name:        "trailing separator keeps empty version",
			raw:         "cowsay@",
			wantName:    "cowsay",
			wantVersion: "",
		},
		{
			name:     "scoped name without version",
			raw:      "@angular/cli",
			wantName: "@angular/cli",
		},
		{
			name:        "scoped name with version",
			raw:         "@angular/cli@17.3.8",
			wantName:    "@angular/cli",
			wantVersion: "17.3.8",
		},
		{
			name:        "scoped name with dist-tag",
			raw:         "@scope/tool@next",
			wantName:    "@scope/tool",
			wantVersion: "next",
		},
		{
			name:     "bare scope stays whole",
			raw:      "@scope",
			wantName: "@scope",
		},
		{
			name:        "surrounding whitespace trimmed",
			raw:         "  cowsay@1.6.0  ",
			wantName:    "cowsay",
			wantVersion: "1.6.0",
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "whitespace only input",
			raw:     "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := specifier.Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name, "canonical name mismatch")
			assert.Equal(t, tt.wantVersion, got.Version, "version part mismatch")
		})
	}
}

func TestParseKeepsRawForNpm(t *testing.T) {
	t.Parallel()
	got, err := specifier.Parse("  @scope/tool@2.0.0 ")
	require.NoError(t, err)
	assert.Equal(t, "@scope/tool@2.0.0", got.Raw, "raw form should be trimmed but otherwise untouched")
	assert.Equal(t, "@scope/tool@2.0.0", got.String())
}

func TestPinned(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		raw        string
		wantPinned bool
		wantVer    string
	}{
		{name: "exact version is pinned", raw: "cowsay@1.6.0", wantPinned: true, wantVer: "1.6.0"},
		{name: "v-prefixed version is pinned", raw: "cowsay@v2.0.1", wantPinned: true, wantVer: "2.0.1"},
		{name: "dist-tag is not pinned", raw: "cowsay@latest", wantPinned: false},
		{name: "range is not pinned", raw: "cowsay@^1.0.0", wantPinned: false},
		{name: "no version is not pinned", raw: "cowsay", wantPinned: false},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := specifier.Parse(tt.raw)
			require.NoError(t, err)
			v, ok := spec.Pinned()
			assert.Equal(t, tt.wantPinned, ok)
			if tt.wantPinned {
				require.NotNil(t, v)
				assert.Equal(t, tt.wantVer, v.String())
			}
		})
	}
}
