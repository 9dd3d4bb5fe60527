// Package installer runs npm install as a subprocess against the workspace
// and applies the bounded retry policy for the one recognized transient
// failure. npm's output is never shown live; it goes to the install log.
package installer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mrjing/npm-global-exec/internal/core/config"
	"github.com/Mrjing/npm-global-exec/internal/core/installlog"
	"github.com/Mrjing/npm-global-exec/internal/core/specifier"
	"github.com/Mrjing/npm-global-exec/internal/core/workspace"
)

// TransientExitCode is the npm exit code signaling "target directory not
// empty", the only failure class the retry policy recovers from.
const TransientExitCode = 190

// ExitCode is an npm subprocess exit code.
type ExitCode int

// IsTransient reports whether the code identifies the retryable
// non-empty-directory condition.
func (c ExitCode) IsTransient() bool {
	return c == TransientExitCode
}

// SpawnError reports that the npm executable could not be started at all.
// It is never retried and points the operator at their environment rather
// than at the package.
type SpawnError struct {
	Bin string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run %s (is npm installed and on PATH?): %v", e.Bin, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// InstallError is the final failure after classification and any retries.
type InstallError struct {
	Spec     string
	Code     ExitCode
	Attempts int
	LogPath  string
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("npm install %s failed with exit code %d after %d attempt(s); see %s",
		e.Spec, e.Code, e.Attempts, e.LogPath)
}

// RunFunc executes one npm install subprocess in dir and returns its exit
// code and combined output. A non-nil error means the process could not be
// spawned; a non-zero exit is not an error at this layer.
type RunFunc func(ctx context.Context, bin string, args []string, dir string) (ExitCode, []byte, error)

// Installer drives npm install invocations for one workspace.
type Installer struct {
	ws         *workspace.Workspace
	log        *installlog.Log
	npmBin     string
	maxRetries int
	backoff    time.Duration
	run        RunFunc
	sleep      func(time.Duration)
}

// New returns an Installer using the retry policy and npm binary from cfg.
func New(ws *workspace.Workspace, log *installlog.Log, cfg config.Config) *Installer {
	return &Installer{
		ws:         ws,
		log:        log,
		npmBin:     cfg.NPMBin,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff.Duration,
		run:        runNpmInstall,
		sleep:      time.Sleep,
	}
}

// SetRunFuncForTesting substitutes the subprocess runner. It is intended to
// be called only from test packages.
func (i *Installer) SetRunFuncForTesting(run RunFunc) {
	i.run = run
}

// SetSleepForTesting substitutes the backoff sleep. It is intended to be
// called only from test packages.
func (i *Installer) SetSleepForTesting(sleep func(time.Duration)) {
	i.sleep = sleep
}

// Install runs npm install for the specifier, retrying the transient
// non-empty-directory failure up to the configured retry count with linear
// backoff. Between retries the package tree is force-deleted best-effort;
// cleanup failures are logged, never propagated. Spawn failures are
// returned immediately without retrying.
func (i *Installer) Install(ctx context.Context, spec specifier.Specifier) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			_ = i.log.Event("install %s aborted: %v", spec.Raw, err)
			return err
		}

		if attempt == 0 {
			_ = i.log.Event("install %s", spec.Raw)
		} else {
			_ = i.log.Event("install %s (retry %d)", spec.Raw, attempt)
		}
		slog.Debug("running npm install", "spec", spec.Raw, "attempt", attempt+1, "dir", i.ws.Root)

		code, output, err := i.run(ctx, i.npmBin, []string{"install", spec.Raw}, i.ws.Root)
		_ = i.log.Output("npm", output)

		if err != nil {
			_ = i.log.Event("could not start %s: %v", i.npmBin, err)
			return &SpawnError{Bin: i.npmBin, Err: err}
		}
		if code == 0 {
			_ = i.log.Event("install %s succeeded", spec.Raw)
			slog.Debug("npm install succeeded", "spec", spec.Raw, "attempts", attempt+1)
			return nil
		}

		_ = i.log.Event("install %s exited with code %d", spec.Raw, code)
		if !code.IsTransient() || attempt >= i.maxRetries {
			_ = i.log.Event("install %s failed after %d attempt(s)", spec.Raw, attempt+1)
			return &InstallError{
				Spec:     spec.Raw,
				Code:     code,
				Attempts: attempt + 1,
				LogPath:  i.log.Path(),
			}
		}

		i.cleanupTree(spec.Name)
		delay := i.backoff * time.Duration(attempt+1)
		_ = i.log.Event("transient failure, retrying %s in %s", spec.Raw, delay)
		i.sleep(delay)
	}
}

// cleanupTree force-deletes the package tree before a retry. Failures here
// must not block the retry, so they are only logged.
func (i *Installer) cleanupTree(name string) {
	removed, err := i.ws.RemovePackageTree(name)
	switch {
	case err != nil:
		_ = i.log.Event("cleanup of %s failed: %v", name, err)
	case removed:
		_ = i.log.Event("removed package tree for %s", name)
	default:
		_ = i.log.Event("no package tree to remove for %s", name)
	}
}
