// Package installlog maintains the append-only diagnostic log that records
// every install attempt, subprocess output chunk and retry outcome. npm's
// output is never shown live to the operator, so this file is the only
// postmortem trail.
package installlog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// FileName is the log file's name inside the workspace directory.
const FileName = "npm-install.log"

const timeLayout = "2006-01-02 15:04:05"

// Log is an append-only, line-timestamped log file. It is safe for use from
// a single invocation's pipeline; the mutex only guards interleaving between
// event and output writes.
type Log struct {
	path string

	mu   sync.Mutex
	file *os.File
}

// Open opens (or creates) the log file at path in append mode.
func Open(path string) (*Log, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open install log %s: %w", path, err)
	}
	return &Log{path: path, file: file}, nil
}

// Path returns the location of the log file, for operator diagnostics.
func (l *Log) Path() string {
	return l.path
}

// Event appends a single timestamped line describing a pipeline event.
func (l *Log) Event(format string, args ...any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeLine(fmt.Sprintf(format, args...))
}

// Output appends a subprocess output chunk, splitting it into lines so that
// every line carries its own timestamp and stream label.
func (l *Log) Output(label string, chunk []byte) error {
	text := strings.TrimRight(string(chunk), "\n")
	if text == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		if err := l.writeLine(fmt.Sprintf("%s: %s", label, line)); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file. The Log must not be used afterwards.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

func (l *Log) writeLine(text string) error {
	stamp := time.Now().Format(timeLayout)
	if _, err := fmt.Fprintf(l.file, "[%s] %s\n", stamp, text); err != nil {
		return fmt.Errorf("failed to write install log %s: %w", l.path, err)
	}
	return nil
}
