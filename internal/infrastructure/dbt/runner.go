// Package dbt runs `dbt build` either as a local process or inside a
// container and streams its structured log events.
package dbt

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Sink receives events as dbt emits them.
type Sink func(Event)

// ExitError is a build that ran and exited non-zero.
type ExitError struct {
	Code    int
	Stderr  string
	Summary *Summary
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("dbt build exited with code %d", e.Code)
	if e.Summary != nil && len(e.Summary.Failed) > 0 {
		msg += ": failed nodes " + strings.Join(e.Summary.Failed, ", ")
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// buildArgs renders the dbt command line for a project mounted at projectDir.
func buildArgs(cfg Config, projectDir, profilesDir string) []string {
	args := []string{"build", "--project-dir", projectDir, "--log-format", "json"}
	if profilesDir != "" {
		args = append(args, "--profiles-dir", profilesDir)
	}
	if cfg.Target != "" {
		args = append(args, "--target", cfg.Target)
	}
	if len(cfg.Select) > 0 {
		args = append(append(args, "--select"), cfg.Select...)
	}
	if len(cfg.Exclude) > 0 {
		args = append(append(args, "--exclude"), cfg.Exclude...)
	}
	return args
}

func absDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}

// lineWriter splits a byte stream into lines and hands each one to emit.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// partial line: keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	data  []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = append(t.data, p...)
	if over := len(t.data) - t.limit; over > 0 {
		t.data = t.data[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.data))
}

func newEventWriter(summary *Summary, sink Sink) *lineWriter {
	return &lineWriter{emit: func(line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		ev := ParseEvent(line)
		summary.Add(ev)
		if sink != nil {
			sink(ev)
		}
	}}
}

type Builder interface {
	Build(ctx context.Context, sink Sink) (*Summary, error)
}

func NewRunner(cfg Config) (Builder, error) {
	switch cfg.Runner {
	case RunnerDocker:
		return NewDockerRunner(cfg)
	case RunnerLocal, "":
		return NewLocalRunner(cfg), nil
	default:
		return nil, fmt.Errorf("unknown dbt runner %q", cfg.Runner)
	}
}
