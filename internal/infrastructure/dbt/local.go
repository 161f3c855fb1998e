package dbt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/envs"
)

const stderrTail = 2 << 10

type LocalRunner struct {
	cfg Config
}

func NewLocalRunner(cfg Config) *LocalRunner {
	return &LocalRunner{cfg: cfg}
}

func (r *LocalRunner) Build(ctx context.Context, sink Sink) (*Summary, error) {
	projectDir, err := absDir(r.cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	profilesDir, err := absDir(r.cfg.ProfilesDir)
	if err != nil {
		return nil, err
	}

	summary := NewSummary()
	stdout := newEventWriter(summary, sink)
	stderr := &tailBuffer{limit: stderrTail}

	cmd := exec.CommandContext(ctx, r.cfg.Executable, buildArgs(r.cfg, projectDir, profilesDir)...)
	cmd.Dir = projectDir
	cmd.Env = append(os.Environ(), envs.ToSlice(r.cfg.Env)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err = cmd.Run()
	stdout.Flush()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return summary, &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String(), Summary: summary}
		}
		return summary, fmt.Errorf("failed to run %s: %w", r.cfg.Executable, err)
	}
	return summary, nil
}
