package dbt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	startLine   = `{"info":{"name":"MainReportVersion","level":"info","msg":"Running with dbt=1.8.2"},"data":{}}`
	successLine = `{"info":{"name":"NodeFinished","level":"info","msg":"OK created view"},"data":{"node_info":{"unique_id":"model.accidents.stg_accidents","node_status":"success"}}}`
	failLine    = `{"info":{"name":"NodeFinished","level":"error","msg":"FAIL not_null"},"data":{"node_info":{"unique_id":"test.accidents.not_null_id","node_status":"fail"}}}`
)

func TestParseEvent(t *testing.T) {
	t.Parallel()

	ev := ParseEvent(successLine)
	require.Equal(t, Event{
		Name:       "NodeFinished",
		Level:      "info",
		Msg:        "OK created view",
		NodeId:     "model.accidents.stg_accidents",
		NodeStatus: "success",
	}, ev)

	plain := ParseEvent("  Traceback (most recent call last):")
	require.Equal(t, Event{Level: "info", Msg: "Traceback (most recent call last):"}, plain)
}

func TestSummary(t *testing.T) {
	t.Parallel()

	s := NewSummary()
	for _, line := range []string{startLine, successLine, failLine, successLine} {
		s.Add(ParseEvent(line))
	}
	require.Equal(t, map[string]int{"success": 2, "fail": 1}, s.Statuses)
	require.Equal(t, []string{"test.accidents.not_null_id"}, s.Failed)
	require.Equal(t, 3, s.Total())
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	args := buildArgs(Config{
		Target:  "prod",
		Select:  []string{"tag:daily", "stg_accidents"},
		Exclude: []string{"source:*"},
	}, "/srv/dbt", "/srv/profiles")
	require.Equal(t, []string{
		"build", "--project-dir", "/srv/dbt", "--log-format", "json",
		"--profiles-dir", "/srv/profiles",
		"--target", "prod",
		"--select", "tag:daily", "stg_accidents",
		"--exclude", "source:*",
	}, args)
}

func TestContainerSpec(t *testing.T) {
	t.Parallel()

	cfg := Config{Image: "ghcr.io/dbt-labs/dbt-postgres:1.8.2", Env: map[string]string{"DBT_USER": "u"}}
	containerCfg, hostCfg := containerSpec(cfg, "/home/ci/project", "")

	require.Equal(t, cfg.Image, containerCfg.Image)
	require.Equal(t, []string{"DBT_USER=u"}, containerCfg.Env)
	require.Contains(t, []string(containerCfg.Cmd), containerProjectDir)
	require.Len(t, hostCfg.Mounts, 1)
	require.Equal(t, "/home/ci/project", hostCfg.Mounts[0].Source)
}

func TestLineWriterKeepsPartialLines(t *testing.T) {
	t.Parallel()

	var lines []string
	w := &lineWriter{emit: func(s string) { lines = append(lines, s) }}
	_, _ = w.Write([]byte("first\nsec"))
	_, _ = w.Write([]byte("ond\r\nthi"))
	require.Equal(t, []string{"first", "second"}, lines)
	w.Flush()
	require.Equal(t, []string{"first", "second", "thi"}, lines)
}

func writeFakeDbt(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbt")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestLocalRunnerStreamsEvents(t *testing.T) { //nolint:paralleltest // exec of a freshly written file races with fork (ETXTBSY)
	exe := writeFakeDbt(t, "echo '"+startLine+"'\necho '"+successLine+"'\n")
	var events []Event
	summary, err := NewLocalRunner(Config{Executable: exe, ProjectDir: t.TempDir()}).
		Build(t.Context(), func(ev Event) { events = append(events, ev) })

	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "Running with dbt=1.8.2", events[0].Msg)
	require.Equal(t, 1, summary.Statuses["success"])
}

func TestLocalRunnerNonZeroExit(t *testing.T) { //nolint:paralleltest // exec of a freshly written file races with fork (ETXTBSY)
	exe := writeFakeDbt(t, "echo '"+failLine+"'\necho 'compilation failed' >&2\nexit 1\n")
	summary, err := NewLocalRunner(Config{Executable: exe, ProjectDir: t.TempDir()}).Build(t.Context(), nil)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 1, exitErr.Code)
	require.Equal(t, "compilation failed", exitErr.Stderr)
	require.Contains(t, exitErr.Error(), "test.accidents.not_null_id")
	require.Equal(t, []string{"test.accidents.not_null_id"}, summary.Failed)
}

func TestLocalRunnerMissingExecutable(t *testing.T) {
	t.Parallel()

	_, err := NewLocalRunner(Config{Executable: filepath.Join(t.TempDir(), "missing"), ProjectDir: "."}).
		Build(t.Context(), nil)
	require.Error(t, err)

	var exitErr *ExitError
	require.False(t, errors.As(err, &exitErr))
}

func TestNewRunner(t *testing.T) {
	t.Parallel()

	runner, err := NewRunner(Config{Runner: RunnerLocal, Executable: "dbt"})
	require.NoError(t, err)
	require.IsType(t, &LocalRunner{}, runner)

	_, err = NewRunner(Config{Runner: "k8s"})
	require.Error(t, err)
}
