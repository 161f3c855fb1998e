package tasks

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/ids"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
)

type recordingUploader struct {
	name    string
	content []byte
	err     error
	calls   int
}

func (u *recordingUploader) Upload(_ context.Context, name string, body io.Reader, _ string) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.name, u.content = name, content
	return path.Join("dbt-artifacts", name), nil
}

func tarNames(t *testing.T, content []byte) []string {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(content))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return names
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
}

func TestArchiveUploadsArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run_results.json"), []byte(`{"results":[]}`), 0o600))
	uploader := &recordingUploader{}
	runId := ids.NewRunId()

	res, err := NewArchive(uploader, dir).Run(WithRunId(t.Context(), runId), runconfig.RunConfig{})
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, res.Status)
	require.Equal(t, runId.String()+"/artifacts.tar.gz", uploader.name)
	require.Equal(t, "dbt-artifacts/"+uploader.name, res.ExternalId)
	require.Equal(t, []string{"run_results.json"}, tarNames(t, uploader.content))
}

func TestArchiveRunConfigSkipsUpload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{}`), 0o600))

	tests := []struct {
		name string
		cfg  runconfig.RunConfig
	}{
		{name: "dry run", cfg: runconfig.RunConfig{DryRun: true}},
		{name: "simulate failure", cfg: runconfig.RunConfig{SimulateFailure: true}},
		{name: "both", cfg: runconfig.RunConfig{DryRun: true, SimulateFailure: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uploader := &recordingUploader{}
			res, err := NewArchive(uploader, dir).Run(t.Context(), tt.cfg)
			require.Zero(t, uploader.calls)
			if tt.cfg.SimulateFailure {
				require.ErrorIs(t, err, ErrSimulatedFailure)
				return
			}
			require.NoError(t, err)
			require.Equal(t, StatusSkipped, res.Status)
			require.Equal(t, "dry run", res.Detail)
		})
	}
}

func TestArchiveNothingToUpload(t *testing.T) {
	t.Parallel()

	uploader := &recordingUploader{}
	res, err := NewArchive(uploader, t.TempDir()).Run(t.Context(), runconfig.RunConfig{})
	require.NoError(t, err)
	require.Equal(t, StatusSkipped, res.Status)
	require.Empty(t, uploader.name)
}

func TestArchiveUploadError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{}`), 0o600))
	_, err := NewArchive(&recordingUploader{err: errors.New("access denied")}, dir).
		Run(t.Context(), runconfig.RunConfig{})

	var callErr *ExternalCallError
	require.True(t, errors.As(err, &callErr))
	require.Equal(t, "s3", callErr.Target)
}
