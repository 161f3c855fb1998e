package tasks

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"go.uber.org/zap"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/ids"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/runconfig"
)

const (
	ArchiveAssetKey = "dbt_artifacts_archive"

	archiveObjectName  = "artifacts.tar.gz"
	archiveContentType = "application/gzip"
)

// ArtifactFiles are collected from the dbt target directory when present.
var ArtifactFiles = []string{"run_results.json", "manifest.json"}

type ArtifactUploader interface {
	Upload(ctx context.Context, name string, body io.Reader, contentType string) (string, error)
}

// Archive packs the dbt artifacts of the current run and uploads them as
// <run id>/artifacts.tar.gz.
type Archive struct {
	uploader  ArtifactUploader
	targetDir string
}

func NewArchive(uploader ArtifactUploader, targetDir string) *Archive {
	return &Archive{uploader: uploader, targetDir: targetDir}
}

func (a *Archive) Name() string {
	return strcase.ToKebab(ArchiveAssetKey)
}

func (a *Archive) Run(ctx context.Context, cfg runconfig.RunConfig) (*Result, error) {
	return Guard(ctx, a.Name(), cfg, func(ctx context.Context) (*Result, error) {
		lg := logger.NewFromCtx(ctx)
		runId, ok := RunIdFromCtx(ctx)
		if !ok {
			runId = ids.NewRunId()
		}

		body, packed, err := packArtifacts(a.targetDir, ArtifactFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to pack dbt artifacts: %w", err)
		}
		if len(packed) == 0 {
			lg.Warn("no dbt artifacts found", zap.String("target_dir", a.targetDir))
			return &Result{Status: StatusSkipped, Detail: "no dbt artifacts found"}, nil
		}

		key, err := a.uploader.Upload(ctx, path.Join(runId.String(), archiveObjectName), bytes.NewReader(body), archiveContentType)
		if err != nil {
			return nil, &ExternalCallError{Task: a.Name(), Target: "s3", Err: err}
		}
		lg.Info("dbt artifacts archived", zap.String("key", key), zap.Strings("files", packed))
		return &Result{Status: StatusSucceeded, ExternalId: key}, nil
	})
}

// packArtifacts returns a gzipped tarball of the files that exist in dir.
func packArtifacts(dir string, names []string) ([]byte, []string, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	packed := make([]string, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if err := tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}); err != nil {
			return nil, nil, err
		}
		if _, err := tw.Write(content); err != nil {
			return nil, nil, err
		}
		packed = append(packed, name)
	}
	if err := tw.Close(); err != nil {
		return nil, nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), packed, nil
}
