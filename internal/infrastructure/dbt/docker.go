package dbt

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	dockerClient "github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/consts"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/envs"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
)

const (
	containerProjectDir  consts.ConstValue = "/usr/app/dbt"
	containerProfilesDir consts.ConstValue = "/root/.dbt"
)

type DockerRunner struct {
	cfg    Config
	client *dockerClient.Client
}

func NewDockerRunner(cfg Config) (*DockerRunner, error) {
	cli, err := dockerClient.NewClientWithOpts(
		dockerClient.FromEnv,
		dockerClient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	return &DockerRunner{cfg: cfg, client: cli}, nil
}

// containerSpec maps the dbt config onto a one-shot container with the
// project (and profiles, when set) bind-mounted.
func containerSpec(cfg Config, projectDir, profilesDir string) (*container.Config, *container.HostConfig) {
	mounts := []mount.Mount{{
		Type:   mount.TypeBind,
		Source: projectDir,
		Target: containerProjectDir,
	}}
	mountedProfiles := ""
	if profilesDir != "" {
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   profilesDir,
			Target:   containerProfilesDir,
			ReadOnly: true,
		})
		mountedProfiles = containerProfilesDir
	}
	return &container.Config{
			Image:      cfg.Image,
			Entrypoint: []string{"dbt"},
			Cmd:        buildArgs(cfg, containerProjectDir, mountedProfiles),
			WorkingDir: containerProjectDir,
			Env:        envs.ToSlice(cfg.Env),
		}, &container.HostConfig{
			Mounts:      mounts,
			NetworkMode: "host",
		}
}

func (r *DockerRunner) Build(ctx context.Context, sink Sink) (*Summary, error) {
	projectDir, err := absDir(r.cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	profilesDir, err := absDir(r.cfg.ProfilesDir)
	if err != nil {
		return nil, err
	}
	if err := r.pullImage(ctx); err != nil {
		return nil, err
	}

	containerCfg, hostCfg := containerSpec(r.cfg, projectDir, profilesDir)
	resp, err := r.client.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create dbt container: %w", err)
	}
	defer func() {
		_ = r.client.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
	}()

	if err := r.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start dbt container: %w", err)
	}

	summary := NewSummary()
	stdout := newEventWriter(summary, sink)
	stderr := &tailBuffer{limit: stderrTail}
	logs, err := r.client.ContainerLogs(ctx, resp.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to dbt container logs: %w", err)
	}
	defer logs.Close()
	if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil {
		return summary, fmt.Errorf("failed to stream dbt container logs: %w", err)
	}
	stdout.Flush()

	statusCh, errCh := r.client.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return summary, fmt.Errorf("failed to wait for dbt container: %w", err)
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return summary, &ExitError{Code: int(status.StatusCode), Stderr: stderr.String(), Summary: summary}
		}
	}
	return summary, nil
}

func (r *DockerRunner) pullImage(ctx context.Context) error {
	lg := logger.NewFromCtx(ctx)
	reader, err := r.client.ImagePull(ctx, r.cfg.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %q: %w", r.cfg.Image, err)
	}
	defer reader.Close()
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image %q: %w", r.cfg.Image, err)
	}
	lg.Debug("dbt image ready")
	return nil
}
