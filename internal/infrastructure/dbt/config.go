package dbt

import "fmt"

type RunnerKind string

const (
	RunnerLocal  RunnerKind = "local"
	RunnerDocker RunnerKind = "docker"
)

type Config struct {
	Runner      RunnerKind        `mapstructure:"runner" default:"local" validate:"oneof=local docker"`
	Executable  string            `mapstructure:"executable" default:"dbt"`
	ProjectDir  string            `mapstructure:"project_dir" default:"." validate:"required"`
	ProfilesDir string            `mapstructure:"profiles_dir"`
	Target      string            `mapstructure:"target"`
	Select      []string          `mapstructure:"select"`
	Exclude     []string          `mapstructure:"exclude" default:"[\"source:*\"]"`
	Image       string            `mapstructure:"image" default:"ghcr.io/dbt-labs/dbt-postgres:1.8.2"`
	Env         map[string]string `mapstructure:"env"`
}

func (c Config) Validate() error {
	if c.Runner == RunnerLocal && c.Executable == "" {
		return fmt.Errorf("dbt executable is required for the local runner")
	}
	if c.Runner == RunnerDocker && c.Image == "" {
		return fmt.Errorf("dbt image is required for the docker runner")
	}
	return nil
}
