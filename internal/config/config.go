package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"sigs.k8s.io/yaml"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/consts"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/envs"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
	"github.com/accidents-lab/pipeline-orchestrator/internal/domain/tasks"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/airbyte"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/dbt"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/mail"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/powerbi"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/s3"
	"github.com/accidents-lab/pipeline-orchestrator/internal/infrastructure/valkey"
)

const (
	// EnvPrefix marks variables that override the file. Nesting uses a
	// double underscore: PIPELINE_AIRBYTE__API_KEY -> airbyte.api_key.
	EnvPrefix     consts.EnvKey = "PIPELINE_"
	FileEnvKey    consts.EnvKey = "PIPELINE_CONFIG_FILE"
	nestSeparator               = "__"
	redacted                    = "***"
)

type PipelineConfig struct {
	WorkflowName    string                `mapstructure:"workflow_name" default:"us-accidents-pipeline" validate:"required"`
	WorkerName      string                `mapstructure:"worker_name" default:"pipeline-worker" validate:"required"`
	SoftErrorPolicy tasks.SoftErrorPolicy `mapstructure:"soft_error_policy" default:"continue-on-soft-error" validate:"oneof=continue-on-soft-error fail-on-soft-error"`
	TaskTimeout     time.Duration         `mapstructure:"task_timeout" default:"10m"`
	BuildTimeout    time.Duration         `mapstructure:"build_timeout" default:"2h"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" default:":9464"`
}

type Config struct {
	Logger   logger.Config  `mapstructure:"logger"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Airbyte  airbyte.Config `mapstructure:"airbyte"`
	Dbt      dbt.Config     `mapstructure:"dbt"`
	PowerBI  powerbi.Config `mapstructure:"powerbi"`
	Mail     mail.Config    `mapstructure:"mail"`
	Valkey   valkey.Config  `mapstructure:"valkey"`
	S3       s3.Config      `mapstructure:"s3"`
}

type sectionValidator interface {
	Validate() error
}

// Load builds the process configuration: defaults, then the YAML file at
// path (if any), then PIPELINE_* environment variables. An empty path
// falls back to PIPELINE_CONFIG_FILE.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(FileEnvKey)
	}
	raw := map[string]any{}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	mergeMaps(raw, envTree(envs.WithPrefix(EnvPrefix)))
	return FromMap(raw)
}

// FromMap decodes an already merged settings tree.
func FromMap(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("failed to set config defaults: %w", err)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		// Provided slices and maps replace their defaults instead of merging.
		ZeroFields: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	var errs []error
	for name, section := range map[string]sectionValidator{
		"dbt":     c.Dbt,
		"powerbi": c.PowerBI,
		"mail":    c.Mail,
		"s3":      c.S3,
	} {
		if err := section.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ValidateIngestion checks the settings a run needs to contact Airbyte.
// Load does not require them so dry runs and test alerts work without.
func (c *Config) ValidateIngestion() error {
	if err := c.Airbyte.Validate(); err != nil {
		return fmt.Errorf("invalid config: airbyte: %w", err)
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}
	c.Airbyte.ApiKey = mask(c.Airbyte.ApiKey)
	c.PowerBI.AccessToken = mask(c.PowerBI.AccessToken)
	c.Mail.Password = mask(c.Mail.Password)
	c.Mail.SendGridApiKey = mask(c.Mail.SendGridApiKey)
	c.Valkey.Password = mask(c.Valkey.Password)
	c.S3.SecretAccessKey = mask(c.S3.SecretAccessKey)
	c.Dbt.Env = nil
	return c
}

// envTree turns {"AIRBYTE__API_KEY": v} into {"airbyte": {"api_key": v}}.
func envTree(flat map[string]string) map[string]any {
	tree := map[string]any{}
	for key, value := range flat {
		path := strings.Split(strings.ToLower(key), nestSeparator)
		node := tree
		for _, part := range path[:len(path)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[path[len(path)-1]] = value
	}
	return tree
}

func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		srcChild, srcIsMap := value.(map[string]any)
		dstChild, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeMaps(dstChild, srcChild)
			continue
		}
		dst[key] = value
	}
}
