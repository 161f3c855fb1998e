package build

import (
	"os"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/consts"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/defaults"
)

const (
	ServiceNameEnvKey  consts.EnvKey     = "SERVICE_NAME"
	defaultServiceName consts.ConstValue = "accidents-pipeline"
)

// Version is overridden at link time: -ldflags "-X .../build.Version=v1.2.3".
var Version = "dev" //nolint:gochecknoglobals // set by linker

//nolint:gochecknoglobals // process identity
var (
	ServiceName      = defaults.StringOrDefault(os.Getenv(ServiceNameEnvKey), defaultServiceName)
	GlobalInstanceId = strings.ToLower(ulid.Make().String())
)
