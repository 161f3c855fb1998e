package hatchet_ext

import (
	"errors"
	"os"

	v0Client "github.com/hatchet-dev/hatchet/pkg/client"
	hatchet "github.com/hatchet-dev/hatchet/sdks/go"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/consts"
	"github.com/accidents-lab/pipeline-orchestrator/internal/core/logger"
)

const TokenEnvKey consts.EnvKey = "HATCHET_CLIENT_TOKEN"

var ErrTokenNotSet = errors.New(TokenEnvKey + " is not set")

// HatchetClient connects with the token from HATCHET_CLIENT_TOKEN and
// routes client logs through the global zap logger.
func HatchetClient() (*hatchet.Client, error) {
	token := os.Getenv(TokenEnvKey)
	if token == "" {
		return nil, ErrTokenNotSet
	}
	return hatchet.NewClient(v0Client.WithLogger(logger.Zerolog()), v0Client.WithToken(token))
}
