package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
	"github.com/valkey-io/valkey-go/valkeyotel"

	"github.com/accidents-lab/pipeline-orchestrator/internal/core/build"
)

func NewValkey(cfg *Config) (valkey.Client, error) {
	client, err := valkeyotel.NewClient(valkey.ClientOption{
		InitAddress:  cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}
	return client, nil
}

// AlertGuard records which alerts were already sent so a re-delivered
// failure does not page twice.
type AlertGuard struct {
	client valkey.Client
	ttl    time.Duration
}

func NewAlertGuard(client valkey.Client, ttl time.Duration) *AlertGuard {
	return &AlertGuard{client: client, ttl: ttl}
}

// Claim returns true for the first caller of key within ttl.
func (g *AlertGuard) Claim(ctx context.Context, key string) (bool, error) {
	err := g.client.Do(ctx, g.client.B().Set().
		Key(key).
		Value(build.GlobalInstanceId).
		Nx().
		PxMilliseconds(g.ttl.Milliseconds()).
		Build(),
	).Error()
	if valkey.IsValkeyNil(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return true, nil
}

// Release drops the claim on key so the next Claim succeeds.
func (g *AlertGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Do(ctx, g.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}
