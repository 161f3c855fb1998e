package runconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  RunConfig
		want Decision
	}{
		{name: "normal", cfg: RunConfig{}, want: DecisionExecute},
		{name: "dry run", cfg: RunConfig{DryRun: true}, want: DecisionSkip},
		{name: "simulate failure", cfg: RunConfig{SimulateFailure: true}, want: DecisionSimulateFailure},
		{name: "simulate failure wins over dry run", cfg: RunConfig{DryRun: true, SimulateFailure: true}, want: DecisionSimulateFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.cfg.Decide())
		})
	}
}

func TestRunConfigWireFormat(t *testing.T) {
	t.Parallel()

	var cfg RunConfig
	require.NoError(t, json.Unmarshal([]byte(`{"dry_run":true,"simulate_failure":false}`), &cfg))
	require.Equal(t, RunConfig{DryRun: true}, cfg)
	require.Equal(t, "skip", cfg.Decide().String())
}
