// Package runconfig holds the per-run flags every task consults before
// touching an external system.
package runconfig

// RunConfig is supplied with each workflow run and passed by value into every task.
type RunConfig struct {
	// DryRun skips the external call and reports success.
	DryRun bool `json:"dry_run" mapstructure:"dry_run"`
	// SimulateFailure fails the task before any external call. It wins over DryRun.
	SimulateFailure bool `json:"simulate_failure" mapstructure:"simulate_failure"`
}

type Decision int

const (
	DecisionExecute Decision = iota
	DecisionSkip
	DecisionSimulateFailure
)

func (d Decision) String() string {
	switch d {
	case DecisionExecute:
		return "execute"
	case DecisionSkip:
		return "skip"
	case DecisionSimulateFailure:
		return "simulate-failure"
	default:
		return "unknown"
	}
}

// Decide evaluates the flags in precedence order.
func (c RunConfig) Decide() Decision {
	switch {
	case c.SimulateFailure:
		return DecisionSimulateFailure
	case c.DryRun:
		return DecisionSkip
	default:
		return DecisionExecute
	}
}
