package tasks

import (
	"errors"
	"fmt"
)

var ErrSimulatedFailure = errors.New("simulated failure")

// SimulatedFailureError is returned when the run configuration asks a task
// to fail. No external system has been contacted at that point.
type SimulatedFailureError struct {
	Task string
}

func (e *SimulatedFailureError) Error() string {
	return fmt.Sprintf("%s: simulated failure requested by run configuration", e.Task)
}

func (e *SimulatedFailureError) Unwrap() error {
	return ErrSimulatedFailure
}

// ExternalCallError is a fatal failure talking to an external system.
type ExternalCallError struct {
	Task   string
	Target string
	Err    error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s: %s call failed: %v", e.Task, e.Target, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// SoftAPIError is a rejected API request that the soft error policy may tolerate.
type SoftAPIError struct {
	Target     string
	StatusCode int
	Body       string
}

func (e *SoftAPIError) Error() string {
	return fmt.Sprintf("%s api error: %d - %s", e.Target, e.StatusCode, e.Body)
}
