package sampler

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is returned by RunIteration before Setup has succeeded.
	ErrNotReady = errors.New("sampler: setup has not completed")

	// ErrTornDown is returned by Setup and RunIteration after Teardown.
	ErrTornDown = errors.New("sampler: torn down")

	// ErrAlreadySetUp is returned by a second Setup.
	ErrAlreadySetUp = errors.New("sampler: already set up")
)

// FatalCode categorizes errors that stop a controller.
type FatalCode string

const (
	// CodeBuildFailed indicates the scenario could not build an invocation.
	CodeBuildFailed FatalCode = "BUILD_FAILED"

	// CodeTransport indicates the RPC channel is unusable.
	CodeTransport FatalCode = "TRANSPORT"

	// CodeCancelled indicates the caller's context ended.
	CodeCancelled FatalCode = "CANCELLED"
)

// FatalError stops a controller. It is returned by the iteration that hit
// it and by every later one.
type FatalError struct {
	Code      FatalCode
	Scenario  string
	Iteration int64
	Err       error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s iteration %d: %v", e.Code, e.Scenario, e.Iteration, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err wraps a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
