package jobs

import (
	"errors"
	"fmt"
)

const (
	CodeJobFailed        = "JOB_FAILED"
	CodeSolverInfeasible = "SOLVER_INFEASIBLE"
	CodeCancelled        = "CANCELLED"
)

var ErrQueueFull = errors.New("job queue full")

// errTransitionSkipped stops a run whose job was moved by another writer.
var errTransitionSkipped = errors.New("status transition skipped")

// CodedError attaches a machine-readable failure code to a pipeline error.
type CodedError struct {
	Code string
	Err  error
}

func (e *CodedError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

func codeOf(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) && ce.Code != "" {
		return ce.Code
	}
	return CodeJobFailed
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }

func errFromRecover(v any) error {
	return &panicError{Val: v}
}
