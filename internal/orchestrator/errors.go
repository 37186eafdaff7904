package orchestrator

import (
	"errors"
	"fmt"
)

// ErrMalformedEvent is returned when an event carries neither a mail
// ID nor a question, so its type cannot be resolved
var ErrMalformedEvent = errors.New("event has neither mail id nor question")

// BranchStepFailure reports a pipeline step that failed. The branch
// aborts at the failing step; no partial result is surfaced.
type BranchStepFailure struct {
	Pipeline string
	Step     string
	Err      error
}

func (e *BranchStepFailure) Error() string {
	return fmt.Sprintf("pipeline %s: step %s failed: %v", e.Pipeline, e.Step, e.Err)
}

func (e *BranchStepFailure) Unwrap() error {
	return e.Err
}
