package ocptv

import "fmt"

// RunError ends a Run.Scope early with the given status and result.
//
// It is a control-flow signal, not a failure: return it (or an error
// wrapping it) from the scope function and the scope ends the run with these
// values and returns nil.
type RunError struct {
	Status TestStatus
	Result TestResult
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run ended with status=%s result=%s", e.Status, e.Result)
}

// StepError ends a Step.Scope early with the given status. Like RunError it
// is consumed by the scope.
type StepError struct {
	Status TestStatus
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step ended with status=%s", e.Status)
}
