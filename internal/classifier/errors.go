package classifier

import (
	"errors"
	"fmt"
)

// InvariantViolationError indicates a contract breach between pipeline
// stages. It is a bug in an upstream stage, not bad input data, so it aborts
// the pipeline run instead of degrading into an EraseResult.
type InvariantViolationError struct {
	Stage  string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Stage, e.Detail)
}

// IsInvariantViolation reports whether err is a stage-contract breach.
func IsInvariantViolation(err error) bool {
	var iv *InvariantViolationError
	return errors.As(err, &iv)
}

func invariantf(stage, format string, args ...interface{}) error {
	return &InvariantViolationError{Stage: stage, Detail: fmt.Sprintf(format, args...)}
}

// Rejection sentinels returned by the SplitDetector. The pipeline maps both
// to EraseResult{Reason: swapper_no_delta}.
var (
	ErrNoTradableAssets = errors.New("no tradable assets after intermediate collapse")
	ErrOneSidedFlow     = errors.New("tradable assets do not include both an outflow and an inflow")
)
