package runner

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit code 2.
// Examples include a missing interpreter, a failed dispatch, or an
// unwritable output folder. Test failures are not runtime errors; they
// travel through the stats accumulator instead.
type RuntimeError struct {
	Context string
	File    string
	Err     error
}

func (e *RuntimeError) Error() string {
	switch {
	case e.File != "":
		return fmt.Sprintf("runtime error in context %s (%s): %v", e.Context, e.File, e.Err)
	case e.Context != "":
		return fmt.Sprintf("runtime error in context %s: %v", e.Context, e.Err)
	default:
		return fmt.Sprintf("runtime error: %v", e.Err)
	}
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}
