package main

import "fmt"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1 // some rules failed, or drift was found by check
	exitFatal   = 2 // nothing was touched: bad version, bad rules, bad config
)

// ExitError carries an exit code out of a RunE handler. Err may be nil when
// the command already reported the problem.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func fatal(err error) error {
	return &ExitError{Code: exitFatal, Err: err}
}
