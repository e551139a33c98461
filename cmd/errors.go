package cmd

import (
	"errors"
	"fmt"
	"io"
)

// Process exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitInput   = 2
	exitLoad    = 3
	exitStats   = 4
	exitWrite   = 5
)

// InputError is a command-line validation failure, reported to the user as
// "Input Error: <message>".
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func inputErrorf(format string, a ...any) error {
	return &InputError{Message: fmt.Sprintf(format, a...)}
}

// stageError tags a failure with the pipeline stage it came from and the
// exit code it maps to.
type stageError struct {
	stage string
	code  int
	err   error
}

func (e *stageError) Error() string { return fmt.Sprintf("%s: %v", e.stage, e.err) }

func (e *stageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ie *InputError
	if errors.As(err, &ie) {
		return exitInput
	}
	var se *stageError
	if errors.As(err, &se) {
		return se.code
	}
	return exitFailure
}

// printError writes input errors to stdout and everything else to stderr.
func printError(stdout, stderr io.Writer, err error) {
	var ie *InputError
	if errors.As(err, &ie) {
		fmt.Fprintf(stdout, "Input Error: %s\n", ie.Message)
		return
	}
	fmt.Fprintln(stderr, "✗ Error:", err)
}
