package exitcodes

import (
	"fmt"
	"os"
)

// Exit codes for install-nginx. The tool deliberately keeps a single
// failure code: usage errors, precondition errors, and step failures
// all terminate with 1 and are distinguished by their error Kind
// (which controls whether usage text is printed) rather than by code.
const (
	// Success indicates successful command completion
	Success = 0

	// Failure indicates any error: bad arguments, unmet preconditions,
	// or a provisioning step that returned non-zero
	Failure = 1
)

// Exit terminates the program with the given code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError prints error message to stderr and exits with the given code
func ExitWithError(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}

// CodeForError returns the exit code for an error: 0 for nil,
// 1 for everything else.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}
	return Failure
}
