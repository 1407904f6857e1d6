package exitcodes

import (
	"errors"
	"fmt"
)

// Kind classifies a failure per the error handling contract:
// usage errors print usage text, precondition errors are logged without
// usage text, and step failures surface the failing step plus the
// underlying tool's error.
type Kind int

const (
	KindGeneral Kind = iota
	KindUsage
	KindPrecondition
	KindStep
)

// KindedError is an error that carries a failure classification.
// Step failures additionally carry the name of the provisioning step
// that aborted the run.
type KindedError struct {
	Kind    Kind
	Step    string
	Message string
	Cause   error
}

func (e *KindedError) Error() string {
	switch {
	case e.Step != "" && e.Cause != nil:
		return fmt.Sprintf("step %q failed: %v", e.Step, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	default:
		return e.Message
	}
}

func (e *KindedError) Unwrap() error {
	return e.Cause
}

// UsageErr creates a usage error (bad flags, missing required values).
func UsageErr(message string) *KindedError {
	return &KindedError{Kind: KindUsage, Message: message}
}

// UsageErrf creates a usage error with a formatted message.
func UsageErrf(format string, args ...interface{}) *KindedError {
	return &KindedError{Kind: KindUsage, Message: fmt.Sprintf(format, args...)}
}

// PreconditionErr creates a precondition error (not root, missing tool,
// underivable OS codename).
func PreconditionErr(message string) *KindedError {
	return &KindedError{Kind: KindPrecondition, Message: message}
}

// PreconditionErrf creates a precondition error with a formatted message.
func PreconditionErrf(format string, args ...interface{}) *KindedError {
	return &KindedError{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// StepErr wraps a failed provisioning step. The run aborts at the first
// one of these; completed steps are not rolled back.
func StepErr(step string, cause error) *KindedError {
	return &KindedError{Kind: KindStep, Step: step, Cause: cause}
}

// KindOf returns the classification of err, or KindGeneral when err
// carries none.
func KindOf(err error) Kind {
	var ke *KindedError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindGeneral
}

// IsUsage reports whether err is a usage error, meaning the caller
// should print usage text alongside the message.
func IsUsage(err error) bool {
	return KindOf(err) == KindUsage
}
