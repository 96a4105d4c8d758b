package policy

import (
	"errors"
	"fmt"
)

// Rejection kinds. A *PolicyError unwraps to exactly one of these.
var (
	ErrSudoDetected     = errors.New("sudo detected in command")
	ErrNetworkOperation = errors.New("network operation detected")
	ErrPathEscape       = errors.New("path escapes working directory")
)

// ErrRelativeWorkingDir is returned when validation is asked to confine
// paths to a working directory that is not absolute.
var ErrRelativeWorkingDir = errors.New("working directory must be absolute")

// PolicyError is a rule violation. Subject is the offending command
// (or command context) for command rules, and the original candidate
// path for path rules.
type PolicyError struct {
	Kind    error
	Subject string
}

func (e *PolicyError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Subject)
}

func (e *PolicyError) Unwrap() error { return e.Kind }

func sudoDetected(subject string) *PolicyError {
	return &PolicyError{Kind: ErrSudoDetected, Subject: subject}
}

func networkOperation(command string) *PolicyError {
	return &PolicyError{Kind: ErrNetworkOperation, Subject: command}
}

func pathEscape(path string) *PolicyError {
	return &PolicyError{Kind: ErrPathEscape, Subject: path}
}
