package proaudio

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSettings wraps the *ValidationError of a rejected apply
	ErrInvalidSettings = errors.New("invalid audio settings")

	// ErrPrivilegeDenied is returned when authorization was refused or the
	// elevation mechanism is unavailable
	ErrPrivilegeDenied = errors.New("privilege elevation denied")

	// ErrTimeout is returned when the authorization prompt or script
	// execution outlived Options.ApplyTimeout
	ErrTimeout = errors.New("apply timed out")
)

// ExecutionFailedError reports an authorized script that exited non-zero,
// or a script that could not run at all (missing command, nothing to run)
type ExecutionFailedError struct {
	Code   int
	Reason string
	Stderr string
}

func (e *ExecutionFailedError) Error() string {
	msg := fmt.Sprintf("execution failed with exit code %d", e.Code)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

// ErrorKind classifies an apply/detect error for front ends and metrics
func ErrorKind(err error) string {
	var execErr *ExecutionFailedError
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidSettings):
		return "invalid_settings"
	case errors.Is(err, ErrPrivilegeDenied):
		return "privilege_denied"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNoBackend):
		return "no_backend"
	case errors.As(err, &execErr):
		return "execution_failed"
	default:
		return "error"
	}
}
