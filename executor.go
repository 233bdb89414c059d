package proaudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/rs/zerolog"
)

// pkexec exits 126 when the dialog was dismissed and 127 when the caller is
// not authorized or no authentication agent could be reached
const (
	pkexecDismissed     = 126
	pkexecNotAuthorized = 127
)

// Authorizer gates privileged execution. It must return ErrPrivilegeDenied
// (possibly wrapped) when authorization is refused or impossible.
type Authorizer interface {
	Authorize(ctx context.Context) error
}

// Executor runs a generated script with elevated privileges, blocking until
// it finishes
type Executor interface {
	Execute(ctx context.Context, script Script) error
}

// PolkitAuthorizer checks that the polkit elevation gate can be invoked.
// The interactive prompt itself happens inside PkexecExecutor.
type PolkitAuthorizer struct {
	PkexecPath   string
	Availability CommandAvailability
}

// NewPolkitAuthorizer creates an authorizer for the configured pkexec binary
func NewPolkitAuthorizer(opts Options) *PolkitAuthorizer {
	opts = opts.withDefaults()
	return &PolkitAuthorizer{PkexecPath: opts.PkexecPath, Availability: opts.Availability}
}

func (a *PolkitAuthorizer) Authorize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ErrTimeout
	}
	if !a.Availability.Available(a.PkexecPath) {
		return fmt.Errorf("%w: %s not installed", ErrPrivilegeDenied, a.PkexecPath)
	}
	return nil
}

// PkexecExecutor runs scripts through `pkexec <shell> -c <script>`
type PkexecExecutor struct {
	PkexecPath string
	ShellPath  string

	logger zerolog.Logger
}

// NewPkexecExecutor creates an executor from Options
func NewPkexecExecutor(opts Options) *PkexecExecutor {
	opts = opts.withDefaults()
	return &PkexecExecutor{
		PkexecPath: opts.PkexecPath,
		ShellPath:  opts.ShellPath,
		logger:     opts.Logger.With().Str("component", "privileged-executor").Logger(),
	}
}

// Execute blocks until the prompt is resolved and the script has exited
func (e *PkexecExecutor) Execute(ctx context.Context, script Script) error {
	if script.Empty() {
		return &ExecutionFailedError{Code: ExitNothingToRun, Reason: "no executable commands for backend " + script.Backend.String()}
	}

	cmd := exec.CommandContext(ctx, e.PkexecPath, e.ShellPath, "-c", script.Render())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrPrivilegeDenied, err)
		}
		return &ExecutionFailedError{Code: -1, Reason: err.Error()}
	}

	monitor := GetMonitor()
	pid := cmd.Process.Pid
	monitor.TrackProcess(pid)
	e.logger.Debug().Int("pid", pid).Str("backend", script.Backend.String()).Msg("waiting for elevated script")

	err := cmd.Wait()
	monitor.UntrackProcess(pid)

	return e.classify(ctx, err, stderr.String())
}

func (e *PkexecExecutor) classify(ctx context.Context, err error, stderr string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	if ctx.Err() != nil {
		return fmt.Errorf("apply cancelled: %w", ctx.Err())
	}
	if err == nil {
		return nil
	}

	switch code := exitCode(err); code {
	case pkexecDismissed, pkexecNotAuthorized:
		return fmt.Errorf("%w: pkexec exit code %d", ErrPrivilegeDenied, code)
	default:
		return &ExecutionFailedError{Code: code, Stderr: stderr}
	}
}
