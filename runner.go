package proaudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// CommandRunner runs a backend query command and returns its stdout
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandAvailability reports whether a binary can be executed.
// Implementations must not cache: installs may change between calls.
type CommandAvailability interface {
	Available(name string) bool
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name with args, capturing stderr into the returned error
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		return nil, fmt.Errorf("%s failed: %w\nstderr: %s", name, err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// PathAvailability looks binaries up in PATH on every call
type PathAvailability struct{}

func (PathAvailability) Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// AvailabilityFunc adapts a plain function to CommandAvailability
type AvailabilityFunc func(name string) bool

func (f AvailabilityFunc) Available(name string) bool {
	return f(name)
}

// exitCode extracts the process exit code from a command error, or -1
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// RequiredCommands lists every binary the probes, scripts and elevation gate may use
func RequiredCommands(opts Options) []string {
	return []string{
		pwMetadataBin, wpctlBin, pactlBin, aplayBin, arecordBin,
		systemctlBin, runuserBin, opts.PkexecPath, opts.ShellPath,
	}
}

// CheckCommands returns the subset of RequiredCommands that is not installed
func CheckCommands(avail CommandAvailability, opts Options) []string {
	var missing []string
	for _, name := range RequiredCommands(opts) {
		if !avail.Available(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
