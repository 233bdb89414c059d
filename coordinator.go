package proaudio

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OutcomeStatus is the result of a successful (zero-exit) apply
type OutcomeStatus int

const (
	// OutcomeNone is the status of a failed apply
	OutcomeNone OutcomeStatus = iota
	// OutcomeVerified means re-detection matched every requested field
	OutcomeVerified
	// OutcomeAppliedUnverified means the script succeeded but re-detection
	// failed or reported different values
	OutcomeAppliedUnverified
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeNone:
		return "none"
	case OutcomeVerified:
		return "verified"
	case OutcomeAppliedUnverified:
		return "applied_unverified"
	default:
		return "unknown"
	}
}

// Outcome reports what happened after the script exited zero
type Outcome struct {
	Status OutcomeStatus

	// Detected is the settings read back during verification, nil when
	// detection failed
	Detected *Detection

	// AttemptID correlates the apply with its log lines
	AttemptID string
}

// Coordinator validates, generates, executes and verifies settings applies
type Coordinator struct {
	opts       Options
	detector   SettingsDetector
	authorizer Authorizer
	executor   Executor
	gate       *applyGate
	logger     zerolog.Logger
}

// NewCoordinator wires the production detector, polkit authorizer and pkexec executor
func NewCoordinator(opts Options) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		opts:       opts,
		detector:   NewDetector(opts),
		authorizer: NewPolkitAuthorizer(opts),
		executor:   NewPkexecExecutor(opts),
		gate:       newApplyGate(),
		logger:     opts.Logger.With().Str("component", "apply-coordinator").Logger(),
	}
}

// WithDetector replaces the settings detector
func (c *Coordinator) WithDetector(d SettingsDetector) *Coordinator {
	c.detector = d
	return c
}

// WithAuthorizer replaces the elevation gate check
func (c *Coordinator) WithAuthorizer(a Authorizer) *Coordinator {
	c.authorizer = a
	return c
}

// WithExecutor replaces the privileged executor
func (c *Coordinator) WithExecutor(e Executor) *Coordinator {
	c.executor = e
	return c
}

// currentUser is a variable for testing
var currentUser = func() (string, int, error) {
	u, err := user.Current()
	if err != nil {
		return "", 0, err
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return "", 0, err
	}
	return u.Username, uid, nil
}

// Apply validates target, applies it to the active backend behind the
// elevation gate and verifies the result. It blocks the caller until the
// authorization prompt is resolved and the script has exited, bounded by
// Options.ApplyTimeout. Concurrent calls are serialized.
func (c *Coordinator) Apply(ctx context.Context, target Settings) (Outcome, error) {
	start := timeNow()
	attemptID := uuid.NewString()
	logger := c.logger.With().Str("attempt_id", attemptID).Logger()

	outcome, err := c.apply(ctx, target, attemptID, logger)
	outcome.AttemptID = attemptID

	result := outcome.Status.String()
	if err != nil {
		result = ErrorKind(err)
		logger.Error().Err(err).Str("result", result).Stringer("target", target).Msg("apply failed")
	} else {
		logger.Info().Str("result", result).Stringer("target", target).Msg("apply finished")
	}
	GetMonitor().RecordApply(result, err, timeNow().Sub(start))

	return outcome, err
}

func (c *Coordinator) apply(ctx context.Context, target Settings, attemptID string, logger zerolog.Logger) (Outcome, error) {
	if err := target.Validate(); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	actx := ctx
	if c.opts.ApplyTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.opts.ApplyTimeout)
		defer cancel()
	}

	if holder, _ := c.gate.state(); holder != "" {
		logger.Info().Str("holder", holder).Msg("waiting for running apply")
	}
	if err := c.gate.enter(actx, attemptID); err != nil {
		return Outcome{}, gateError(err)
	}
	defer c.gate.leave()

	script, err := c.prepare(actx, target, logger)
	if err != nil {
		return Outcome{}, err
	}

	if err := c.authorizer.Authorize(actx); err != nil {
		return Outcome{}, authorizationError(actx, err)
	}

	logger.Info().Str("backend", script.Backend.String()).Int("steps", len(script.Steps)).Msg("executing elevated script")
	if err := c.executor.Execute(actx, script); err != nil {
		return Outcome{}, executionError(actx, err)
	}

	return c.verify(ctx, target, logger), nil
}

// prepare detects the active backend and builds a runnable script for it
func (c *Coordinator) prepare(ctx context.Context, target Settings, logger zerolog.Logger) (Script, error) {
	kind := BackendNone
	var current string

	det, err := c.detector.DetectCurrent(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("no active backend before apply")
	} else {
		kind = det.Backend
		current = det.Settings.DeviceID
	}

	opts := ScriptOptions{Paths: c.opts.Paths, CurrentDeviceID: current}
	if name, uid, err := currentUser(); err == nil && uid != 0 {
		opts.User, opts.UID = name, uid
	}

	script := GenerateScript(kind, target, opts)
	if script.Empty() {
		return Script{}, &ExecutionFailedError{Code: ExitNothingToRun, Reason: "no executable commands for backend " + kind.String()}
	}

	var missing []string
	for _, bin := range script.Binaries() {
		if !c.opts.Availability.Available(bin) {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		return Script{}, &ExecutionFailedError{Code: 127, Reason: "missing commands: " + strings.Join(missing, ", ")}
	}

	return script, nil
}

// verify re-detects until the target is observed or attempts run out.
// The last attempt decides the reported detection.
func (c *Coordinator) verify(ctx context.Context, target Settings, logger zerolog.Logger) Outcome {
	var last *Detection

	for attempt := 0; attempt < c.opts.Verify.MaxAttempts; attempt++ {
		if err := sleepFunc(ctx, c.opts.Verify.Backoff(attempt)); err != nil {
			break
		}

		det, err := c.detector.DetectCurrent(ctx)
		if err != nil {
			logger.Debug().Err(err).Int("attempt", attempt).Msg("verification detect failed")
			last = nil
			continue
		}
		if Matches(target, det) {
			return Outcome{Status: OutcomeVerified, Detected: &det}
		}

		logger.Debug().Int("attempt", attempt).Stringer("detected", det.Settings).Msg("settings not yet applied")
		last = &det
	}

	return Outcome{Status: OutcomeAppliedUnverified, Detected: last}
}

// Matches reports whether a detection confirms every requested field.
// Fields the backend fell back to a default for do not confirm anything,
// except the Pulse buffer size, which Pulse never reports and is skipped.
// The device is only compared when the request names a specific device.
func Matches(want Settings, got Detection) bool {
	d := got.Defaulted

	if d.SampleRate || want.SampleRate != got.Settings.SampleRate {
		return false
	}
	if d.BitDepth || want.BitDepth != got.Settings.BitDepth {
		return false
	}
	if got.Backend != BackendPulse && (d.BufferSize || want.BufferSize != got.Settings.BufferSize) {
		return false
	}

	dev, err := ParseDeviceID(want.DeviceID)
	if err == nil && dev.IsDefault() {
		return true
	}
	return !d.DeviceID && sameDevice(want.DeviceID, got.Settings.DeviceID)
}

// sameDevice compares device ids, treating ALSA "hw:C" and "hw:C,0" as equal
func sameDevice(a, b string) bool {
	if a == b {
		return true
	}

	da, errA := ParseDeviceID(a)
	db, errB := ParseDeviceID(b)
	if errA != nil || errB != nil || da.Backend != BackendALSA || db.Backend != BackendALSA {
		return false
	}

	ca, va, okA := alsaCardDevice(da.Identifier)
	cb, vb, okB := alsaCardDevice(db.Identifier)
	return okA && okB && ca == cb && va == vb
}

// gateError maps a context that ended while queued for the gate to
// ErrTimeout, keeping the cause
func gateError(err error) error {
	return fmt.Errorf("%w: waiting for running apply: %w", ErrTimeout, err)
}

// authorizationError keeps every authorization failure inside the ErrPrivilegeDenied/ErrTimeout taxonomy
func authorizationError(ctx context.Context, err error) error {
	if errors.Is(err, ErrTimeout) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, ErrPrivilegeDenied) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPrivilegeDenied, err)
}

// executionError keeps every executor failure inside the apply taxonomy
func executionError(ctx context.Context, err error) error {
	var execErr *ExecutionFailedError
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, ErrPrivilegeDenied), errors.As(err, &execErr):
		return err
	default:
		return &ExecutionFailedError{Code: -1, Reason: err.Error()}
	}
}
