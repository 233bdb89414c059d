package proaudio

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// ErrNoBackend is returned when no audio backend answered its status query
var ErrNoBackend = errors.New("no audio backend found")

var errEmptyOutput = errors.New("empty output")

// ProbeResult is the raw output of the first backend that answered
type ProbeResult struct {
	Backend Backend
	Raw     string
}

// Kind returns the backend tag of the result
func (p ProbeResult) Kind() BackendKind {
	if p.Backend == nil {
		return BackendNone
	}
	return p.Backend.Kind()
}

// Prober tries each backend in ProbeOrder and keeps the first that answers
type Prober struct {
	opts   Options
	logger zerolog.Logger
}

// NewProber creates a Prober; zero-valued capabilities fall back to defaults
func NewProber(opts Options) *Prober {
	opts = opts.withDefaults()
	return &Prober{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "backend-probe").Logger(),
	}
}

// Probe returns the first responding backend. A missing binary, failing
// command, timeout or empty output moves on to the next backend; only
// exhaustion of all candidates is reported, as ErrNoBackend.
func (p *Prober) Probe(ctx context.Context) (ProbeResult, error) {
	for _, kind := range ProbeOrder {
		if err := ctx.Err(); err != nil {
			return ProbeResult{}, err
		}

		backend := backendFor(kind, p.opts.Paths)
		raw, err := p.probeOne(ctx, backend)
		if err != nil {
			p.logger.Debug().Err(err).Str("backend", kind.String()).Msg("backend did not respond")
			recordProbe(kind, false)
			continue
		}

		recordProbe(kind, true)
		p.logger.Debug().Str("backend", kind.String()).Msg("backend responded")
		return ProbeResult{Backend: backend, Raw: raw}, nil
	}

	return ProbeResult{}, ErrNoBackend
}

func (p *Prober) probeOne(ctx context.Context, backend Backend) (string, error) {
	// checked per call, never cached
	if !p.opts.Availability.Available(backend.StatusBinary()) {
		return "", errors.New(backend.StatusBinary() + " not installed")
	}

	pctx, cancel := context.WithTimeout(ctx, p.opts.ProbeTimeout)
	defer cancel()

	raw, err := backend.Probe(pctx, p.opts.Runner)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", errEmptyOutput
	}
	return raw, nil
}
