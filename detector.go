package proaudio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Defaulted flags the Settings fields that were guessed rather than detected
type Defaulted struct {
	SampleRate bool
	BitDepth   bool
	BufferSize bool
	DeviceID   bool
}

// Any reports whether at least one field fell back to its default
func (d Defaulted) Any() bool {
	return d.SampleRate || d.BitDepth || d.BufferSize || d.DeviceID
}

// Detection is the result of reading the active backend's settings.
// Settings are not validated.
type Detection struct {
	Settings  Settings
	Backend   BackendKind
	Defaulted Defaulted
}

// SettingsDetector is the detection capability the Coordinator depends on
type SettingsDetector interface {
	DetectCurrent(ctx context.Context) (Detection, error)
}

// Detector turns probe output into settings, descriptions and device lists
type Detector struct {
	prober *Prober
	opts   Options
	logger zerolog.Logger
}

// NewDetector creates a Detector with its own Prober
func NewDetector(opts Options) *Detector {
	opts = opts.withDefaults()
	return &Detector{
		prober: NewProber(opts),
		opts:   opts,
		logger: opts.Logger.With().Str("component", "settings-detector").Logger(),
	}
}

// DetectCurrent reads the active backend's settings. Fields that cannot be
// parsed fall back to 44100 Hz / 16 bit / 256 frames / "default" and are
// flagged in Detection.Defaulted.
func (d *Detector) DetectCurrent(ctx context.Context) (Detection, error) {
	res, err := d.prober.Probe(ctx)
	if err != nil {
		return Detection{}, err
	}

	det := res.Backend.ParseSettings(res.Raw)
	d.logger.Debug().
		Str("backend", det.Backend.String()).
		Stringer("settings", det.Settings).
		Bool("defaulted", det.Defaulted.Any()).
		Msg("detected settings")

	return det, nil
}

// DetectDeviceDescription returns the cleaned description of the active device.
// A description that cleans down to nothing is reported as ErrNoBackend.
func (d *Detector) DetectDeviceDescription(ctx context.Context) (string, error) {
	res, err := d.prober.Probe(ctx)
	if err != nil {
		return "", err
	}

	desc := CleanDescription(res.Backend.Describe(res.Raw))
	if desc == "" {
		return "", ErrNoBackend
	}
	return desc, nil
}

// DetectAllDevices lists the playback and capture devices of the active backend
func (d *Detector) DetectAllDevices(ctx context.Context) ([]DeviceDescriptor, error) {
	res, err := d.prober.Probe(ctx)
	if err != nil {
		return nil, err
	}

	lctx, cancel := context.WithTimeout(ctx, d.opts.ProbeTimeout)
	defer cancel()

	devices, err := res.Backend.ListDevices(lctx, d.opts.Runner)
	if err != nil {
		return nil, fmt.Errorf("list %s devices: %w", res.Kind(), err)
	}
	return devices, nil
}
