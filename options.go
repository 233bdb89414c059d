package proaudio

import (
	"time"

	"github.com/rs/zerolog"
)

// Options configures probing, script generation and the privileged apply
type Options struct {
	// Logger receives component logs (defaults to a no-op logger)
	Logger zerolog.Logger

	// ProbeTimeout bounds each backend query command (defaults to 5s)
	ProbeTimeout time.Duration

	// ApplyTimeout bounds the authorization prompt plus script execution
	// (defaults to 2 minutes, 0 = no timeout)
	ApplyTimeout time.Duration

	// PkexecPath is the elevation gate binary (defaults to "pkexec")
	PkexecPath string

	// ShellPath is the shell the generated script runs under (defaults to "/bin/sh")
	ShellPath string

	// Verify controls re-detection after a successful apply
	Verify RetryConfig

	// Paths are the configuration files written by generated scripts
	Paths ScriptPaths

	// Runner executes backend query commands
	Runner CommandRunner

	// Availability checks whether binaries are installed
	Availability CommandAvailability
}

// ScriptPaths holds the backend configuration locations written on apply
type ScriptPaths struct {
	PipeWireConfDir    string
	WirePlumberConfDir string
	PulseConfDir       string
	AsoundConf         string
}

// DefaultScriptPaths returns the system-wide configuration locations
func DefaultScriptPaths() ScriptPaths {
	return ScriptPaths{
		PipeWireConfDir:    "/etc/pipewire/pipewire.conf.d",
		WirePlumberConfDir: "/etc/wireplumber/wireplumber.conf.d",
		PulseConfDir:       "/etc/pulse/daemon.conf.d",
		AsoundConf:         "/etc/asound.conf",
	}
}

// DefaultOptions returns Options with sensible defaults
func DefaultOptions() Options {
	return Options{
		Logger:       zerolog.Nop(),
		ProbeTimeout: 5 * time.Second,
		ApplyTimeout: 2 * time.Minute,
		PkexecPath:   "pkexec",
		ShellPath:    "/bin/sh",
		Verify:       DefaultRetryConfig(),
		Paths:        DefaultScriptPaths(),
		Runner:       ExecRunner{},
		Availability: PathAvailability{},
	}
}

// withDefaults fills zero-valued capabilities so partially built Options stay usable
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Runner == nil {
		o.Runner = def.Runner
	}
	if o.Availability == nil {
		o.Availability = def.Availability
	}
	if o.PkexecPath == "" {
		o.PkexecPath = def.PkexecPath
	}
	if o.ShellPath == "" {
		o.ShellPath = def.ShellPath
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = def.ProbeTimeout
	}
	if o.Verify.MaxAttempts <= 0 {
		o.Verify.MaxAttempts = 1
	}
	if o.Paths == (ScriptPaths{}) {
		o.Paths = def.Paths
	}
	return o
}
