package proaudio

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PROAUDIO_APPLY_TIMEOUT=30s
const EnvPrefix = "PROAUDIO"

func setConfigDefaults(v *viper.Viper) {
	def := DefaultOptions()

	v.SetDefault("log_level", "info")
	v.SetDefault("probe_timeout", def.ProbeTimeout)
	v.SetDefault("apply_timeout", def.ApplyTimeout)
	v.SetDefault("pkexec_path", def.PkexecPath)
	v.SetDefault("shell_path", def.ShellPath)
	v.SetDefault("verify.max_attempts", def.Verify.MaxAttempts)
	v.SetDefault("verify.initial_backoff", def.Verify.InitialBackoff)
	v.SetDefault("verify.max_backoff", def.Verify.MaxBackoff)
	v.SetDefault("verify.backoff_multiple", def.Verify.BackoffMultiple)
	v.SetDefault("paths.pipewire_conf_dir", def.Paths.PipeWireConfDir)
	v.SetDefault("paths.wireplumber_conf_dir", def.Paths.WirePlumberConfDir)
	v.SetDefault("paths.pulse_conf_dir", def.Paths.PulseConfDir)
	v.SetDefault("paths.asound_conf", def.Paths.AsoundConf)
}

// LoadOptions builds Options from defaults, an optional config file and
// PROAUDIO_* environment variables. A missing file is not an error.
// The returned level is the configured log level; the caller owns logger setup.
func LoadOptions(configFile string) (Options, zerolog.Level, error) {
	v := viper.New()
	setConfigDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Options{}, zerolog.NoLevel, fmt.Errorf("read config %s: %w", configFile, err)
			}
		}
	}

	level, err := zerolog.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return Options{}, zerolog.NoLevel, fmt.Errorf("invalid log_level: %w", err)
	}

	opts := DefaultOptions()
	opts.ProbeTimeout = v.GetDuration("probe_timeout")
	opts.ApplyTimeout = v.GetDuration("apply_timeout")
	opts.PkexecPath = v.GetString("pkexec_path")
	opts.ShellPath = v.GetString("shell_path")
	opts.Verify = RetryConfig{
		MaxAttempts:     v.GetInt("verify.max_attempts"),
		InitialBackoff:  v.GetDuration("verify.initial_backoff"),
		MaxBackoff:      v.GetDuration("verify.max_backoff"),
		BackoffMultiple: v.GetFloat64("verify.backoff_multiple"),
	}
	opts.Paths = ScriptPaths{
		PipeWireConfDir:    v.GetString("paths.pipewire_conf_dir"),
		WirePlumberConfDir: v.GetString("paths.wireplumber_conf_dir"),
		PulseConfDir:       v.GetString("paths.pulse_conf_dir"),
		AsoundConf:         v.GetString("paths.asound_conf"),
	}

	if opts.Verify.MaxAttempts < 1 {
		return Options{}, zerolog.NoLevel, fmt.Errorf("verify.max_attempts must be at least 1, got %d", opts.Verify.MaxAttempts)
	}

	return opts, level, nil
}
