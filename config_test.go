package proaudio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions_Defaults(t *testing.T) {
	opts, level, err := LoadOptions("")
	require.NoError(t, err)

	def := DefaultOptions()
	assert.Equal(t, zerolog.InfoLevel, level)
	assert.Equal(t, def.ProbeTimeout, opts.ProbeTimeout)
	assert.Equal(t, 2*time.Minute, opts.ApplyTimeout)
	assert.Equal(t, "pkexec", opts.PkexecPath)
	assert.Equal(t, def.Verify, opts.Verify)
	assert.Equal(t, def.Paths, opts.Paths)
}

func TestLoadOptions_MissingFileIsNotAnError(t *testing.T) {
	_, _, err := LoadOptions(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}

func TestLoadOptions_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proaudio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
apply_timeout: 30s
pkexec_path: /usr/bin/pkexec
verify:
  max_attempts: 5
  initial_backoff: 250ms
paths:
  asound_conf: /tmp/asound.conf
`), 0o644))

	opts, level, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, level)
	assert.Equal(t, 30*time.Second, opts.ApplyTimeout)
	assert.Equal(t, "/usr/bin/pkexec", opts.PkexecPath)
	assert.Equal(t, 5, opts.Verify.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, opts.Verify.InitialBackoff)
	assert.Equal(t, DefaultRetryConfig().MaxBackoff, opts.Verify.MaxBackoff)
	assert.Equal(t, "/tmp/asound.conf", opts.Paths.AsoundConf)
	assert.Equal(t, DefaultScriptPaths().PulseConfDir, opts.Paths.PulseConfDir)
}

func TestLoadOptions_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proaudio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apply_timeout: 30s\n"), 0o644))

	t.Setenv("PROAUDIO_APPLY_TIMEOUT", "45s")
	t.Setenv("PROAUDIO_VERIFY_MAX_ATTEMPTS", "7")

	opts, _, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, opts.ApplyTimeout)
	assert.Equal(t, 7, opts.Verify.MaxAttempts)
}

func TestLoadOptions_Invalid(t *testing.T) {
	t.Run("log level", func(t *testing.T) {
		t.Setenv("PROAUDIO_LOG_LEVEL", "loud")
		_, _, err := LoadOptions("")
		assert.Error(t, err)
	})

	t.Run("max attempts", func(t *testing.T) {
		t.Setenv("PROAUDIO_VERIFY_MAX_ATTEMPTS", "0")
		_, _, err := LoadOptions("")
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("verify: [unterminated\n"), 0o644))
		_, _, err := LoadOptions(path)
		assert.Error(t, err)
	})
}
