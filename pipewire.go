package proaudio

import (
	"bufio"
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	pwClockRatePattern     = regexp.MustCompile(`key:'clock\.rate' value:'(\d+)'`)
	pwForceRatePattern     = regexp.MustCompile(`key:'clock\.force-rate' value:'(\d+)'`)
	pwClockQuantumPattern  = regexp.MustCompile(`key:'clock\.quantum' value:'(\d+)'`)
	pwForceQuantumPattern  = regexp.MustCompile(`key:'clock\.force-quantum' value:'(\d+)'`)
	pwNodeIDPattern        = regexp.MustCompile(`(?m)^id (\d+),`)
	pwNodeDescPattern      = regexp.MustCompile(`node\.description = "([^"]*)"`)
	pwAudioRatePattern     = regexp.MustCompile(`audio\.rate = "(\d+)"`)
	pwStatusEntryPattern   = regexp.MustCompile(`^[\s│├└─]*(\*)?\s*(\d+)\.\s+(.+?)(?:\s+\[[^\]]*\])?\s*$`)
	pwStatusSectionPattern = regexp.MustCompile(`^[\s│]*[├└]─\s*(.+):\s*$`)
)

type pipeWireBackend struct{}

func (pipeWireBackend) Kind() BackendKind { return BackendPipeWire }

func (pipeWireBackend) StatusBinary() string { return pwMetadataBin }

func (pipeWireBackend) Probe(ctx context.Context, r CommandRunner) (string, error) {
	out, err := r.Run(ctx, pwMetadataBin, "-n", "settings")
	if err != nil {
		return "", err
	}
	if !nonEmpty(out) {
		return "", errEmptyOutput
	}

	raw := string(out)
	if detail := runOptional(ctx, r, wpctlBin, "inspect", "@DEFAULT_AUDIO_SINK@"); detail != "" {
		raw += "\n" + detail
	}
	return raw, nil
}

func (pipeWireBackend) ParseSettings(raw string) Detection {
	rate := submatchInt(pwForceRatePattern, raw)
	if rate == 0 {
		rate = submatchInt(pwClockRatePattern, raw)
	}
	if rate == 0 {
		rate = submatchInt(pwAudioRatePattern, raw)
	}

	quantum := submatchInt(pwForceQuantumPattern, raw)
	if quantum == 0 {
		quantum = submatchInt(pwClockQuantumPattern, raw)
	}

	var device string
	if id := submatchInt(pwNodeIDPattern, raw); id > 0 {
		device = fmt.Sprintf("%s:%d", BackendPipeWire, id)
	}

	return newDetection(BackendPipeWire, rate, parseBitDepth(raw), quantum, device)
}

func (b pipeWireBackend) Describe(raw string) string {
	if m := pwNodeDescPattern.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		return m[1]
	}

	det := b.ParseSettings(raw)
	if det.Defaulted.SampleRate {
		return ""
	}
	return fmt.Sprintf("PipeWire %s %dHz", det.Settings.Format().PulseName(), det.Settings.SampleRate)
}

func (pipeWireBackend) ListDevices(ctx context.Context, r CommandRunner) ([]DeviceDescriptor, error) {
	out, err := r.Run(ctx, wpctlBin, "status")
	if err != nil {
		return nil, fmt.Errorf("wpctl status: %w", err)
	}
	return parseWpctlStatus(string(out)), nil
}

// parseWpctlStatus reads the Sinks and Sources sections under the Audio heading
func parseWpctlStatus(out string) []DeviceDescriptor {
	var (
		devices   []DeviceDescriptor
		inAudio   bool
		direction Direction
	)

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch trimmed {
		case "Audio":
			inAudio = true
			direction = ""
			continue
		case "Video", "Settings", "PipeWire":
			inAudio = false
			continue
		}
		if !inAudio {
			continue
		}

		if m := pwStatusSectionPattern.FindStringSubmatch(line); m != nil {
			switch m[1] {
			case "Sinks":
				direction = DirectionPlayback
			case "Sources":
				direction = DirectionCapture
			default:
				direction = ""
			}
			continue
		}
		if direction == "" {
			continue
		}

		m := pwStatusEntryPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		devices = append(devices, DeviceDescriptor{
			ID:          fmt.Sprintf("%s:%d", BackendPipeWire, id),
			Description: CleanDescription(m[3]),
			Backend:     BackendPipeWire,
			Direction:   direction,
			Default:     m[1] == "*",
		})
	}

	return devices
}

func (pipeWireBackend) BuildSteps(target Settings, opts ScriptOptions) []Step {
	rate := strconv.Itoa(target.SampleRate)
	quantum := strconv.Itoa(target.BufferSize)

	steps := []Step{
		WriteFile(path.Join(opts.Paths.PipeWireConfDir, confFileName), fmt.Sprintf(`%s
context.properties = {
    default.clock.rate          = %d
    default.clock.allowed-rates = [ %d ]
    default.clock.quantum       = %d
}
`, generatedHeader, target.SampleRate, target.SampleRate, target.BufferSize)),
		WriteFile(path.Join(opts.Paths.WirePlumberConfDir, confFileName), fmt.Sprintf(`%s
monitor.alsa.rules = [
  {
    matches = [ { node.name = "~alsa_output.*" } ]
    actions = {
      update-props = {
        audio.format         = "%s"
        audio.rate           = %d
        api.alsa.period-size = %d
      }
    }
  }
]
`, generatedHeader, target.Format(), target.SampleRate, target.BufferSize)),
		// the format rule only applies once WirePlumber recreates the nodes;
		// not every session runs it as a systemd user unit
		OptionalUserCommand(systemctlBin, "--user", "restart", "wireplumber.service"),
		UserCommand(pwMetadataBin, "-n", "settings", "0", "clock.force-rate", rate),
		UserCommand(pwMetadataBin, "-n", "settings", "0", "clock.force-quantum", quantum),
	}

	if dev, err := ParseDeviceID(target.DeviceID); err == nil && dev.Backend == BackendPipeWire && !dev.IsDefault() {
		steps = append(steps, UserCommand(wpctlBin, "set-default", dev.Identifier))
	}

	return steps
}
