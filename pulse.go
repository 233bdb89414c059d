package proaudio

import (
	"bufio"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	pulseDefaultSpecPattern = regexp.MustCompile(`(?m)^Default Sample Specification:\s*(.+)$`)
	pulseDefaultSinkPattern = regexp.MustCompile(`(?m)^Default Sink:\s*(\S+)`)
	pulseDefaultSrcPattern  = regexp.MustCompile(`(?m)^Default Source:\s*(\S+)`)
	pulseServerNamePattern  = regexp.MustCompile(`(?m)^Server Name:\s*(.+)$`)
	pulseSpecRatePattern    = regexp.MustCompile(`(\d+)Hz`)
)

// pulseRow is one line of `pactl list short sinks|sources`
type pulseRow struct {
	Index  string
	Name   string
	Driver string
	Spec   string
	State  string
}

// parsePulseRows reads tab-separated short listings, skipping malformed lines
func parsePulseRows(out string) []pulseRow {
	var rows []pulseRow

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 5 {
			continue
		}
		if atoiOrZero(fields[0]) == 0 && strings.TrimSpace(fields[0]) != "0" {
			continue
		}
		rows = append(rows, pulseRow{
			Index:  strings.TrimSpace(fields[0]),
			Name:   strings.TrimSpace(fields[1]),
			Driver: strings.TrimSpace(fields[2]),
			Spec:   strings.TrimSpace(fields[3]),
			State:  strings.TrimSpace(fields[4]),
		})
	}

	return rows
}

func submatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// defaultPulseSink returns the row of the default sink, or false
func defaultPulseSink(raw string) (pulseRow, bool) {
	name := submatch(pulseDefaultSinkPattern, raw)
	if name == "" {
		return pulseRow{}, false
	}
	for _, row := range parsePulseRows(raw) {
		if row.Name == name {
			return row, true
		}
	}
	return pulseRow{}, false
}

type pulseBackend struct{}

func (pulseBackend) Kind() BackendKind { return BackendPulse }

func (pulseBackend) StatusBinary() string { return pactlBin }

func (pulseBackend) Probe(ctx context.Context, r CommandRunner) (string, error) {
	out, err := r.Run(ctx, pactlBin, "info")
	if err != nil {
		return "", err
	}
	if !nonEmpty(out) {
		return "", errEmptyOutput
	}

	raw := string(out)
	if sinks := runOptional(ctx, r, pactlBin, "list", "short", "sinks"); sinks != "" {
		raw += "\n" + sinks
	}
	return raw, nil
}

func (pulseBackend) ParseSettings(raw string) Detection {
	spec := submatch(pulseDefaultSpecPattern, raw)

	var device string
	if row, ok := defaultPulseSink(raw); ok {
		device = fmt.Sprintf("%s:%s", BackendPulse, row.Index)
		if row.Spec != "" {
			spec = row.Spec
		}
	}

	// Pulse does not report a frame count; buffer size always falls back.
	return newDetection(BackendPulse, submatchInt(pulseSpecRatePattern, spec), parseBitDepth(spec), 0, device)
}

func (pulseBackend) Describe(raw string) string {
	if row, ok := defaultPulseSink(raw); ok {
		return strings.Join([]string{row.Driver, row.Spec, row.State}, " ")
	}
	return submatch(pulseServerNamePattern, raw)
}

func (pulseBackend) ListDevices(ctx context.Context, r CommandRunner) ([]DeviceDescriptor, error) {
	info := runOptional(ctx, r, pactlBin, "info")
	defaultSink := submatch(pulseDefaultSinkPattern, info)
	defaultSource := submatch(pulseDefaultSrcPattern, info)

	sinks, err := r.Run(ctx, pactlBin, "list", "short", "sinks")
	if err != nil {
		return nil, fmt.Errorf("pactl list sinks: %w", err)
	}
	devices := pulseDescriptors(string(sinks), DirectionPlayback, defaultSink)

	// capture listing is best-effort
	if sources := runOptional(ctx, r, pactlBin, "list", "short", "sources"); sources != "" {
		devices = append(devices, pulseDescriptors(sources, DirectionCapture, defaultSource)...)
	}

	return devices, nil
}

func pulseDescriptors(out string, dir Direction, defaultName string) []DeviceDescriptor {
	var devices []DeviceDescriptor
	for _, row := range parsePulseRows(out) {
		if strings.HasSuffix(row.Name, ".monitor") {
			continue
		}
		devices = append(devices, DeviceDescriptor{
			ID:          fmt.Sprintf("%s:%s", BackendPulse, row.Index),
			Description: CleanDescription(row.Name + " " + row.Spec + " " + row.State),
			Backend:     BackendPulse,
			Direction:   dir,
			Default:     row.Name == defaultName,
		})
	}
	return devices
}

// fragmentMillis converts a frame count to whole milliseconds at rate, at least 1
func fragmentMillis(frames, rate int) int {
	if rate <= 0 {
		return 1
	}
	ms := (frames*1000 + rate - 1) / rate
	if ms < 1 {
		return 1
	}
	return ms
}

func (pulseBackend) BuildSteps(target Settings, opts ScriptOptions) []Step {
	steps := []Step{
		WriteFile(path.Join(opts.Paths.PulseConfDir, confFileName), fmt.Sprintf(`%s
default-sample-rate = %d
alternate-sample-rate = %d
default-sample-format = %s
default-fragments = 2
default-fragment-size-msec = %d
`, generatedHeader, target.SampleRate, target.SampleRate, target.Format().PulseName(),
			fragmentMillis(target.BufferSize, target.SampleRate))),
		UserCommand(systemctlBin, "--user", "restart", "pulseaudio.service"),
	}

	if dev, err := ParseDeviceID(target.DeviceID); err == nil && dev.Backend == BackendPulse && !dev.IsDefault() {
		steps = append(steps, UserCommand(pactlBin, "set-default-sink", dev.Identifier))
	}

	return steps
}
