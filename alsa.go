package proaudio

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	alsaCardPattern     = regexp.MustCompile(`(?m)^card (\d+): (\S+) \[(.*?)\], device (\d+): (.*?) \[(.*?)\]`)
	alsaHwRatePattern   = regexp.MustCompile(`(?m)^rate:\s*(\d+)`)
	alsaHwPeriodPattern = regexp.MustCompile(`(?m)^period_size:\s*(\d+)`)
	alsaHwFormatPattern = regexp.MustCompile(`(?m)^format:\s*(\S+)`)
	alsaHwClosedPattern = regexp.MustCompile(`(?m)^closed\s*$`)
	alsaConfPCMPattern  = regexp.MustCompile(`(?m)^\s*pcm\s+"(?:plug)?hw:(\d+)(?:,(\d+))?"`)
)

// alsaEntry is one device line of `aplay -l` / `arecord -l`
type alsaEntry struct {
	Card       string
	CardID     string
	CardName   string
	Device     string
	DeviceName string
}

func parseAlsaList(out string) []alsaEntry {
	var entries []alsaEntry
	for _, m := range alsaCardPattern.FindAllStringSubmatch(out, -1) {
		entries = append(entries, alsaEntry{
			Card:       m[1],
			CardID:     m[2],
			CardName:   m[3],
			Device:     m[4],
			DeviceName: m[6],
		})
	}
	return entries
}

func (e alsaEntry) hwID() string {
	return fmt.Sprintf("hw:%s,%s", e.Card, e.Device)
}

func (e alsaEntry) description() string {
	return e.CardName + " - " + e.DeviceName
}

// alsaBackend reads the configured default from asoundConf when present,
// otherwise the first playback device is taken as current
type alsaBackend struct {
	asoundConf string
}

func (alsaBackend) Kind() BackendKind { return BackendALSA }

func (alsaBackend) StatusBinary() string { return aplayBin }

func (b alsaBackend) Probe(ctx context.Context, r CommandRunner) (string, error) {
	out, err := r.Run(ctx, aplayBin, "-l")
	if err != nil {
		return "", err
	}
	if !nonEmpty(out) {
		return "", errEmptyOutput
	}

	raw := string(out)
	if b.asoundConf != "" {
		if conf := runOptional(ctx, r, catBin, b.asoundConf); conf != "" {
			raw += "\n" + conf
		}
	}

	if card, device, ok := alsaCurrent(raw); ok {
		hwParams := fmt.Sprintf("/proc/asound/card%d/pcm%dp/sub0/hw_params", card, device)
		if params := runOptional(ctx, r, catBin, hwParams); params != "" {
			raw += "\n" + params
		}
	}
	return raw, nil
}

// alsaCurrent returns the configured default slave from asound.conf output,
// else the first listed playback device
func alsaCurrent(raw string) (card, device int, ok bool) {
	if m := alsaConfPCMPattern.FindStringSubmatch(raw); m != nil {
		return atoiOrZero(m[1]), atoiOrZero(m[2]), true
	}
	if entries := parseAlsaList(raw); len(entries) > 0 {
		return atoiOrZero(entries[0].Card), atoiOrZero(entries[0].Device), true
	}
	return 0, 0, false
}

func (alsaBackend) ParseSettings(raw string) Detection {
	var device string
	if card, dev, ok := alsaCurrent(raw); ok {
		device = fmt.Sprintf("%s:hw:%d,%d", BackendALSA, card, dev)
	}

	// a closed PCM reports no hardware parameters
	if alsaHwClosedPattern.MatchString(raw) {
		return newDetection(BackendALSA, 0, 0, 0, device)
	}

	return newDetection(BackendALSA,
		submatchInt(alsaHwRatePattern, raw),
		parseBitDepth(submatch(alsaHwFormatPattern, raw)),
		submatchInt(alsaHwPeriodPattern, raw),
		device,
	)
}

func (alsaBackend) Describe(raw string) string {
	entries := parseAlsaList(raw)
	if len(entries) == 0 {
		return ""
	}
	return entries[0].description()
}

func (alsaBackend) ListDevices(ctx context.Context, r CommandRunner) ([]DeviceDescriptor, error) {
	playback, err := r.Run(ctx, aplayBin, "-l")
	if err != nil {
		return nil, fmt.Errorf("aplay -l: %w", err)
	}

	devices := alsaDescriptors(string(playback), DirectionPlayback)
	if capture := runOptional(ctx, r, arecordBin, "-l"); capture != "" {
		devices = append(devices, alsaDescriptors(capture, DirectionCapture)...)
	}
	return devices, nil
}

// alsaDescriptors marks the first device of each direction as the default
func alsaDescriptors(out string, dir Direction) []DeviceDescriptor {
	entries := parseAlsaList(out)
	devices := make([]DeviceDescriptor, 0, len(entries))
	for i, e := range entries {
		devices = append(devices, DeviceDescriptor{
			ID:          fmt.Sprintf("%s:%s", BackendALSA, e.hwID()),
			Description: CleanDescription(e.description()),
			Backend:     BackendALSA,
			Direction:   dir,
			Default:     i == 0,
		})
	}
	return devices
}

// alsaTarget resolves the card/device to configure: the target device when it
// is an ALSA id, else the currently active one, else hw:0,0
func alsaTarget(target Settings, opts ScriptOptions) (card, device int) {
	for _, id := range []string{target.DeviceID, opts.CurrentDeviceID} {
		dev, err := ParseDeviceID(id)
		if err != nil || dev.Backend != BackendALSA {
			continue
		}
		if c, d, ok := alsaCardDevice(dev.Identifier); ok {
			return c, d
		}
	}
	return 0, 0
}

func (alsaBackend) BuildSteps(target Settings, opts ScriptOptions) []Step {
	card, device := alsaTarget(target, opts)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", generatedHeader)
	fmt.Fprintf(&b, "pcm.!default {\n")
	fmt.Fprintf(&b, "    type plug\n")
	fmt.Fprintf(&b, "    slave {\n")
	fmt.Fprintf(&b, "        pcm \"hw:%d,%d\"\n", card, device)
	fmt.Fprintf(&b, "        rate %d\n", target.SampleRate)
	fmt.Fprintf(&b, "        format %s\n", target.Format().AlsaName())
	fmt.Fprintf(&b, "        period_size %d\n", target.BufferSize)
	fmt.Fprintf(&b, "    }\n")
	fmt.Fprintf(&b, "}\n\n")
	fmt.Fprintf(&b, "ctl.!default {\n")
	fmt.Fprintf(&b, "    type hw\n")
	fmt.Fprintf(&b, "    card %d\n", card)
	fmt.Fprintf(&b, "}\n")

	return []Step{WriteFile(opts.Paths.AsoundConf, b.String())}
}
