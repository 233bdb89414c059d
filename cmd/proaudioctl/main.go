package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	proaudio "github.com/thadeu/go-proaudio"
)

type globalOptions struct {
	Config  string `short:"c" long:"config" description:"Path to a config file (yaml, toml or json)"`
	Verbose bool   `short:"v" long:"verbose" description:"Force debug logging"`
}

var (
	global globalOptions

	// rootCtx is cancelled on SIGINT/SIGTERM
	rootCtx = context.Background()
)

// loadOptions resolves config and builds the console logger
func loadOptions() (proaudio.Options, error) {
	opts, level, err := proaudio.LoadOptions(global.Config)
	if err != nil {
		return proaudio.Options{}, err
	}
	if global.Verbose {
		level = zerolog.DebugLevel
	}

	opts.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return opts, nil
}

type detectCommand struct{}

func (c *detectCommand) Execute(_ []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	det, err := proaudio.NewDetector(opts).DetectCurrent(rootCtx)
	if err != nil {
		return err
	}

	s := det.Settings
	fmt.Printf("backend:     %s\n", det.Backend)
	fmt.Printf("sample rate: %d Hz%s\n", s.SampleRate, defaultedMark(det.Defaulted.SampleRate))
	fmt.Printf("bit depth:   %d bit%s\n", s.BitDepth, defaultedMark(det.Defaulted.BitDepth))
	fmt.Printf("buffer:      %d frames (%.1fms)%s\n", s.BufferSize, proaudio.LatencyMillis(s.BufferSize, s.SampleRate), defaultedMark(det.Defaulted.BufferSize))
	fmt.Printf("device:      %s%s\n", s.DeviceID, defaultedMark(det.Defaulted.DeviceID))
	return nil
}

func defaultedMark(defaulted bool) string {
	if defaulted {
		return " (default, not detected)"
	}
	return ""
}

type deviceCommand struct{}

func (c *deviceCommand) Execute(_ []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	desc, err := proaudio.NewDetector(opts).DetectDeviceDescription(rootCtx)
	if err != nil {
		return err
	}
	fmt.Println(desc)
	return nil
}

type devicesCommand struct{}

func (c *devicesCommand) Execute(_ []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	devices, err := proaudio.NewDetector(opts).DetectAllDevices(rootCtx)
	if err != nil {
		return err
	}

	for _, d := range devices {
		mark := " "
		if d.Default {
			mark = "*"
		}
		fmt.Printf("%s %-8s %-24s %s\n", mark, d.Direction, d.ID, d.Description)
	}
	return nil
}

type applyCommand struct {
	Preset string `short:"p" long:"preset" description:"Start from a preset (cd, studio, hires96, hires192)"`
	Rate   int    `short:"r" long:"rate" description:"Sample rate in Hz"`
	Depth  int    `short:"d" long:"depth" description:"Bit depth (16, 24 or 32)"`
	Buffer int    `short:"b" long:"buffer" description:"Buffer size in frames"`
	Device string `long:"device" description:"Target device id, e.g. alsa:hw:0,0 or pipewire:56" default:"default"`
}

var presets = map[string]proaudio.Settings{
	"cd":       proaudio.CD_QUALITY,
	"studio":   proaudio.STUDIO_48K_24BIT,
	"hires96":  proaudio.HIRES_96K_24BIT,
	"hires192": proaudio.HIRES_192K_32BIT,
}

func (c *applyCommand) target() (proaudio.Settings, error) {
	target := proaudio.DefaultSettings()
	if c.Preset != "" {
		p, ok := presets[strings.ToLower(c.Preset)]
		if !ok {
			return proaudio.Settings{}, fmt.Errorf("unknown preset %q", c.Preset)
		}
		target = p
	}

	if c.Rate != 0 {
		target.SampleRate = c.Rate
	}
	if c.Depth != 0 {
		target.BitDepth = c.Depth
	}
	if c.Buffer != 0 {
		target.BufferSize = c.Buffer
	}
	target.DeviceID = c.Device
	return target, nil
}

func (c *applyCommand) Execute(_ []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	target, err := c.target()
	if err != nil {
		return err
	}

	outcome, err := proaudio.NewCoordinator(opts).Apply(rootCtx, target)
	switch {
	case errors.Is(err, proaudio.ErrPrivilegeDenied):
		return fmt.Errorf("authorization refused: %w", err)
	case err != nil:
		return err
	}

	fmt.Printf("%s: %s\n", outcome.Status, target.Label())
	if outcome.Status == proaudio.OutcomeAppliedUnverified && outcome.Detected != nil {
		fmt.Printf("backend now reports %s\n", outcome.Detected.Settings.Label())
	}
	return nil
}

type checkCommand struct{}

func (c *checkCommand) Execute(_ []string) error {
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	missing := proaudio.CheckCommands(opts.Availability, opts)
	if len(missing) == 0 {
		fmt.Println("all commands available")
		return nil
	}
	fmt.Printf("missing: %s\n", strings.Join(missing, ", "))
	return nil
}

func main() {
	var stop context.CancelFunc
	rootCtx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	parser := flags.NewParser(&global, flags.Default)
	parser.AddCommand("detect", "Show current settings", "Detect the active backend and print its settings.", &detectCommand{})
	parser.AddCommand("device", "Describe the active device", "Print a human-readable description of the active output device.", &deviceCommand{})
	parser.AddCommand("devices", "List devices", "List playback and capture devices of the active backend.", &devicesCommand{})
	parser.AddCommand("apply", "Apply settings", "Apply settings system-wide through pkexec and verify them.", &applyCommand{})
	parser.AddCommand("check", "Check required commands", "Report which backend and elevation commands are missing.", &checkCommand{})

	_, err := parser.Parse()
	stop()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		// flags.Default already printed the error
		os.Exit(1)
	}
}
