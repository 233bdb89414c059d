package proaudio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// fakeRunner answers commands from a table keyed by "name arg1 arg2 ..."
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) on(cmdline, out string) *fakeRunner {
	f.outputs[cmdline] = out
	return f
}

func (f *fakeRunner) fail(cmdline string, err error) *fakeRunner {
	f.errs[cmdline] = err
	return f
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	out, ok := f.outputs[key]
	if !ok {
		return nil, errors.New(key + ": no such command")
	}
	return []byte(out), nil
}

func (f *fakeRunner) called(cmdline string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == cmdline {
			return true
		}
	}
	return false
}

// availableOnly reports the listed binaries as installed
func availableOnly(names ...string) AvailabilityFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func allAvailable() AvailabilityFunc {
	return func(string) bool { return true }
}

func testOptions(r CommandRunner, avail CommandAvailability) Options {
	opts := DefaultOptions()
	opts.Runner = r
	opts.Availability = avail
	opts.ProbeTimeout = time.Second
	opts.Verify = RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiple: 2}
	return opts
}

// Sample command outputs captured from real systems

const pwMetadataOutput = `Found "settings" metadata 32
update: id:0 key:'log.level' value:'2' type:''
update: id:0 key:'clock.rate' value:'48000' type:''
update: id:0 key:'clock.allowed-rates' value:'[ 48000 ]' type:''
update: id:0 key:'clock.quantum' value:'1024' type:''
update: id:0 key:'clock.min-quantum' value:'32' type:''
update: id:0 key:'clock.max-quantum' value:'2048' type:''
update: id:0 key:'clock.force-quantum' value:'0' type:''
update: id:0 key:'clock.force-rate' value:'0' type:''
`

const wpctlInspectOutput = `id 56, type PipeWire:Interface:Node
    alsa.card = "0"
    alsa.card_name = "HDA Intel PCH"
    audio.channels = "2"
    audio.format = "S32LE"
    audio.rate = "48000"
  * node.description = "Built-in Audio Analog Stereo RUNNING"
  * node.name = "alsa_output.pci-0000_00_1f.3.analog-stereo"
`

const wpctlStatusOutput = `PipeWire 'pipewire-0' [1.0.5, user@host, cookie:1234]
 └─ Clients:
        33. WirePlumber                         [1.0.5, user@host, pid:1200]

Audio
 ├─ Devices:
 │      45. Built-in Audio                      [alsa]
 │
 ├─ Sinks:
 │  *   56. Built-in Audio Analog Stereo        [vol: 0.40]
 │      61. USB Audio Interface Pro             [vol: 1.00]
 │
 ├─ Sink endpoints:
 │
 ├─ Sources:
 │  *   57. Built-in Audio Analog Stereo        [vol: 1.00]
 │
 ├─ Source endpoints:
 │
 └─ Streams:

Video
 ├─ Devices:
 │      70. Integrated Camera                   [v4l2]
 │
 ├─ Sinks:
 │
 └─ Sources:
 │      71. Integrated Camera (V4L2)

Settings
 └─ Default Configured Node Names:
         0. Audio/Sink    alsa_output.pci-0000_00_1f.3.analog-stereo
`

const pactlInfoOutput = `Server String: /run/user/1000/pulse/native
Library Protocol Version: 35
Server Protocol Version: 35
Is Local: yes
Client Index: 42
Tile Size: 65472
User Name: user
Host Name: host
Server Name: pulseaudio
Server Version: 16.1
Default Sample Specification: s16le 2ch 44100Hz
Default Channel Map: front-left,front-right
Default Sink: alsa_output.pci-0000_00_1f.3.analog-stereo
Default Source: alsa_input.pci-0000_00_1f.3.analog-stereo
Cookie: 1234:abcd
`

const pactlSinksOutput = "0\talsa_output.pci-0000_00_1f.3.analog-stereo\tmodule-alsa-card.c\ts24le 2ch 48000Hz\tRUNNING\n" +
	"1\talsa_output.usb-Focusrite.analog-stereo\tmodule-alsa-card.c\ts32le 2ch 96000Hz\tSUSPENDED\n"

const pactlSourcesOutput = "0\talsa_output.pci-0000_00_1f.3.analog-stereo.monitor\tmodule-alsa-card.c\ts24le 2ch 48000Hz\tIDLE\n" +
	"1\talsa_input.pci-0000_00_1f.3.analog-stereo\tmodule-alsa-card.c\ts16le 2ch 44100Hz\tSUSPENDED\n"

const aplayListOutput = `**** List of PLAYBACK Hardware Devices ****
card 0: PCH [HDA Intel PCH], device 0: ALC3246 Analog [ALC3246 Analog]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 0: PCH [HDA Intel PCH], device 3: HDMI 0 [HDMI 0]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 1: USB [Scarlett 2i2 USB], device 0: USB Audio [USB Audio]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
`

const arecordListOutput = `**** List of CAPTURE Hardware Devices ****
card 1: USB [Scarlett 2i2 USB], device 0: USB Audio [USB Audio]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
`

const alsaHwParamsOutput = `access: RW_INTERLEAVED
format: S24_3LE
subformat: STD
channels: 2
rate: 96000 (96000/1)
period_size: 512
buffer_size: 2048
`

const alsaHwParamsPath = "/proc/asound/card0/pcm0p/sub0/hw_params"
