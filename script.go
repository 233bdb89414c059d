package proaudio

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

const (
	confFileName    = "99-proaudio.conf"
	generatedHeader = "# Generated by proaudio. Local edits are replaced on the next apply."
	heredocMarker   = "PROAUDIO_EOF"
)

// ExitNothingToRun is reported when no backend produced an executable step
const ExitNothingToRun = -1

// StepKind distinguishes command steps from file writes
type StepKind int

const (
	StepCommand StepKind = iota
	StepWriteFile
)

// Step is one action of a generated Script
type Step struct {
	Kind StepKind

	// Command steps
	Name     string
	Args     []string
	AsUser   bool // run in the invoking user's session instead of as root
	Optional bool // a failure is ignored; the binary is not required up front

	// WriteFile steps
	Path    string
	Content string
}

// Command builds a step that runs as root
func Command(name string, args ...string) Step {
	return Step{Kind: StepCommand, Name: name, Args: args}
}

// UserCommand builds a step that runs in the invoking user's session
func UserCommand(name string, args ...string) Step {
	return Step{Kind: StepCommand, Name: name, Args: args, AsUser: true}
}

// OptionalUserCommand builds a session step whose failure does not abort the script
func OptionalUserCommand(name string, args ...string) Step {
	step := UserCommand(name, args...)
	step.Optional = true
	return step
}

// WriteFile builds a step that replaces path with content
func WriteFile(path, content string) Step {
	return Step{Kind: StepWriteFile, Path: path, Content: content}
}

// ScriptOptions carries the non-settings inputs of script generation
type ScriptOptions struct {
	Paths ScriptPaths

	// User and UID identify the session user for UserCommand steps.
	// Empty User runs those steps directly.
	User string
	UID  int

	// CurrentDeviceID is the detected active device, used when the target
	// device does not name one for the active backend
	CurrentDeviceID string
}

// Script is the backend-native command sequence for one apply
type Script struct {
	Backend BackendKind
	Steps   []Step
	User    string
	UID     int
}

// GenerateScript maps target settings to the active backend's steps.
// It performs no I/O and never fails; BackendNone yields an empty Script.
func GenerateScript(kind BackendKind, target Settings, opts ScriptOptions) Script {
	s := Script{Backend: kind, User: opts.User, UID: opts.UID}

	backend := BackendFor(kind)
	if backend == nil {
		return s
	}
	if opts.Paths == (ScriptPaths{}) {
		opts.Paths = DefaultScriptPaths()
	}

	s.Steps = backend.BuildSteps(target, opts)
	return s
}

// Empty reports whether the script has nothing to execute
func (s Script) Empty() bool {
	return len(s.Steps) == 0
}

// Binaries returns the distinct executables the script invokes
func (s Script) Binaries() []string {
	seen := make(map[string]bool)
	var bins []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			bins = append(bins, name)
		}
	}

	for _, step := range s.Steps {
		if step.Kind != StepCommand {
			continue
		}
		if step.AsUser && s.User != "" {
			add(runuserBin)
		}
		if !step.Optional {
			add(step.Name)
		}
	}
	return bins
}

// Render produces the POSIX sh program executed behind the elevation gate.
// A failing step exits with its own status, except 126 and 127, which
// become 1 so they cannot be mistaken for an authorization failure.
func (s Script) Render() string {
	var b strings.Builder

	b.WriteString("set -u\n")
	b.WriteString(`fail() { rc=$1; if [ "$rc" -ge 126 ]; then rc=1; fi; exit "$rc"; }` + "\n")

	for _, step := range s.Steps {
		switch step.Kind {
		case StepWriteFile:
			fmt.Fprintf(&b, "mkdir -p %s || fail $?\n", shellquote.Join(path.Dir(step.Path)))
			fmt.Fprintf(&b, "cat > %s <<'%s' || fail $?\n", shellquote.Join(step.Path), heredocMarker)
			b.WriteString(step.Content)
			if !strings.HasSuffix(step.Content, "\n") {
				b.WriteString("\n")
			}
			b.WriteString(heredocMarker + "\n")
		case StepCommand:
			if step.Optional {
				fmt.Fprintf(&b, "%s || :\n", shellquote.Join(s.argv(step)...))
				continue
			}
			fmt.Fprintf(&b, "%s || fail $?\n", shellquote.Join(s.argv(step)...))
		}
	}

	return b.String()
}

// argv returns the full argument vector of a command step
func (s Script) argv(step Step) []string {
	argv := append([]string{step.Name}, step.Args...)
	if !step.AsUser || s.User == "" {
		return argv
	}

	prefix := []string{
		runuserBin, "-u", s.User, "--",
		"env", "XDG_RUNTIME_DIR=/run/user/" + strconv.Itoa(s.UID),
	}
	return append(prefix, argv...)
}

func (s Script) String() string {
	return s.Render()
}
