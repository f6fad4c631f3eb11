// Package platform detects the host operating system and CPU architecture
// and normalizes them into a Descriptor that the other components consume.
package platform

import (
	"fmt"
	"regexp"
	"strings"
)

// OS is the normalized operating system family.
type OS int

const (
	OSUnknown OS = iota
	OSWindows
	OSLinux
	OSMacOS
	OSJVM
)

func (o OS) String() string {
	switch o {
	case OSWindows:
		return "Windows"
	case OSLinux:
		return "Linux"
	case OSMacOS:
		return "macOS"
	case OSJVM:
		return "JVM"
	default:
		return "Unknown"
	}
}

// Width is the CPU word width in bits. Zero means unknown.
type Width int

const (
	WidthUnknown Width = 0
	Width32      Width = 32
	Width64      Width = 64
)

func (w Width) String() string {
	if w == WidthUnknown {
		return "Unknown"
	}
	return fmt.Sprintf("%d-bit", int(w))
}

// Kind is the CPU architecture family.
type Kind int

const (
	KindUnknown Kind = iota
	KindX86
	KindARM
)

func (k Kind) String() string {
	switch k {
	case KindX86:
		return "x86"
	case KindARM:
		return "ARM"
	default:
		return "Unknown"
	}
}

// Descriptor describes the host platform. It is computed once per process
// and passed by value; nothing mutates it afterwards.
type Descriptor struct {
	OS    OS
	Width Width
	Kind  Kind

	// Raw values as reported by the operating system.
	RawOS   string
	RawArch string
}

// IsWindows reports whether the descriptor is a Windows host.
func (d Descriptor) IsWindows() bool {
	return d.OS == OSWindows
}

// ExeSuffix returns the file suffix of native executables on this platform.
func (d Descriptor) ExeSuffix() string {
	if d.IsWindows() {
		return ".exe"
	}
	return ""
}

func (d Descriptor) String() string {
	osName := d.OS.String()
	if d.OS == OSUnknown && d.RawOS != "" {
		osName = fmt.Sprintf("Unknown (%s)", d.RawOS)
	}
	arch := d.Kind.String()
	if d.Kind == KindUnknown && d.RawArch != "" {
		arch = fmt.Sprintf("Unknown (%s)", d.RawArch)
	}
	return fmt.Sprintf("%s %s %s", osName, arch, d.Width)
}

var x86Pattern = regexp.MustCompile(`^i[3-6]86$`)

// Classify maps an OS-reported system name and machine string to a Descriptor.
// Unrecognized values degrade to Unknown; it never fails.
func Classify(system, machine string) Descriptor {
	system = strings.TrimSpace(system)
	machine = strings.TrimSpace(machine)

	return Descriptor{
		OS:      classifyOS(system),
		Width:   classifyWidth(machine),
		Kind:    classifyKind(machine),
		RawOS:   system,
		RawArch: machine,
	}
}

func classifyOS(system string) OS {
	lower := strings.ToLower(system)
	switch {
	case lower == "windows", strings.HasPrefix(lower, "mingw"),
		strings.HasPrefix(lower, "msys"), strings.HasPrefix(lower, "cygwin"):
		return OSWindows
	case lower == "linux":
		return OSLinux
	case lower == "darwin":
		return OSMacOS
	case lower == "java":
		return OSJVM
	default:
		return OSUnknown
	}
}

func classifyWidth(machine string) Width {
	lower := strings.ToLower(machine)
	switch {
	case lower == "":
		return WidthUnknown
	case strings.HasSuffix(lower, "64"):
		return Width64
	case lower == "x86", x86Pattern.MatchString(lower), strings.HasPrefix(lower, "armv"), lower == "arm":
		return Width32
	default:
		return WidthUnknown
	}
}

func classifyKind(machine string) Kind {
	lower := strings.ToLower(machine)
	switch {
	case strings.Contains(lower, "x86"), strings.Contains(lower, "amd64"), x86Pattern.MatchString(lower):
		return KindX86
	case strings.Contains(lower, "arm"), strings.Contains(lower, "aarch"):
		return KindARM
	default:
		return KindUnknown
	}
}

// Probe reads the host system name and machine string and classifies them.
func Probe() Descriptor {
	system, machine := uname()
	return Classify(system, machine)
}
