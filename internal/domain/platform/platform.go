// Package platform detects the host the build runs on.
package platform

import (
	"os"
	"runtime"
	"strings"
	"sync"
)

// OS represents the operating system type.
type OS string

const (
	// OSDarwin is macOS.
	OSDarwin OS = "darwin"
	// OSLinux is Linux.
	OSLinux OS = "linux"
	// OSUnknown is any other OS.
	OSUnknown OS = "unknown"
)

// Environment represents the execution environment.
type Environment string

const (
	// EnvNative is a native OS environment.
	EnvNative Environment = "native"
	// EnvDocker is running inside a container.
	EnvDocker Environment = "docker"
)

// Platform contains detected platform information.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	root        bool
}

var (
	detected     *Platform
	detectOnce   sync.Once
	testPlatform *Platform
)

// Detect returns the current platform information.
// Results are cached after the first call.
func Detect() *Platform {
	if testPlatform != nil {
		return testPlatform
	}

	detectOnce.Do(func() {
		detected = detect()
	})
	return detected
}

// SetTestPlatform sets a mock platform for testing.
// Pass nil to reset to actual detection.
func SetTestPlatform(p *Platform) {
	testPlatform = p
}

func detect() *Platform {
	p := &Platform{
		arch:        runtime.GOARCH,
		environment: EnvNative,
		root:        os.Geteuid() == 0,
	}

	switch runtime.GOOS {
	case "darwin":
		p.os = OSDarwin
	case "linux":
		p.os = OSLinux
		if isContainer() {
			p.environment = EnvDocker
		}
	default:
		p.os = OSUnknown
	}

	return p
}

// isContainer checks for Docker or containerd markers.
func isContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}

	return strings.Contains(string(data), "docker") ||
		strings.Contains(string(data), "containerd")
}

// OS returns the operating system.
func (p *Platform) OS() OS {
	return p.os
}

// Arch returns the architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// Environment returns the execution environment.
func (p *Platform) Environment() Environment {
	return p.environment
}

// IsLinux returns true if running on Linux.
func (p *Platform) IsLinux() bool {
	return p.os == OSLinux
}

// IsDocker returns true if running in a container.
func (p *Platform) IsDocker() bool {
	return p.environment == EnvDocker
}

// IsRoot reports whether the effective user is root. Privileged commands
// skip sudo when it is.
func (p *Platform) IsRoot() bool {
	return p.root
}

// String returns a human-readable description.
func (p *Platform) String() string {
	parts := []string{string(p.os), p.arch}
	if p.environment != EnvNative {
		parts = append(parts, string(p.environment))
	}
	if p.root {
		parts = append(parts, "root")
	}
	return strings.Join(parts, "/")
}

// New creates a Platform with specified values.
func New(os OS, arch string, env Environment, root bool) *Platform {
	return &Platform{
		os:          os,
		arch:        arch,
		environment: env,
		root:        root,
	}
}
