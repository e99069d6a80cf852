package platform

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"gopkg.in/ini.v1"
)

// OSReleasePath is the standard location of the distribution descriptor.
const OSReleasePath = "/etc/os-release"

// Distribution IDs with a dependency set.
const (
	DistroUbuntu = "ubuntu"
	DistroDebian = "debian"
)

// Distro identifies a Linux distribution as reported by os-release.
type Distro struct {
	ID         string
	IDLike     []string
	VersionID  string
	PrettyName string
}

// Supported reports whether the distribution has a dependency set.
// Derivatives are not accepted through ID_LIKE.
func (d Distro) Supported() bool {
	return d.ID == DistroUbuntu || d.ID == DistroDebian
}

// String returns the pretty name, or ID and version when it is missing.
func (d Distro) String() string {
	if d.PrettyName != "" {
		return d.PrettyName
	}
	if d.ID == "" {
		return "unknown"
	}
	return strings.TrimSpace(d.ID + " " + d.VersionID)
}

// ParseOSRelease parses the KEY=value contents of an os-release file.
func ParseOSRelease(data []byte) (Distro, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return Distro{}, fmt.Errorf("failed to parse os-release: %w", err)
	}

	sec := cfg.Section(ini.DefaultSection)
	d := Distro{
		ID:         strings.ToLower(sec.Key("ID").String()),
		VersionID:  sec.Key("VERSION_ID").String(),
		PrettyName: sec.Key("PRETTY_NAME").String(),
	}
	for _, like := range strings.Fields(sec.Key("ID_LIKE").String()) {
		d.IDLike = append(d.IDLike, strings.ToLower(like))
	}
	return d, nil
}

// ReadDistro reads and parses the os-release file at path.
func ReadDistro(fs ports.FileSystem, path string) (Distro, error) {
	if path == "" {
		path = OSReleasePath
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return Distro{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseOSRelease(data)
}
