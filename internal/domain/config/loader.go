package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when --config is not given. A missing file there is
// not an error.
const DefaultPath = "~/.config/srcbuild/config.yaml"

// Loader loads settings from the filesystem.
type Loader struct {
	fs ports.FileSystem
}

// NewLoader creates a new Loader.
func NewLoader(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads path on top of Defaults. The format follows the extension.
// Unknown keys are rejected.
func (l *Loader) Load(path string) (Settings, error) {
	path = ports.ExpandPath(path)
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, NewConfigNotFoundError(path)
		}
		return Settings{}, err
	}

	s := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Settings{}, NewYAMLParseError(path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Settings{}, NewTOMLParseError(path, err)
		}
	default:
		return Settings{}, NewUnsupportedFormatError(path)
	}

	if s.BuildDir == "" {
		s.BuildDir = DefaultBuildDir
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadOrDefault loads path, or DefaultPath when path is empty. Only a missing
// DefaultPath falls back to Defaults.
func (l *Loader) LoadOrDefault(path string) (Settings, error) {
	if path != "" {
		return l.Load(path)
	}
	s, err := l.Load(DefaultPath)
	if IsUserError(err, ErrCodeConfigNotFound) {
		return Defaults(), nil
	}
	return s, err
}
