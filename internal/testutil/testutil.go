// Package testutil provides test helpers shared by srcbuild tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// os-release fixtures.
const (
	UbuntuRelease = `PRETTY_NAME="Ubuntu 24.04 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
ID_LIKE=debian
`
	DebianRelease = `PRETTY_NAME="Debian GNU/Linux 12 (bookworm)"
NAME="Debian GNU/Linux"
VERSION_ID="12"
ID=debian
`
	FedoraRelease = `NAME="Fedora Linux"
VERSION_ID=40
ID=fedora
`
)

// WriteTempFile writes content to name inside dir and returns the path.
// Missing parent directories are created.
func WriteTempFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "failed to write temp file: %s", name)

	return path
}

// AssertFileContains asserts that a file contains the expected substring.
func AssertFileContains(t testing.TB, path, expected string, msgAndArgs ...interface{}) {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read file: %s", path)

	assert.Contains(t, string(content), expected, msgAndArgs...)
}

// AssertYAMLEquals asserts that two YAML documents decode to the same value.
func AssertYAMLEquals(t testing.TB, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var want, got interface{}
	require.NoError(t, yaml.Unmarshal([]byte(normalize(expected)), &want), "failed to parse expected YAML")
	require.NoError(t, yaml.Unmarshal([]byte(normalize(actual)), &got), "failed to parse actual YAML")

	assert.Equal(t, want, got, msgAndArgs...)
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
