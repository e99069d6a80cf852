// Package shell persists the build environment to the user's shell startup file.
package shell

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/srcbuild/internal/validation"
)

// DefaultShell is used when $SHELL names a shell without a known startup file.
const DefaultShell = "bash"

// EnsureLines appends every line of lines that does not already appear in
// content as an exact, whole line. It reports whether content changed.
// Applying the result a second time is a no-op.
func EnsureLines(content string, lines []string) (string, bool) {
	present := make(map[string]bool)
	for _, l := range strings.Split(content, "\n") {
		present[strings.TrimRight(l, "\r")] = true
	}

	var missing []string
	for _, l := range lines {
		if !present[l] {
			missing = append(missing, l)
			present[l] = true
		}
	}
	if len(missing) == 0 {
		return content, false
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + strings.Join(missing, "\n") + "\n", true
}

// SourceLine returns the line that loads script into the shell.
func SourceLine(script string) (string, error) {
	if err := validation.ValidatePath(script); err != nil {
		return "", err
	}
	if err := validation.ValidateLine(script); err != nil {
		return "", err
	}
	return ". " + script, nil
}

// ExportLine returns an export statement for name. References such as
// $LD_LIBRARY_PATH in value are left for the shell to expand.
func ExportLine(name, value string) (string, error) {
	if err := validation.ValidateEnvName(name); err != nil {
		return "", err
	}
	if err := validation.ValidateLine(value); err != nil {
		return "", err
	}
	return fmt.Sprintf("export %s=%q", name, value), nil
}

// StartupFile returns the startup file path for a shell name or path.
func StartupFile(shellName string) string {
	if i := strings.LastIndex(shellName, "/"); i >= 0 {
		shellName = shellName[i+1:]
	}
	switch shellName {
	case "zsh":
		return "~/.zshrc"
	case "bash":
		return "~/.bashrc"
	default:
		return StartupFile(DefaultShell)
	}
}
