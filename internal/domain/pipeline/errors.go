package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	CodeUnsupportedOS   = "UNSUPPORTED_OS"
	CodePackageInstall  = "PACKAGE_INSTALL_FAILED"
	CodeStepFailed      = "STEP_FAILED"
	CodeMissingArtifact = "MISSING_ARTIFACT"
	CodeDirectory       = "DIRECTORY_ERROR"
	CodeCancelled       = "CANCELLED"
	CodeUnknown         = "UNKNOWN"
)

var (
	// ErrCancelled is returned when the operator declines a checkpoint or the
	// run context is cancelled.
	ErrCancelled = errors.New("pipeline cancelled")

	// ErrUnsupportedOS matches any UnsupportedOSError via errors.Is.
	ErrUnsupportedOS = errors.New("unsupported operating system")
)

// UnsupportedOSError is returned before any step runs when the distribution
// has no dependency set.
type UnsupportedOSError struct {
	ID string
}

func (e *UnsupportedOSError) Error() string {
	if e.ID == "" {
		return "unsupported operating system: unknown distribution"
	}
	return fmt.Sprintf("unsupported operating system: %s", e.ID)
}

// Is reports whether target is ErrUnsupportedOS.
func (e *UnsupportedOSError) Is(target error) bool {
	return target == ErrUnsupportedOS
}

// StepFailedError reports the command that stopped the pipeline.
type StepFailedError struct {
	Step     string
	Command  string
	ExitCode int
	// Err is set when the command could not be started or a task failed.
	Err error
}

func (e *StepFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %q: %s: %v", e.Step, e.Command, e.Err)
	}
	return fmt.Sprintf("step %q: %s exited with status %d", e.Step, e.Command, e.ExitCode)
}

func (e *StepFailedError) Unwrap() error {
	return e.Err
}

// PackageInstallError wraps the failure of a dependency installation step.
type PackageInstallError struct {
	Err *StepFailedError
}

func (e *PackageInstallError) Error() string {
	return "package installation failed: " + e.Err.Error()
}

func (e *PackageInstallError) Unwrap() error {
	return e.Err
}

// MissingArtifactError reports a file that an installed component should
// have produced but did not.
type MissingArtifactError struct {
	Step string
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("step %q: expected artifact %s is missing", e.Step, e.Path)
}

// DirectoryError reports a step whose working directory is unusable.
type DirectoryError struct {
	Step string
	Dir  string
	Err  error
}

func (e *DirectoryError) Error() string {
	msg := fmt.Sprintf("step %q: working directory %s", e.Step, e.Dir)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + " does not exist"
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// Code returns the error code for err, or "" for nil.
func Code(err error) string {
	var (
		osErr   *UnsupportedOSError
		pkgErr  *PackageInstallError
		stepErr *StepFailedError
		artErr  *MissingArtifactError
		dirErr  *DirectoryError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCancelled):
		return CodeCancelled
	case errors.As(err, &osErr), errors.Is(err, ErrUnsupportedOS):
		return CodeUnsupportedOS
	case errors.As(err, &pkgErr):
		return CodePackageInstall
	case errors.As(err, &artErr):
		return CodeMissingArtifact
	case errors.As(err, &dirErr):
		return CodeDirectory
	case errors.As(err, &stepErr):
		return CodeStepFailed
	default:
		return CodeUnknown
	}
}

// ExitCode maps err to a process exit status: 0 for nil, the failing
// command's status for a step failure, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var stepErr *StepFailedError
	if errors.As(err, &stepErr) && stepErr.ExitCode > 0 && stepErr.ExitCode < 256 {
		return stepErr.ExitCode
	}
	return 1
}

// Suggestion returns an operator-facing hint for err.
func Suggestion(err error) string {
	var stepErr *StepFailedError
	switch Code(err) {
	case CodeUnsupportedOS:
		return "Only Ubuntu and Debian are supported. Check ID= in /etc/os-release."
	case CodePackageInstall:
		return "Run 'sudo apt-get update' and retry; check that the package names exist for your release."
	case CodeMissingArtifact:
		return "The component installed without producing the expected file. Check its install log above."
	case CodeDirectory:
		return "Make sure the build directory exists and the previous checkout step succeeded."
	case CodeCancelled:
		return "Nothing was rolled back. Re-run to start again from the first step."
	case CodeStepFailed:
		if errors.As(err, &stepErr) && stepErr.ExitCode == 127 {
			return fmt.Sprintf("%s was not found. Install it or check PATH.", firstWord(stepErr.Command))
		}
		return "Fix the failing command and re-run; the pipeline restarts from the first step."
	default:
		return ""
	}
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
