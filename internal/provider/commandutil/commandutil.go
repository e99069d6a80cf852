// Package commandutil classifies errors from starting a build tool so that
// callers can report them the way a shell would.
package commandutil

import (
	"errors"
	"os"
	"os/exec"
)

// Shell exit statuses for a command that could not be started.
const (
	StatusNotExecutable = 126
	StatusNotFound      = 127
)

// IsCommandNotFound reports whether err means the program (sh, cmake,
// make and so on) is not on PATH or its file is gone.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && pathErr.Op != "chdir" && errors.Is(pathErr.Err, os.ErrNotExist)
}

// StartStatus maps an error from starting a program to the status sh would
// report: 127 when it is missing, 126 when it exists but cannot be run. The
// second result is false when err is not a start failure.
func StartStatus(err error) (int, bool) {
	switch {
	case IsCommandNotFound(err):
		return StatusNotFound, true
	case errors.Is(err, exec.ErrDot):
		return StatusNotExecutable, true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && pathErr.Op != "chdir" && errors.Is(pathErr.Err, os.ErrPermission) {
		return StatusNotExecutable, true
	}
	return 0, false
}
