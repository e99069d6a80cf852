// Package logging implements ports.Logger: ConsoleLogger writes text or JSON
// lines, NopLogger drops everything.
package logging

import (
	"context"

	"github.com/felixgeelhaar/srcbuild/internal/ports"
)

var _ ports.Logger = (*NopLogger)(nil)

// NopLogger discards every entry. It is the default when no logger is set.
type NopLogger struct {
	level ports.Level
}

// NewNopLogger creates a NopLogger.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: ports.LevelWarn}
}

func (l *NopLogger) Debug(context.Context, string, ...ports.Field) {}
func (l *NopLogger) Info(context.Context, string, ...ports.Field)  {}
func (l *NopLogger) Warn(context.Context, string, ...ports.Field)  {}
func (l *NopLogger) Error(context.Context, string, ...ports.Field) {}

// With returns l; there is nothing to attach fields to.
func (l *NopLogger) With(...ports.Field) ports.Logger { return l }

func (l *NopLogger) Level() ports.Level          { return l.level }
func (l *NopLogger) SetLevel(level ports.Level) { l.level = level }
