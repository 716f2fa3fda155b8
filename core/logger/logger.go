// Package logger defines the logging contract used across the simulator.
// Core packages depend on this interface only; the zerolog adapter lives in
// infra/logger.
package logger

// Logger exposes leveled logging. Debugw carries structured fields for the
// rare cases where printf formatting is not enough.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StructuredLogger is the structured-fields subset of Logger.
type StructuredLogger interface {
	Debugw(msg string, fields map[string]any)
}
