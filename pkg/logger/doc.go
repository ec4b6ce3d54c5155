// Package logger builds configured log/slog loggers with JSON output for
// production and text output for development, tagged with service and
// environment attributes.
package logger
