package application

import "log/slog"

// ResolveLogger returns the module logger or slog.Default.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
