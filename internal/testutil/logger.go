package testutil

import "log/slog"

// DiscardLogger returns a slog.Logger that drops all output. Use it to
// keep test runs quiet; components taking log.Logger accept it directly
// since that type is an alias for *slog.Logger.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
