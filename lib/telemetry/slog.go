package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog handler. Verbose mode drops the
// level to debug, which also enables the per-request wire logging in the
// resty middleware.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
