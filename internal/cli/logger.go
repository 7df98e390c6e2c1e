package cli

import (
	"log/slog"
	"os"
)

// newLogger builds the structured logger injected into Loop and the
// compaction pipeline per SPEC_FULL.md §4.10. Never a package-level
// global: each command constructs its own and threads it through.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
