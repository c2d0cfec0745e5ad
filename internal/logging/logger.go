package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger on stdout as the process default. Extra
// handlers such as a PGHandler receive the same records.
func Setup(production bool, extra ...slog.Handler) *slog.Logger {
	return setup(os.Stdout, production, extra...)
}

func setup(w io.Writer, production bool, extra ...slog.Handler) *slog.Logger {
	level := slog.LevelDebug
	if production {
		level = slog.LevelInfo
	}

	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}

	logger := slog.New(handler).With("service", "sghss-api")
	slog.SetDefault(logger)
	return logger
}
