package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig selects the level, the encoding ("json" or "text") and the
// destination of process logs.
type LogConfig struct {
	Level   string
	Format  string
	Service string
	Output  io.Writer // stdout when nil
}

// InitLogger builds the process logger, tags every record with the service
// name and installs it as slog's default. Debug logging adds source
// locations.
func InitLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}

	var h slog.Handler = slog.NewTextHandler(out, opts)
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	}
	if cfg.Service != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLevel accepts slog's level names plus "warning". Anything else is
// info.
func parseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
