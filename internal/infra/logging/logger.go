package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
	"github.com/rs/zerolog"
)

type Config struct {
	Level  string
	Format string
	Caller bool
}

func NewLoggingConfig() Config {
	return Config{
		Level:  env.GetEnv("LOG_LEVEL", "info"),
		Format: env.GetEnv("LOG_FORMAT", "json"),
		Caller: env.GetBool("LOG_CALLER", false),
	}
}

// Init builds the zerolog root logger and installs it behind slog's default
// logger, so the rest of the code keeps logging through log/slog.
func Init(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Str("service", "orbiter-api")
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()

	slog.SetDefault(slog.New(NewSlogHandler(logger)))
	return logger
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
