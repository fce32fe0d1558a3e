// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Env        string // development -> console output; anything else -> JSON
	Level      string
	File       string // optional, rotated by lumberjack
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds the logger and installs it as the zerolog global. The returned
// closer releases the log file, if any.
func New(cfg Config) (zerolog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Env, "development") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 50),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 30),
			LocalTime:  true,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
		closer = rotating
	}

	zl := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	log.Logger = zl
	zerolog.DefaultContextLogger = &log.Logger
	return zl, closer
}

// ParseLevel maps a level name to zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
