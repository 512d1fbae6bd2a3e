// Package logging builds the process-wide *slog.Logger from config.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Params struct {
	Level       string // debug | info | warn | error
	Format      string // text | json
	FileName    string // empty: stdout only
	ToStdout    bool
	Environment string
}

// New returns the logger and a Closer for the rotated log file (a no-op
// closer when logging only to stdout). Close it on shutdown.
func New(p Params) (*slog.Logger, io.Closer) {
	return newWithStdout(p, os.Stdout)
}

func newWithStdout(p Params, stdout io.Writer) (*slog.Logger, io.Closer) {
	var (
		out    io.Writer = stdout
		closer io.Closer = nopCloser{}
	)

	if p.FileName != "" {
		if !strings.HasSuffix(p.FileName, ".log") {
			p.FileName += ".log"
		}
		file := &lumberjack.Logger{
			Filename:   p.FileName,
			MaxSize:    50, // megabytes
			MaxBackups: 10,
			LocalTime:  false, // UTC
			Compress:   true,
		}
		closer = file
		out = file
		if p.ToStdout {
			out = io.MultiWriter(stdout, file)
		}
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(p.Level)}

	var h slog.Handler
	if strings.EqualFold(p.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(h)
	if p.Environment != "" {
		logger = logger.With(slog.String("env", p.Environment))
	}
	return logger, closer
}

// ParseLevel maps a config string to a slog.Level. Unknown values mean debug.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Discard is a logger for tests that writes nothing.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
