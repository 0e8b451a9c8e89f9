package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var ErrInvalidFormat = errors.New("invalid log format")

type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Path   string // optional file, written in addition to the base writer
}

// New builds a logger writing to stderr and, when Path is set, to that file.
// The returned close func releases the file and is never nil.
func New(opts Options) (*slog.Logger, func() error, error) {
	return NewWithWriter(os.Stderr, opts)
}

func NewWithWriter(base io.Writer, opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	closer := func() error { return nil }
	w := base
	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(base, f)
		closer = f.Close
	}

	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		_ = closer()
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidFormat, opts.Format)
	}
	return slog.New(h), closer, nil
}

func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
