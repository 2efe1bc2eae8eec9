// Package logging builds the zerolog loggers used by containers, tools and applications.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/a-peyrard/treedi/option"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type (
	Format string

	Options struct {
		level  string
		format Format
		output io.Writer
		caller bool
	}
)

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

func WithLevel(level string) option.Option[Options] {
	return func(opts *Options) {
		opts.level = level
	}
}

func WithFormat(format Format) option.Option[Options] {
	return func(opts *Options) {
		opts.format = format
	}
}

func WithOutput(output io.Writer) option.Option[Options] {
	return func(opts *Options) {
		opts.output = output
	}
}

func WithCaller() option.Option[Options] {
	return func(opts *Options) {
		opts.caller = true
	}
}

// New builds a logger, info level on stderr with console output by default.
// Console output is colored only when written to a terminal.
func New(opts ...option.Option[Options]) (zerolog.Logger, error) {
	options := option.Build(
		&Options{
			level:  zerolog.InfoLevel.String(),
			format: FormatConsole,
			output: os.Stderr,
		},
		opts...,
	)

	level, err := ParseLevel(options.level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var writer io.Writer
	switch options.format {
	case FormatJSON:
		writer = options.output
	case FormatConsole, "":
		writer = zerolog.ConsoleWriter{
			Out:        options.output,
			TimeFormat: time.RFC3339,
			NoColor:    !IsTerminal(options.output),
		}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", options.format)
	}

	ctx := zerolog.New(writer).
		Level(level).
		With().
		Timestamp()
	if options.caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), nil
}

// ParseLevel is zerolog.ParseLevel, case insensitive and defaulting to info for an empty level.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %s:\n\t%w", level, err)
	}
	return parsed, nil
}

func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
