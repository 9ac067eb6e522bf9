// Package log provides the prefixed, colorized component logger used across the service.
package log

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"

	"github.com/logrusorgru/aurora"
)

var ErrEmptyPrefix = errors.New("logger prefix must not be empty")

// Logger writes "[PREFIX] [LEVEL] message" lines with the prefix in the component's color.
type Logger struct {
	out    *stdlog.Logger
	prefix aurora.Value
	au     aurora.Aurora
}

// Option configures a Logger.
type Option func(*options)

type options struct {
	colors bool
	flags  int
}

// WithoutColors disables ANSI escapes, for writers that are not terminals.
func WithoutColors() Option {
	return func(o *options) {
		o.colors = false
	}
}

// WithFlags sets the standard log flags (date, time, ...).
func WithFlags(flags int) Option {
	return func(o *options) {
		o.flags = flags
	}
}

// New creates a logger for the component named prefix.
func New(prefix string, color aurora.Color, w io.Writer, opts ...Option) (*Logger, error) {
	if prefix == "" {
		return nil, ErrEmptyPrefix
	}

	o := &options{colors: true, flags: stdlog.LstdFlags}
	for _, opt := range opts {
		opt(o)
	}

	au := aurora.NewAurora(o.colors)
	return &Logger{
		out:    stdlog.New(w, "", o.flags),
		prefix: au.Colorize(fmt.Sprintf("[%s]", prefix), color),
		au:     au,
	}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.print(l.au.Green("[INFO]"), msg)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(msg string) {
	l.print(l.au.Yellow("[WARNING]"), msg)
}

// Error logs a failure.
func (l *Logger) Error(msg string) {
	l.print(l.au.Red("[ERROR]"), msg)
}

func (l *Logger) print(level aurora.Value, msg string) {
	l.out.Printf("%s %s %s", l.prefix, level, msg)
}
