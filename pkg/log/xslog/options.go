package xslog

import (
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StreamStdout = "ext://sys.stdout"
	StreamStderr = "ext://sys.stderr"
)

type Option func(o *options)

type options struct {
	streams map[string]io.Writer
	baseDir string
	clock   func() time.Time
	errOut  io.Writer
	reg     prometheus.Registerer
}

func defaultOptions() *options {
	return &options{
		streams: map[string]io.Writer{
			StreamStdout: os.Stdout,
			StreamStderr: os.Stderr,
		},
		clock:  time.Now,
		errOut: os.Stderr,
	}
}

// WithStreams adds or overrides the writers stream handlers can target.
func WithStreams(streams map[string]io.Writer) Option {
	return func(o *options) {
		for k, w := range streams {
			o.streams[k] = w
		}
	}
}

// WithBaseDir resolves relative file handler paths against dir.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithErrorOutput sets where handler failures and last-resort records go.
func WithErrorOutput(w io.Writer) Option {
	return func(o *options) {
		o.errOut = w
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.reg = reg
	}
}
