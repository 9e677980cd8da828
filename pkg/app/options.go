package app

import (
	"context"
	"os"
	"time"

	"github.com/x-thooh/geotech/pkg/app/transport"
)

type Option func(o *options)

type options struct {
	id       string
	name     string
	version  string
	metadata map[string]string

	ctx         context.Context
	sigs        []os.Signal
	logger      transport.Logger
	stopTimeout time.Duration
	servers     []transport.Server
}

func ID(id string) Option {
	return func(o *options) { o.id = id }
}

func Name(name string) Option {
	return func(o *options) { o.name = name }
}

func Version(version string) Option {
	return func(o *options) { o.version = version }
}

func Metadata(md map[string]string) Option {
	return func(o *options) { o.metadata = md }
}

// Context is the parent of every context handed to servers.
func Context(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// Signal stops the app when one of sigs arrives.
func Signal(sigs ...os.Signal) Option {
	return func(o *options) { o.sigs = sigs }
}

func Logger(logger transport.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// StopTimeout bounds how long each server may take to stop.
func StopTimeout(d time.Duration) Option {
	return func(o *options) { o.stopTimeout = d }
}

func Server(srv ...transport.Server) Option {
	return func(o *options) { o.servers = srv }
}
