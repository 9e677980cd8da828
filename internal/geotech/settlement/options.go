package settlement

import "runtime"

type Option func(o *options)

type options struct {
	sublayers int
	poolSize  int
	chunk     int
}

func defaultOptions() *options {
	return &options{
		sublayers: 10,
		poolSize:  runtime.GOMAXPROCS(0),
		chunk:     64,
	}
}

// WithSublayers sets how many slices each layer is integrated over.
func WithSublayers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sublayers = n
		}
	}
}

func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithChunkSize sets how many iterations one pool task evaluates.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunk = n
		}
	}
}
