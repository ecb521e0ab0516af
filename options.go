package tiff

import (
	"log/slog"
)

type options struct {
	pool       *Pool
	poolConfig PoolConfig
	logger     *slog.Logger
	opener     Opener
}

// An Option configures a Reader.
type Option func(*options)

// WithPool makes the reader take its buffers from p, which may be shared
// with other readers. Without it each reader allocates its own pool.
func WithPool(p *Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithPoolConfig sizes the pool of a reader not given one with WithPool.
func WithPoolConfig(cfg PoolConfig) Option {
	return func(o *options) {
		o.poolConfig = cfg
	}
}

// WithLogger sets the logger receiving decoding diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithOpener sets how Open turns a path into a Storage. The default is OpenFile.
func WithOpener(fn Opener) Option {
	return func(o *options) {
		o.opener = fn
	}
}

func newOptions(opts []Option) options {
	o := options{
		poolConfig: DefaultPoolConfig,
		opener:     OpenFile,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
