package host

import (
	"errors"

	jsbridge "github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/logiface"
)

// hostOptions holds configuration for the hosts in this package.
type hostOptions struct {
	logger    *logiface.Logger[logiface.Event]
	scheme    string
	batch     BatchConfig
	queueSize int
}

// Option configures a [PushHost], [PullHost] or [Caller]. Options that do
// not apply to a given type are ignored.
type Option interface {
	applyOption(*hostOptions) error
}

// optionFunc implements [Option] via a closure.
type optionFunc struct {
	fn func(*hostOptions) error
}

func (o *optionFunc) applyOption(opts *hostOptions) error {
	return o.fn(opts)
}

// WithLogger configures structured logging. Defaults to no logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithScheme sets the scheme a [PullHost] intercepts. It must match the
// bridge's scheme. Defaults to [jsbridge.DefaultScheme].
func WithScheme(scheme string) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		if scheme == `` {
			return errors.New("host: scheme must not be empty")
		}
		opts.scheme = scheme
		return nil
	}}
}

// WithBatch configures how a [PullHost] drains intercepted signals.
func WithBatch(cfg BatchConfig) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		opts.batch = cfg
		return nil
	}}
}

// WithQueueSize bounds the number of intercepted signals a [PullHost]
// holds, before Attach fails. Defaults to 256.
func WithQueueSize(size int) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		if size <= 0 {
			return errors.New("host: queue size must be positive")
		}
		opts.queueSize = size
		return nil
	}}
}

// resolveOptions applies the given options to the defaults.
func resolveOptions(opts []Option) (*hostOptions, error) {
	cfg := &hostOptions{
		scheme:    jsbridge.DefaultScheme,
		queueSize: 256,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
