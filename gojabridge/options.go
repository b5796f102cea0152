package gojabridge

import (
	"errors"

	jsbridge "github.com/joeycumines/go-jsbridge"
)

// moduleOptions holds configuration for a [Module] instance.
type moduleOptions struct {
	bridge *jsbridge.Bridge
}

// Option configures a [Module] instance. Options are applied during
// module construction.
type Option interface {
	applyOption(*moduleOptions) error
}

// optionFunc implements [Option] via a closure.
type optionFunc struct {
	fn func(*moduleOptions) error
}

func (o *optionFunc) applyOption(opts *moduleOptions) error {
	return o.fn(opts)
}

// WithBridge configures the [jsbridge.Bridge] the module exposes. This
// option is required; passing nil returns an error during module
// construction.
func WithBridge(b *jsbridge.Bridge) Option {
	return &optionFunc{fn: func(opts *moduleOptions) error {
		if b == nil {
			return errors.New("gojabridge: bridge must not be nil")
		}
		opts.bridge = b
		return nil
	}}
}

// resolveOptions applies the given options to a default [moduleOptions]
// and validates that all required fields are set.
func resolveOptions(opts []Option) (*moduleOptions, error) {
	cfg := &moduleOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.bridge == nil {
		return nil, errors.New("gojabridge: bridge is required (use WithBridge)")
	}
	return cfg, nil
}
