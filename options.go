package jsbridge

import (
	"errors"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// UnresolvedPolicy controls the response to calls whose function path does
// not resolve.
type UnresolvedPolicy int

const (
	// ReportUnresolved sends an error response, carrying a [NotFoundError].
	ReportUnresolved UnresolvedPolicy = iota

	// DropUnresolved sends no response. Callers observe only the absence of
	// a response, and must apply their own timeout.
	DropUnresolved
)

// bridgeOptions holds configuration for a [Bridge].
type bridgeOptions struct {
	logger     *logiface.Logger[logiface.Event]
	warnRates  map[time.Duration]int
	resolver   Resolver
	scheme     string
	unresolved UnresolvedPolicy
}

// Option configures a [Bridge].
type Option interface {
	applyOption(*bridgeOptions) error
}

// optionFunc implements [Option] via a closure.
type optionFunc struct {
	fn func(*bridgeOptions) error
}

func (o *optionFunc) applyOption(opts *bridgeOptions) error {
	return o.fn(opts)
}

// WithLogger configures structured logging. A nil logger disables logging,
// which is the default.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionFunc{fn: func(opts *bridgeOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithScheme sets the scheme tag of handshake signals, see [EncodeSignal].
// Defaults to [DefaultScheme].
func WithScheme(scheme string) Option {
	return &optionFunc{fn: func(opts *bridgeOptions) error {
		if scheme == `` {
			return errors.New("jsbridge: scheme must not be empty")
		}
		opts.scheme = scheme
		return nil
	}}
}

// WithRootName sets the optional root prefix stripped from function paths.
// Defaults to "window". An empty name disables stripping.
func WithRootName(name string) Option {
	return &optionFunc{fn: func(opts *bridgeOptions) error {
		opts.resolver.RootName = name
		return nil
	}}
}

// WithDelimiter sets the function path delimiter. Defaults to ".".
func WithDelimiter(delimiter string) Option {
	return &optionFunc{fn: func(opts *bridgeOptions) error {
		if delimiter == `` {
			return errors.New("jsbridge: delimiter must not be empty")
		}
		opts.resolver.Delimiter = delimiter
		return nil
	}}
}

// WithMaxDepth bounds the number of segments in a function path. Defaults
// to 32.
func WithMaxDepth(depth int) Option {
	return &optionFunc{fn: func(opts *bridgeOptions) error {
		if depth <= 0 {
			return errors.New("jsbridge: max depth must be positive")
		}
		opts.resolver.MaxDepth = depth
		return nil
	}}
}

// WithUnresolvedPolicy sets the behavior for calls to unknown functions.
// Defaults to [ReportUnresolved].
func WithUnresolvedPolicy(policy UnresolvedPolicy) Option {
	return &optionFunc{fn: func(opts *bridgeOptions) error {
		switch policy {
		case ReportUnresolved, DropUnresolved:
		default:
			return errors.New("jsbridge: invalid unresolved policy")
		}
		opts.unresolved = policy
		return nil
	}}
}

// WithWarningRates configures the per category rate limit applied to
// repetitive warnings, e.g. calls to the same unknown function. See
// [catrate.NewLimiter] for the format. A nil map disables limiting.
func WithWarningRates(rates map[time.Duration]int) Option {
	return &optionFunc{fn: func(opts *bridgeOptions) error {
		opts.warnRates = rates
		return nil
	}}
}

// resolveOptions applies the given options to the defaults.
func resolveOptions(opts []Option) (*bridgeOptions, error) {
	cfg := &bridgeOptions{
		resolver: DefaultResolver,
		scheme:   DefaultScheme,
		warnRates: map[time.Duration]int{
			time.Second: 5,
			time.Minute: 30,
		},
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

func newWarnLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	if len(rates) == 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			limiter = nil
			err = errors.New("jsbridge: invalid warning rates")
		}
	}()
	return catrate.NewLimiter(rates), nil
}
