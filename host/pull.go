package host

import (
	"context"
	"errors"
	"sync/atomic"

	jsbridge "github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/logiface"
)

// ErrQueueFull is returned by [PullHost.Attach] when signals are not being
// drained fast enough.
var ErrQueueFull = errors.New("host: signal queue is full")

// Fetcher retrieves staged payloads, see [jsbridge.Bridge.FetchStaged].
type Fetcher interface {
	FetchStaged(id int64) (string, bool)
}

// PullHost is a host that cannot receive pushed calls. It observes the
// elements attached to its document, intercepting navigations that carry
// its scheme, then pulls the payload of each intercepted signal.
type PullHost struct {
	receiver Receiver
	logger   *logiface.Logger[logiface.Event]
	signals  chan jsbridge.Signal
	batch    BatchConfig
	scheme   string
	ignored  atomic.Int64
}

var (
	_ jsbridge.Environment = (*PullHost)(nil)
	_ jsbridge.Document    = (*PullHost)(nil)
)

// NewPullHost returns a pull-only host that delivers to receiver. Signals
// are only processed while [PullHost.Run] is running.
func NewPullHost(receiver Receiver, opts ...Option) (*PullHost, error) {
	if receiver == nil {
		panic("host: receiver must not be nil")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &PullHost{
		receiver: receiver,
		logger:   cfg.logger,
		signals:  make(chan jsbridge.Signal, cfg.queueSize),
		batch:    cfg.batch,
		scheme:   cfg.scheme,
	}, nil
}

// PushTarget implements [jsbridge.Environment], a pull host has none.
func (h *PullHost) PushTarget() jsbridge.PushTarget { return nil }

// Document implements [jsbridge.Environment].
func (h *PullHost) Document() jsbridge.Document { return h }

// Attach implements [jsbridge.Document]. Sources that are not signals are
// treated as ordinary navigation, and ignored.
func (h *PullHost) Attach(src string) (jsbridge.Element, error) {
	signal, err := jsbridge.ParseSignal(h.scheme, src)
	if err != nil {
		h.ignored.Add(1)
		if !errors.Is(err, jsbridge.ErrNotSignal) {
			h.logger.Warning().
				Str(`src`, src).
				Err(err).
				Log(`ignoring malformed signal`)
		}
		return element{}, nil
	}

	select {
	case h.signals <- signal:
	default:
		return nil, ErrQueueFull
	}

	h.logger.Trace().
		Str(`event`, signal.EventName).
		Int64(`resId`, signal.ResID).
		Log(`signal intercepted`)

	return element{}, nil
}

// Ignored returns the number of attached sources that were not signals.
func (h *PullHost) Ignored() int64 {
	return h.ignored.Load()
}

// Pending returns the number of intercepted signals not yet processed.
func (h *PullHost) Pending() int {
	return len(h.signals)
}

// Run processes intercepted signals until ctx is canceled, pulling each
// payload from fetcher, and delivering it to the receiver. Signals whose
// payload is no longer available are skipped. An error from the receiver
// stops Run, and is returned.
func (h *PullHost) Run(ctx context.Context, fetcher Fetcher) error {
	if fetcher == nil {
		panic("host: fetcher must not be nil")
	}
	for {
		var batch int
		if err := receiveBatch[jsbridge.Signal](ctx, &h.batch, h.signals, func(signal jsbridge.Signal) error {
			batch++
			payload, ok := fetcher.FetchStaged(signal.ResID)
			if !ok {
				h.logger.Warning().
					Str(`event`, signal.EventName).
					Int64(`resId`, signal.ResID).
					Log(`staged payload unavailable`)
				return nil
			}
			return h.receiver.Receive(signal.EventName, payload)
		}); err != nil {
			return err
		}
		h.logger.Trace().
			Int(`size`, batch).
			Log(`batch processed`)
	}
}

// element is the navigable element, detached immediately by the bridge.
type element struct{}

func (element) Detach() error { return nil }
