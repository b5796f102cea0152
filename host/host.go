package host

import (
	jsbridge "github.com/joeycumines/go-jsbridge"
	"github.com/joeycumines/logiface"
)

type (
	// Receiver consumes events sent by the bridge, after transport.
	Receiver interface {
		Receive(eventName, payload string) error
	}

	// ReceiverFunc adapts a function to [Receiver].
	ReceiverFunc func(eventName, payload string) error

	// PushHost is a push-capable host. Every emission is a direct call,
	// delivered synchronously to the receiver.
	PushHost struct {
		receiver Receiver
		logger   *logiface.Logger[logiface.Event]
	}
)

var (
	_ jsbridge.Environment = (*PushHost)(nil)
	_ jsbridge.PushTarget  = (*PushHost)(nil)
	_ Receiver             = ReceiverFunc(nil)
)

// Receive implements [Receiver].
func (f ReceiverFunc) Receive(eventName, payload string) error {
	return f(eventName, payload)
}

// NewPushHost returns a push-capable host that delivers to receiver.
func NewPushHost(receiver Receiver, opts ...Option) (*PushHost, error) {
	if receiver == nil {
		panic("host: receiver must not be nil")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &PushHost{receiver: receiver, logger: cfg.logger}, nil
}

// PushTarget implements [jsbridge.Environment].
func (h *PushHost) PushTarget() jsbridge.PushTarget { return h }

// Document implements [jsbridge.Environment], a push host has none.
func (h *PushHost) Document() jsbridge.Document { return nil }

// Call implements [jsbridge.PushTarget].
func (h *PushHost) Call(eventName, payload string) error {
	h.logger.Trace().
		Str(`event`, eventName).
		Int(`size`, len(payload)).
		Log(`push received`)
	return h.receiver.Receive(eventName, payload)
}
