package jsbridge

import (
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/go-catrate"
	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
)

// Bridge connects code running on an event loop (the web side) to a host,
// which owns one of two asymmetric native transports.
//
// Inbound work (events and calls) is executed on the loop goroutine, in the
// order it was delivered. Outbound data is sent using the strategy selected,
// per emission, from the capabilities exposed by the [Environment].
//
// All state (subscriptions, staged payloads, the correlation counter) is
// owned by the instance. Close releases it.
type Bridge struct {
	loop       *eventloop.Loop
	env        Environment
	namespace  Namespace
	router     *Router
	store      *PendingStore
	logger     *logiface.Logger[logiface.Event]
	warnings   *catrate.Limiter
	resolver   Resolver
	scheme     string
	unresolved UnresolvedPolicy
	closed     atomic.Bool
}

// New creates a Bridge that runs inbound work on loop, resolves calls
// against namespace, and sends outbound data via env.
//
// New panics if loop is nil, as this is a programming error. The namespace
// may be nil, in which case every call fails to resolve.
func New(loop *eventloop.Loop, env Environment, namespace Namespace, opts ...Option) (*Bridge, error) {
	if loop == nil {
		panic("jsbridge: loop must not be nil")
	}

	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	warnings, err := newWarnLimiter(cfg.warnRates)
	if err != nil {
		return nil, err
	}

	return &Bridge{
		loop:       loop,
		env:        env,
		namespace:  namespace,
		router:     NewRouter(),
		store:      NewPendingStore(),
		logger:     cfg.logger,
		warnings:   warnings,
		resolver:   cfg.resolver,
		scheme:     cfg.scheme,
		unresolved: cfg.unresolved,
	}, nil
}

// Loop returns the event loop the bridge runs on.
func (b *Bridge) Loop() *eventloop.Loop { return b.loop }

// Router returns the subscription table.
func (b *Bridge) Router() *Router { return b.router }

// Store returns the pending response store.
func (b *Bridge) Store() *PendingStore { return b.store }

// Scheme returns the scheme tag used for handshake signals.
func (b *Bridge) Scheme() string { return b.scheme }

// On subscribes handler to eventName, see [Router.Subscribe].
func (b *Bridge) On(eventName string, handler Handler) (ListenerID, error) {
	return b.OnWithKey(eventName, nil, handler)
}

// OnWithKey subscribes handler to eventName, identified by key, see
// [Router.SubscribeWithKey].
func (b *Bridge) OnWithKey(eventName string, key any, handler Handler) (ListenerID, error) {
	if b.closed.Load() {
		return 0, ErrClosed
	}
	if eventName == ResponseEvent {
		return 0, ErrReservedEvent
	}
	return b.router.SubscribeWithKey(eventName, key, handler), nil
}

// Off removes a subscription made by On. Unknown registrations are ignored.
func (b *Bridge) Off(eventName string, id ListenerID) bool {
	return b.router.Unsubscribe(eventName, id)
}

// OffKey removes the first subscription for eventName whose key is
// accepted by match, see [Router.UnsubscribeKey].
func (b *Bridge) OffKey(eventName string, match func(key any) bool) bool {
	return b.router.UnsubscribeKey(eventName, match)
}

// Emit sends data to the host, as eventName. Data that is not already a
// string is encoded, see [EncodePayload].
func (b *Bridge) Emit(eventName string, data any) error {
	if eventName == ResponseEvent {
		return ErrReservedEvent
	}
	return b.emit(eventName, data)
}

func (b *Bridge) emit(eventName string, data any) error {
	if b.closed.Load() {
		return ErrClosed
	}

	payload, err := EncodePayload(data)
	if err != nil {
		return fmt.Errorf("jsbridge: encode %q: %w", eventName, err)
	}

	t, err := selectTransport(b.env, b.store, b.scheme)
	if err != nil {
		return err
	}

	if err := t.send(eventName, payload); err != nil {
		return err
	}

	b.logger.Trace().
		Str(`event`, eventName).
		Int(`size`, len(payload)).
		Log(`emitted`)

	return nil
}

// DeliverEvent is the inbound entry point for host events. The dispatch is
// scheduled on the loop, where handlers are invoked in registration order.
// Events without subscribers are ignored.
func (b *Bridge) DeliverEvent(eventName string, payload any) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := b.loop.Submit(func() {
		b.dispatchEvent(eventName, payload)
	}); err != nil {
		return fmt.Errorf("jsbridge: deliver event %q: %w", eventName, err)
	}
	return nil
}

func (b *Bridge) dispatchEvent(eventName string, payload any) {
	if b.closed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Err().
				Str(`event`, eventName).
				Err(PanicError{Value: r}).
				Log(`event handler panicked`)
		}
	}()
	b.router.Dispatch(eventName, payload)
}

// FetchStaged is the inbound entry point for pull-only hosts, returning, and
// consuming, the payload staged under id. It returns false if id is unknown
// or was already fetched.
func (b *Bridge) FetchStaged(id int64) (string, bool) {
	payload, ok := b.store.Fetch(id)
	if !ok {
		if b.allowWarning(fetchCategory{}) {
			b.logger.Warning().
				Int64(`resId`, id).
				Log(`fetch of unknown staged payload`)
		}
	}
	return payload, ok
}

// Close tears down the bridge, dropping all subscriptions and staged
// payloads. It does not stop the loop. Subsequent calls return ErrClosed.
func (b *Bridge) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	b.router.Clear()
	b.store.reset()
	return nil
}

type fetchCategory struct{}

func (b *Bridge) allowWarning(category any) bool {
	if b.warnings == nil {
		return true
	}
	_, ok := b.warnings.Allow(category)
	return ok
}
